package blobstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aficionado-be/pkg/blobstore"
	"aficionado-be/pkg/blobstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBucket fails Delete for the listed keys.
type flakyBucket struct {
	*memory.Bucket
	failDelete map[string]bool
}

func (b *flakyBucket) Delete(ctx context.Context, key string) error {
	if b.failDelete[key] {
		return errors.New("injected delete failure")
	}
	return b.Bucket.Delete(ctx, key)
}

func upload(t *testing.T, a *blobstore.Adapter, user, name, body string) {
	t.Helper()
	require.NoError(t, a.Upload(context.Background(), user, name, strings.NewReader(body), "text/plain"))
}

func TestUploadListDeleteAll(t *testing.T) {
	ctx := context.Background()
	a := blobstore.NewAdapter(memory.NewBucket("test"), "examples")

	upload(t, a, "alice", "report.pdf", "v1")
	upload(t, a, "alice", "report.pdf", "v2")
	upload(t, a, "alice2", "other.csv", "x")

	names, err := a.ListFilenames(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf"}, names)

	report, err := a.DeleteAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf"}, report.Deleted)
	assert.Empty(t, report.Failed)

	names, err = a.ListFilenames(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, names)

	// A namespace that merely shares a leading substring is untouched.
	names, err = a.ListFilenames(ctx, "alice2")
	require.NoError(t, err)
	assert.Equal(t, []string{"other.csv"}, names)
}

func TestUploadOverwritesSameKey(t *testing.T) {
	bucket := memory.NewBucket("test")
	a := blobstore.NewAdapter(bucket, "")

	upload(t, a, "bob", "notes.txt", "first")
	upload(t, a, "bob", "notes.txt", "second")

	data, ok := bucket.Read("bob/notes.txt")
	require.True(t, ok)
	assert.Equal(t, "second", string(data))
}

func TestDeleteAllPartialFailure(t *testing.T) {
	ctx := context.Background()
	bucket := &flakyBucket{
		Bucket:     memory.NewBucket("test"),
		failDelete: map[string]bool{"carol/b.csv": true},
	}
	a := blobstore.NewAdapter(bucket, "examples")

	upload(t, a, "carol", "a.pdf", "a")
	upload(t, a, "carol", "b.csv", "b")
	upload(t, a, "carol", "c.txt", "c")

	report, err := a.DeleteAll(ctx, "carol")
	require.Error(t, err)

	var partial *blobstore.PartialDeleteError
	require.ErrorAs(t, err, &partial)
	assert.True(t, report.Partial())
	assert.Equal(t, []string{"b.csv"}, report.Failed)
	assert.ElementsMatch(t, []string{"a.pdf", "c.txt"}, report.Deleted)

	names, err := a.ListFilenames(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.csv"}, names)
}

func TestCloneExamples(t *testing.T) {
	ctx := context.Background()
	a := blobstore.NewAdapter(memory.NewBucket("test"), "examples/")

	require.NoError(t, a.SeedExample(ctx, "process.pdf", strings.NewReader("p"), "application/pdf"))
	require.NoError(t, a.SeedExample(ctx, "controls.csv", strings.NewReader("c"), "text/csv"))

	copied, err := a.CloneExamples(ctx, "newuser")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"process.pdf", "controls.csv"}, copied)

	names, err := a.ListFilenames(ctx, "newuser")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"process.pdf", "controls.csv"}, names)

	examples, err := a.ListExamples(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"process.pdf", "controls.csv"}, examples)
}

func TestStripPrefix(t *testing.T) {
	name, ok := blobstore.StripPrefix("alice", "alice/report.pdf")
	assert.True(t, ok)
	assert.Equal(t, "report.pdf", name)

	_, ok = blobstore.StripPrefix("alice", "alice2/report.pdf")
	assert.False(t, ok)

	_, ok = blobstore.StripPrefix("alice", "alice/")
	assert.False(t, ok)
}

func TestObjectURI(t *testing.T) {
	a := blobstore.NewAdapter(memory.NewBucket("aficionado-bucket"), "")
	assert.Equal(t, "gs://aficionado-bucket/alice/report.pdf", a.ObjectURI("alice", "report.pdf"))
}

func TestExamplesNamespaceIsNotAWorkspace(t *testing.T) {
	ctx := context.Background()
	bucket := memory.NewBucket("test")
	a := blobstore.NewAdapter(bucket, "examples")
	require.NoError(t, a.SeedExample(ctx, "template.pdf", strings.NewReader("t"), "application/pdf"))

	_, err := a.ListFilenames(ctx, "examples")
	assert.ErrorIs(t, err, blobstore.ErrReservedNamespace)

	_, err = a.DeleteAll(ctx, "examples")
	assert.ErrorIs(t, err, blobstore.ErrReservedNamespace)

	err = a.Upload(ctx, "examples", "template.pdf", strings.NewReader("overwritten"), "application/pdf")
	assert.ErrorIs(t, err, blobstore.ErrReservedNamespace)

	_, err = a.CloneExamples(ctx, "examples")
	assert.ErrorIs(t, err, blobstore.ErrReservedNamespace)

	names, err := a.ListExamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"template.pdf"}, names)
	data, ok := bucket.Read("examples/template.pdf")
	require.True(t, ok)
	assert.Equal(t, "t", string(data))
}

func TestParentOfNestedExamplesPrefixIsReserved(t *testing.T) {
	ctx := context.Background()
	a := blobstore.NewAdapter(memory.NewBucket("test"), "shared/examples")

	_, err := a.ListFilenames(ctx, "shared")
	assert.ErrorIs(t, err, blobstore.ErrReservedNamespace)

	_, err = a.ListFilenames(ctx, "sharedfolks")
	assert.NoError(t, err)
}
