package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aficionado-be/internal/config"
	"aficionado-be/pkg/blobstore"
	membucket "aficionado-be/pkg/blobstore/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unlistableBucket fails every List call.
type unlistableBucket struct {
	*membucket.Bucket
}

func (b *unlistableBucket) List(ctx context.Context, prefix string) ([]string, error) {
	return nil, errors.New("bucket unavailable")
}

func newTestApp(t *testing.T) (*App, *membucket.Bucket, *bytes.Buffer) {
	t.Helper()
	bucket := membucket.NewBucket("test")
	out := &bytes.Buffer{}
	app := NewApp().WithBucket(bucket)
	app.Out = out
	app.Config = &config.Config{Workspace: config.WorkspaceConfig{ExamplesPrefix: "examples"}}
	return app, bucket, out
}

func run(t *testing.T, app *App, args ...string) error {
	t.Helper()
	cmd := app.CreateRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func put(t *testing.T, bucket *membucket.Bucket, key string) {
	t.Helper()
	require.NoError(t, bucket.Put(context.Background(), key, strings.NewReader("x"), "text/plain"))
}

func TestListAcceptsEmailOrUsername(t *testing.T) {
	app, bucket, out := newTestApp(t)
	put(t, bucket, blobstore.Key("alice", "b.csv"))
	put(t, bucket, blobstore.Key("alice", "a.pdf"))
	put(t, bucket, blobstore.Key("bob", "c.txt"))

	require.NoError(t, run(t, app, "list", "Alice@example.com"))
	assert.Contains(t, out.String(), "alice (2 files)")
	assert.Less(t, strings.Index(out.String(), "a.pdf"), strings.Index(out.String(), "b.csv"))
	assert.NotContains(t, out.String(), "c.txt")

	out.Reset()
	require.NoError(t, run(t, app, "list", "bob"))
	assert.Contains(t, out.String(), "c.txt")
}

func TestPurgeOnlyTouchesOneUser(t *testing.T) {
	app, bucket, _ := newTestApp(t)
	put(t, bucket, blobstore.Key("alice", "a.pdf"))
	put(t, bucket, blobstore.Key("bob", "c.txt"))

	require.NoError(t, run(t, app, "purge", "alice"))

	_, ok := bucket.Read(blobstore.Key("alice", "a.pdf"))
	assert.False(t, ok)
	_, ok = bucket.Read(blobstore.Key("bob", "c.txt"))
	assert.True(t, ok)
}

func TestSeedThenClone(t *testing.T) {
	app, bucket, out := newTestApp(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "controls matrix.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,control\n"), 0o600))

	require.NoError(t, run(t, app, "examples", "seed", path))
	assert.Contains(t, out.String(), "Seeded controls_matrix.csv")

	out.Reset()
	require.NoError(t, run(t, app, "examples", "list"))
	assert.Contains(t, out.String(), "controls_matrix.csv")

	require.NoError(t, run(t, app, "clone", "carol"))
	data, ok := bucket.Read(blobstore.Key("carol", "controls_matrix.csv"))
	require.True(t, ok)
	assert.Equal(t, "id,control\n", string(data))
}

func TestCloneWithoutExamplesWarns(t *testing.T) {
	app, _, out := newTestApp(t)

	require.NoError(t, run(t, app, "clone", "dave"))
	assert.Contains(t, out.String(), "No example files to copy")
}

func TestRejectsInvalidUser(t *testing.T) {
	app, _, _ := newTestApp(t)

	err := run(t, app, "list", "../etc@example.com")
	assert.Error(t, err)
}

func TestPurgeReportsListingFailure(t *testing.T) {
	out := &bytes.Buffer{}
	app := NewApp().WithBucket(&unlistableBucket{Bucket: membucket.NewBucket("test")})
	app.Out = out
	app.Config = &config.Config{Workspace: config.WorkspaceConfig{ExamplesPrefix: "examples"}}

	err := run(t, app, "purge", "alice")
	require.Error(t, err)
	assert.NotContains(t, out.String(), "Deleted")
	assert.Contains(t, out.String(), "Nothing deleted from alice")
}

func TestRejectsExamplesUser(t *testing.T) {
	app, bucket, _ := newTestApp(t)
	put(t, bucket, blobstore.Key("examples", "template.pdf"))

	require.Error(t, run(t, app, "purge", "examples"))

	_, ok := bucket.Read(blobstore.Key("examples", "template.pdf"))
	assert.True(t, ok)
}
