package memory

import (
	"context"
	"testing"
	"time"

	"aficionado-be/pkg/store"
	"aficionado-be/pkg/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	s := store.NewSession("s1", "alice", []string{"q1", "q2", "q3"}, workspace.NewFileSet("a.pdf"), time.Now())
	require.NoError(t, repo.Save(ctx, s))

	got, ok, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.Files().Contains("a.pdf"))
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, ok, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepositoryExpires(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(20 * time.Millisecond)

	require.NoError(t, repo.Save(ctx, store.NewSession("s1", "alice", nil, nil, time.Now())))
	time.Sleep(40 * time.Millisecond)

	_, ok, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour)

	s := store.NewSession("s1", "alice", []string{"q1"}, nil, time.Now())
	require.NoError(t, repo.Save(ctx, s))

	s.Question = "changed after save"
	s.Files().Add("late.pdf")

	got, _, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Question)
	assert.False(t, got.Files().Contains("late.pdf"))
}
