package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"aficionado-be/pkg/store"
	"aficionado-be/pkg/workspace"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession(id string) *store.Session {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s := store.NewSession(id, "alice", []string{"q1", "q2", "q3"}, workspace.NewFileSet("report.pdf", "ledger.csv"), now)
	s.Question = "Which controls failed?"
	s.Response = "Two of them."
	s.SaveState = store.SaveResponseDisplayed
	s.SetError("STORAGE_ERROR", "listing failed")
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sampleSession("s-1")

	payload, err := encode(in)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"workspace_files":["ledger.csv","report.pdf"]`)

	out, err := decode(payload)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Username, out.Username)
	assert.Equal(t, in.Question, out.Question)
	assert.Equal(t, in.Response, out.Response)
	assert.Equal(t, in.Choices, out.Choices)
	assert.Equal(t, in.SaveState, out.SaveState)
	assert.Equal(t, []string{"ledger.csv", "report.pdf"}, out.Files().Names())
	require.NotNil(t, out.LastError)
	assert.Equal(t, "STORAGE_ERROR", out.LastError.Code)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
}

func TestDecodeWithoutFilesYieldsEmptySet(t *testing.T) {
	out, err := decode([]byte(`{"id":"s-2","username":"bob","workspace_files":null}`))
	require.NoError(t, err)
	require.NotNil(t, out.WorkspaceFiles)
	assert.Equal(t, 0, out.WorkspaceFiles.Len())

	_, err = decode([]byte(`{"id":`))
	assert.Error(t, err)
}

// newTestRepository connects to REDIS_TEST_URL and skips when no server is reachable.
func newTestRepository(t *testing.T, ttl time.Duration) *SessionRepository {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)

	rdb := goredis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return NewSessionRepository(rdb, ttl)
}

func TestSessionRepositoryAgainstRedis(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, time.Minute)
	id := uuid.NewString()
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	_, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "missing key reads as not found")

	require.NoError(t, repo.Save(ctx, sampleSession(id)))

	got, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"ledger.csv", "report.pdf"}, got.Files().Names())
	assert.Equal(t, "Which controls failed?", got.Question)

	ttl, err := repo.rdb.TTL(ctx, key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, repo.Delete(ctx, id))
	_, ok, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}
