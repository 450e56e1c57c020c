package identity

import (
	"testing"

	"aficionado-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		wantUser string
		wantErr  bool
	}{
		{name: "plain address", email: "alice@example.com", wantUser: "alice"},
		{name: "mixed case and spaces", email: "  Bob.Smith@Example.com ", wantUser: "bob.smith"},
		{name: "plus addressing kept", email: "carol+audit@example.com", wantUser: "carol+audit"},
		{name: "first at wins", email: "dave@team@example.com", wantUser: "dave"},
		{name: "empty", email: "", wantErr: true},
		{name: "no at sign", email: "alice", wantErr: true},
		{name: "empty local part", email: "@example.com", wantErr: true},
		{name: "slash in local part", email: "a/b@example.com", wantErr: true},
		{name: "dot dot", email: "..@example.com", wantErr: true},
		{name: "control char", email: "a\x00b@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Resolve(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, id.Username)
		})
	}
}

func TestResolveRejectsReservedNamespace(t *testing.T) {
	_, err := Resolve("examples@corp.com", "examples")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnauthorized))

	_, err = Resolve("Shared@corp.com", "/shared/examples/")
	require.Error(t, err)

	id, err := Resolve("examples@corp.com")
	require.NoError(t, err)
	assert.Equal(t, "examples", id.Username)

	id, err = Resolve("example@corp.com", "examples")
	require.NoError(t, err)
	assert.Equal(t, "example", id.Username)
}
