package internal

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandUser(t *testing.T) {
	t.Setenv("HOME", "/home/jane")
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "Home prefix", path: "~/site/sync.json", want: "/home/jane/site/sync.json"},
		{name: "No prefix", path: "site/a~b", want: "site/a~b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandUser(tt.path))
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]int{200, 204}, 204))
	assert.False(t, Contains([]int{200}, 404))
}

func TestEnsureDirExists(t *testing.T) {
	dir := path.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDirExists(dir))
	require.NoError(t, EnsureDirExists(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInitLogging(t *testing.T) {
	assert.NoError(t, InitLogging("debug"))
	assert.Error(t, InitLogging("loud"))
}
