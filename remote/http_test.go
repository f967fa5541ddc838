package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Download(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get(userAgentKey)
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	target := path.Join(t.TempDir(), "nested", "dir", "card.js")
	require.NoError(t, os.MkdirAll(path.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("previous, longer content"), 0o644))

	err := Client{}.Download(context.Background(), srv.URL+"/card.js", target)
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "short", string(content))
	assert.Equal(t, userAgent, gotAgent)
}

func TestClient_DownloadInterrupted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1024")
		_, _ = w.Write([]byte("partial"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	target := path.Join(dir, "card.js")
	require.NoError(t, os.WriteFile(target, []byte("previous content"), 0o644))

	err := Client{}.Download(context.Background(), srv.URL+"/card.js", target)

	var netErr NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "previous content", string(content))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClient_DownloadCreatesParents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("body"))
	}))
	defer srv.Close()

	target := path.Join(t.TempDir(), "a", "b", "c.txt")
	require.NoError(t, Client{}.Download(context.Background(), srv.URL, target))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestClient_DownloadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	target := path.Join(t.TempDir(), "missing.txt")
	err := Client{}.Download(context.Background(), srv.URL, target)

	var netErr NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
	assert.NoFileExists(t, target)
}

func TestClient_DownloadEmptyArgs(t *testing.T) {
	assert.Error(t, Client{}.Download(context.Background(), "", "target"))
	assert.Error(t, Client{}.Download(context.Background(), "http://localhost", ""))
}

func TestClient_Token(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get(authorizationKey)
	}))
	defer srv.Close()

	_, err := Client{Token: "t0ken"}.ReadResponseBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer t0ken", gotAuth)
}
