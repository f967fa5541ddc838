package common

import (
	"context"
	"os"
	"path"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, r
}

func TestPublisher_Commit(t *testing.T) {
	dir, r := initRepo(t)
	require.NoError(t, os.MkdirAll(path.Join(dir, "local", "ui"), 0o755))
	require.NoError(t, os.WriteFile(path.Join(dir, "local", "ui", "button.js"), []byte("x"), 0o644))

	hash, err := Publisher{Dir: path.Join(dir, "local")}.Commit("sync")
	require.NoError(t, err)

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash().String())

	commit, err := r.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "sync", commit.Message)
	_, err = commit.File("local/ui/button.js")
	assert.NoError(t, err)
}

func TestPublisher_CommitClean(t *testing.T) {
	dir, _ := initRepo(t)

	_, err := Publisher{Dir: dir}.Commit("sync")
	assert.ErrorIs(t, err, ErrNothingToCommit)

	out, err := Publisher{Dir: dir, Push: true}.Publish(context.Background(), "sync")
	require.NoError(t, err)
	assert.Equal(t, "no changes to commit", out)
}

func TestPublisher_PublishPushFailure(t *testing.T) {
	dir, r := initRepo(t)
	_, err := r.CreateRemote(&config.RemoteConfig{Name: defaultRemote, URLs: []string{path.Join(t.TempDir(), "absent.git")}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path.Join(dir, "index.html"), []byte("<html>"), 0o644))

	_, err = Publisher{Dir: dir, Push: true}.Publish(context.Background(), "sync")
	assert.Error(t, err)
}

func TestPublisher_PublishPush(t *testing.T) {
	bare := t.TempDir()
	_, err := git.PlainInit(bare, true)
	require.NoError(t, err)

	dir, r := initRepo(t)
	_, err = r.CreateRemote(&config.RemoteConfig{Name: defaultRemote, URLs: []string{bare}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path.Join(dir, "index.html"), []byte("<html>"), 0o644))

	out, err := Publisher{Dir: dir, Push: true}.Publish(context.Background(), "sync")
	require.NoError(t, err)
	assert.Equal(t, "committed and pushed to origin", out)

	remoteRepo, err := git.PlainOpen(bare)
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	_, err = remoteRepo.CommitObject(head.Hash())
	assert.NoError(t, err)
}

func TestPublisher_NoPush(t *testing.T) {
	dir, _ := initRepo(t)
	require.NoError(t, os.WriteFile(path.Join(dir, "index.html"), []byte("<html>"), 0o644))

	out, err := Publisher{Dir: dir}.Publish(context.Background(), "sync")
	require.NoError(t, err)
	assert.Equal(t, "committed, push disabled", out)
}

func TestCommitMessage(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "chore(sync): update portfolio components 2024-03-01T11:30:00Z", CommitMessage(now))
}
