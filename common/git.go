package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/femnad/pfsync/internal"
)

const (
	defaultRemote    = "origin"
	fallbackEmail    = "pfsync@localhost"
	fallbackName     = "pfsync"
	tokenUsername    = "x-access-token"
	commitMessageFmt = "chore(sync): update portfolio components %s"
)

var ErrNothingToCommit = errors.New("nothing to commit")

// Publisher stages, commits and pushes everything under the repository containing Dir.
type Publisher struct {
	Dir    string
	Remote string
	Token  string
	Push   bool
}

func CommitMessage(now time.Time) string {
	return fmt.Sprintf(commitMessageFmt, now.UTC().Format(time.RFC3339))
}

func signature(r *git.Repository) *object.Signature {
	sig := &object.Signature{Name: fallbackName, Email: fallbackEmail, When: time.Now()}

	cfg, err := r.ConfigScoped(config.GlobalScope)
	if err != nil {
		internal.Logger.Debug().Err(err).Msg("Unable to read git config, using fallback identity")
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func (p Publisher) remote() string {
	if p.Remote == "" {
		return defaultRemote
	}
	return p.Remote
}

func (p Publisher) auth(r *git.Repository) (transport.AuthMethod, error) {
	if p.Token == "" {
		return nil, nil
	}

	remote, err := r.Remote(p.remote())
	if err != nil {
		return nil, err
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, nil
	}

	endpoint, err := transport.NewEndpoint(urls[0])
	if err != nil {
		return nil, err
	}
	if endpoint.Protocol != "https" && endpoint.Protocol != "http" {
		return nil, nil
	}

	return &githttp.BasicAuth{Username: tokenUsername, Password: p.Token}, nil
}

// Commit stages all changes and commits them. Returns ErrNothingToCommit for a clean worktree.
func (p Publisher) Commit(message string) (string, error) {
	r, err := git.PlainOpenWithOptions(p.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("error opening repository at %s: %w", p.Dir, err)
	}

	w, err := r.Worktree()
	if err != nil {
		return "", err
	}

	if err = w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("error staging changes: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return "", err
	}
	if status.IsClean() {
		return "", ErrNothingToCommit
	}

	hash, err := w.Commit(message, &git.CommitOptions{Author: signature(r)})
	if err != nil {
		return "", fmt.Errorf("error committing: %w", err)
	}

	internal.Logger.Info().Str("commit", hash.String()).Msg("Committed synced changes")
	return hash.String(), nil
}

func (p Publisher) push(ctx context.Context) error {
	r, err := git.PlainOpenWithOptions(p.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return err
	}

	auth, err := p.auth(r)
	if err != nil {
		return err
	}

	err = r.PushContext(ctx, &git.PushOptions{RemoteName: p.remote(), Auth: auth})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		internal.Logger.Info().Msg("Remote already up to date")
		return nil
	} else if err != nil {
		return fmt.Errorf("error pushing to %s: %w", p.remote(), err)
	}

	return nil
}

// Publish commits all changes and pushes them when Push is set. A clean worktree is not an error.
func (p Publisher) Publish(ctx context.Context, message string) (string, error) {
	_, err := p.Commit(message)
	if errors.Is(err, ErrNothingToCommit) {
		internal.Logger.Info().Msg("No changes to commit")
		return "no changes to commit", nil
	} else if err != nil {
		return "", err
	}

	if !p.Push {
		return "committed, push disabled", nil
	}

	if err = p.push(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("committed and pushed to %s", p.remote()), nil
}
