package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

const (
	contentsAccept = "application/vnd.github+json"
)

type EntryType string

const (
	FileEntry EntryType = "file"
	DirEntry  EntryType = "dir"
)

// TreeEntry is one item of a contents API directory listing.
type TreeEntry struct {
	Name        string    `json:"name"`
	Type        EntryType `json:"type"`
	Path        string    `json:"path"`
	DownloadURL string    `json:"download_url"`
}

// Source lists remote directories and fetches raw files.
type Source interface {
	List(ctx context.Context, repo, dir string) ([]TreeEntry, error)
	Download(ctx context.Context, url, target string) error
	ReadResponseBytes(ctx context.Context, url string) ([]byte, error)
}

func contentsPath(repo, dir, ref string) string {
	apiPath := fmt.Sprintf("repos/%s/contents", repo)
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" {
			continue
		}
		apiPath = fmt.Sprintf("%s/%s", apiPath, url.PathEscape(segment))
	}
	if ref != "" {
		apiPath = fmt.Sprintf("%s?ref=%s", apiPath, url.QueryEscape(ref))
	}
	return apiPath
}

func decodeEntries(url string, body []byte) ([]TreeEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		var value any
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return nil, MalformedResponseError{URL: url, Err: err}
		}
		return nil, MalformedResponseError{URL: url, Err: errNotArray}
	}

	var entries []TreeEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, MalformedResponseError{URL: url, Err: err}
	}
	return entries, nil
}

// HTTPFetcher talks to the contents API over plain HTTP.
type HTTPFetcher struct {
	Client
	APIBase string
	Ref     string
}

func (f HTTPFetcher) List(ctx context.Context, repo, dir string) ([]TreeEntry, error) {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(f.APIBase, "/"), contentsPath(repo, dir, f.Ref))
	response, err := f.ReadResponseBody(ctx, url, contentsAccept)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	var buf bytes.Buffer
	if _, err = buf.ReadFrom(response.Body); err != nil {
		return nil, NetworkError{URL: url, Err: err}
	}

	return decodeEntries(url, buf.Bytes())
}

// GHFetcher lists directories with the GitHub CLI's REST client, reusing its stored credentials.
type GHFetcher struct {
	Client
	Ref  string
	rest *api.RESTClient
}

func NewGHFetcher(client Client, ref string) (GHFetcher, error) {
	return newGHFetcher(client, ref, api.ClientOptions{})
}

func newGHFetcher(client Client, ref string, opts api.ClientOptions) (GHFetcher, error) {
	opts.AuthToken = client.Token
	opts.Headers = map[string]string{"User-Agent": userAgent}
	rest, err := api.NewRESTClient(opts)
	if err != nil {
		return GHFetcher{}, err
	}

	return GHFetcher{Client: client, Ref: ref, rest: rest}, nil
}

func (f GHFetcher) List(ctx context.Context, repo, dir string) ([]TreeEntry, error) {
	apiPath := contentsPath(repo, dir, f.Ref)

	var entries []TreeEntry
	err := f.rest.DoWithContext(ctx, "GET", apiPath, nil, &entries)
	if err != nil {
		return nil, classifyGHError(apiPath, err)
	}
	if entries == nil {
		return nil, MalformedResponseError{URL: apiPath, Err: errNotArray}
	}

	return entries, nil
}

func classifyGHError(apiPath string, err error) error {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return NetworkError{URL: apiPath, StatusCode: httpErr.StatusCode, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return MalformedResponseError{URL: apiPath, Err: err}
	}

	return NetworkError{URL: apiPath, Err: err}
}
