package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/femnad/pfsync/internal"
)

const (
	acceptKey        = "accept"
	authorizationKey = "authorization"
	userAgentKey     = "user-agent"
	userAgent        = "femnad/pfsync"
)

var (
	okStatuses = []int{http.StatusOK}
)

type Response struct {
	Body io.ReadCloser
	URL  string
}

// Client issues identified GET requests. A zero Client uses http.DefaultClient and no token.
type Client struct {
	HTTPClient *http.Client
	Token      string
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) ReadResponseBody(ctx context.Context, url string, accept string) (Response, error) {
	var response Response
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return response, NetworkError{URL: url, Err: err}
	}
	req.Header.Set(userAgentKey, userAgent)
	if accept != "" {
		req.Header.Set(acceptKey, accept)
	}
	if c.Token != "" {
		req.Header.Set(authorizationKey, "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response, NetworkError{URL: url, Err: err}
	}

	statusCode := resp.StatusCode
	if !internal.Contains(okStatuses, statusCode) {
		resp.Body.Close()
		return response, NetworkError{URL: url, StatusCode: statusCode}
	}

	response = Response{Body: resp.Body, URL: url}
	return response, nil
}

func (c Client) ReadResponseBytes(ctx context.Context, url string) ([]byte, error) {
	response, err := c.ReadResponseBody(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, NetworkError{URL: url, Err: err}
	}
	return data, nil
}

// Download streams url into target, creating parent directories and replacing existing content.
func (c Client) Download(ctx context.Context, url, target string) error {
	if url == "" {
		return fmt.Errorf("download URL is empty")
	}
	if target == "" {
		return fmt.Errorf("download target is empty")
	}

	resp, err := c.ReadResponseBody(ctx, url, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err = internal.EnsureDirExists(filepath.Dir(target)); err != nil {
		return err
	}

	// Stream into a sibling temp file so a broken transfer leaves the previous target intact.
	out, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	tmp := out.Name()
	defer os.Remove(tmp)

	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		return NetworkError{URL: url, Err: err}
	}
	if err = out.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, target)
}
