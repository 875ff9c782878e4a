package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gsport/internal/models"
)

// DecodeError means the portal answered with something that is not the
// expected JSON, typically an HTML error page. The raw body is kept so
// the operator can see what the portal actually said.
type DecodeError struct {
	Endpoint string
	Body     string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error reading response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client queries the portal's directory service for a single project.
type Client struct {
	session *Session
	project string
}

// NewClient creates a directory service client bound to a project.
func NewClient(session *Session, project string) *Client {
	return &Client{session: session, project: project}
}

// List returns the flat listing of dir: files by default, directories
// when dirs is set.
func (c *Client) List(ctx context.Context, dir string, dirs bool) ([]models.DirectoryEntry, error) {
	kind := "n"
	if dirs {
		kind = "y"
	}
	endpoint := fmt.Sprintf("/data_api2/%s/%s", c.project, kind)

	body, _, err := c.session.get(ctx, endpoint, url.Values{"cd": {dir}})
	if err != nil {
		return nil, err
	}

	var entries []models.DirectoryEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Body: string(body), Err: err}
	}
	return entries, nil
}

// ListRecursive returns the whole tree under dir. The root of the
// response is a synthetic directory entry whose children are the
// actual listing.
func (c *Client) ListRecursive(ctx context.Context, dir string) (*models.DirectoryEntry, error) {
	endpoint := "/data_api_recursive/" + c.project

	body, _, err := c.session.get(ctx, endpoint, url.Values{"cd": {dir}})
	if err != nil {
		return nil, err
	}

	var root models.DirectoryEntry
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Body: string(body), Err: err}
	}
	return &root, nil
}

// ResolveDownloadURL asks the portal for a one-time session token for
// remotePath and returns the full download URL. Tokens are single-use,
// so this must be called exactly once per file. The portal identifies
// files by absolute paths, so a missing leading slash is added.
func (c *Client) ResolveDownloadURL(ctx context.Context, remotePath string) (string, error) {
	if !strings.HasPrefix(remotePath, "/") {
		remotePath = "/" + remotePath
	}
	body, status, err := c.session.get(ctx, "/gen_session_file/", url.Values{
		"project":  {c.project},
		"filename": {remotePath},
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("portal: token request for %s returned status %d", remotePath, status)
	}

	token := strings.TrimSpace(string(body))
	return c.session.URL("/session_files2/" + c.project + "/" + token), nil
}

// FetchFile opens a streaming read of a resolved download URL. The
// caller owns the returned body.
func (c *Client) FetchFile(ctx context.Context, rawurl string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.session.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
