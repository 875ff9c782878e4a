package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const userAgent = "gsport/2.1.0"

// ErrInvalidCredentials is returned when the portal rejects the
// username/password pair.
var ErrInvalidCredentials = errors.New("portal: invalid credentials")

// ErrInvalidToken is returned when the portal rejects the one-time token.
var ErrInvalidToken = errors.New("portal: invalid token")

var csrfTokenRe = regexp.MustCompile(`name="csrfmiddlewaretoken" value="([^"]+)"`)

// Session is the authenticated context shared by every portal request:
// the host URL plus the cookie jar. Once login completes it is never
// mutated, so all download workers may read it concurrently.
type Session struct {
	host       string
	hostURL    *url.URL
	cookieFile string
	client     *http.Client

	// Pending login state between Login and SubmitToken.
	pendingUser string
	pendingCSRF string
}

// NewSession builds a session for the given portal host, loading any
// previously persisted cookies from cookieFile.
func NewSession(host, cookieFile string) (*Session, error) {
	host = strings.TrimSuffix(host, "/")
	hostURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid portal host %q: %w", host, err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	cookies, err := LoadCookies(cookieFile)
	if err != nil {
		return nil, err
	}
	if len(cookies) > 0 {
		jar.SetCookies(hostURL, cookies)
	}

	return &Session{
		host:       host,
		hostURL:    hostURL,
		cookieFile: cookieFile,
		client:     &http.Client{Jar: jar},
	}, nil
}

// Host returns the portal host URL without a trailing slash.
func (s *Session) Host() string {
	return s.host
}

// HTTPClient returns the cookie-carrying HTTP client for portal calls.
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// URL joins a portal path onto the host.
func (s *Session) URL(p string) string {
	return s.host + p
}

// LoggedIn probes the portal for a valid session.
func (s *Session) LoggedIn(ctx context.Context) (bool, error) {
	body, _, err := s.get(ctx, "/logged_in_api/", nil)
	if err != nil {
		return false, err
	}

	var status struct {
		LoggedIn bool `json:"logged_in"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return false, &DecodeError{Endpoint: "/logged_in_api/", Body: string(body), Err: err}
	}
	return status.LoggedIn, nil
}

// Login performs the first stage of the portal handshake: fetch the
// CSRF cookie from the login page, then post the credentials. On
// success the session holds the CSRF token needed by SubmitToken.
func (s *Session) Login(ctx context.Context, username, password string) error {
	loginURL := s.URL("/login/")

	resp, err := s.do(ctx, http.MethodGet, loginURL, nil, "")
	if err != nil {
		return err
	}

	var csrfCookie string
	for _, c := range resp.cookies {
		if c.Name == "csrftoken" {
			csrfCookie = c.Value
		}
	}
	if csrfCookie == "" {
		return fmt.Errorf("portal: login page did not set a csrftoken cookie")
	}

	form := url.Values{
		"username":            {username},
		"password":            {password},
		"csrfmiddlewaretoken": {csrfCookie},
		"next":                {"/"},
	}
	resp, err = s.do(ctx, http.MethodPost, loginURL, form, loginURL)
	if err != nil {
		return err
	}

	// The portal re-renders the login form on bad credentials.
	if strings.Contains(resp.body, `name="password"`) {
		return ErrInvalidCredentials
	}

	match := csrfTokenRe.FindStringSubmatch(resp.body)
	if match == nil {
		return fmt.Errorf("portal: no token form in login response")
	}

	s.pendingUser = username
	s.pendingCSRF = match[1]
	return nil
}

// SubmitToken completes the handshake with the one-time token and
// persists the session cookies.
func (s *Session) SubmitToken(ctx context.Context, token string) error {
	if s.pendingCSRF == "" {
		return fmt.Errorf("portal: SubmitToken called before Login")
	}

	form := url.Values{
		"username":            {s.pendingUser},
		"token":               {token},
		"csrfmiddlewaretoken": {s.pendingCSRF},
		"next":                {"/"},
	}
	resp, err := s.do(ctx, http.MethodPost, s.URL("/otp_ok/"), form, s.URL("/login/"))
	if err != nil {
		return err
	}

	// A successful token exchange redirects away from the token form.
	if csrfTokenRe.MatchString(resp.body) {
		return ErrInvalidToken
	}

	s.pendingUser = ""
	s.pendingCSRF = ""

	return SaveCookies(s.cookieFile, s.client.Jar.Cookies(s.hostURL))
}

// Logout ends the portal session server-side.
func (s *Session) Logout(ctx context.Context) error {
	_, status, err := s.get(ctx, "/accounts/logout/", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("portal: logout returned status %d", status)
	}
	return nil
}

// ClearCookies removes the persisted cookie file.
func (s *Session) ClearCookies() error {
	return RemoveCookies(s.cookieFile)
}

// get performs a GET against a portal path and returns the body.
func (s *Session) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	u := s.URL(path)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("portal request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read portal response: %w", err)
	}
	return body, resp.StatusCode, nil
}

type loginResponse struct {
	body    string
	cookies []*http.Cookie
}

func (s *Session) do(ctx context.Context, method, rawurl string, form url.Values, referer string) (*loginResponse, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read portal response: %w", err)
	}

	return &loginResponse{body: string(body), cookies: resp.Cookies()}, nil
}
