// Package gateway is the single outbound channel to the SGDL backend. It
// decorates every request with the session's access token, recognises
// authorization failures, and drives the token-renewal protocol so that
// feature code never observes an intermediate 401.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sgdl/go-sgdl-client/sessions"
	"github.com/sgdl/go-sgdl-client/token"
)

const (
	// Token endpoints, relative to the base URL. A 401 from either of them
	// must never trigger the renewal protocol.
	TokenPath        = "token/"
	TokenRefreshPath = "token/refresh/"

	defaultLoginPath   = "/login"
	defaultHTTPTimeout = 30 * time.Second
)

// Client is the HTTP gateway. Construct one per session with New and share
// it between the auth service and the API collaborators.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    *sessions.Session
	navigator  Navigator
	log        zerolog.Logger
	loginPath  string
	nowTime    func() time.Time

	renewer renewer
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNavigator sets the receiver of forced navigations.
func WithNavigator(navigator Navigator) Option {
	return func(c *Client) {
		c.navigator = navigator
	}
}

// WithLogger sets the gateway's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithLoginPath overrides the login entry point used on forced logout.
func WithLoginPath(path string) Option {
	return func(c *Client) {
		c.loginPath = path
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// New creates a gateway client bound to a session. baseURL is the API root,
// e.g. "http://localhost:8006/api/".
func New(baseURL string, session *sessions.Session, options ...Option) (*Client, error) {
	if session == nil {
		return nil, errors.New("[gateway.New] session is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[gateway.New] url.Parse")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		session:    session,
		navigator:  NopNavigator{},
		log:        zerolog.Nop(),
		loginPath:  defaultLoginPath,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Get issues a GET request. query may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, pathWithQuery(path, query), nil, out)
}

// Post issues a POST request with a JSON body. body may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// PostMultipart issues a POST with a multipart/form-data body, used for
// uploads such as anexos and avatar edits.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	contentType, body, err := form.encode()
	if err != nil {
		return errors.Wrap(err, "[Client.PostMultipart] form.encode")
	}
	return c.do(ctx, http.MethodPost, path, contentType, body, out)
}

// PatchMultipart issues a PATCH with a multipart/form-data body.
func (c *Client) PatchMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	contentType, body, err := form.encode()
	if err != nil {
		return errors.Wrap(err, "[Client.PatchMultipart] form.encode")
	}
	return c.do(ctx, http.MethodPatch, path, contentType, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var (
		raw         []byte
		contentType string
		err         error
	)
	if body != nil {
		raw, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.doJSON] json.Marshal")
		}
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, raw, out)
}

// do runs one logical backend operation: send, intercept 401, renew, replay
// at most once, decode. The body is kept as a byte slice so the replay can
// rebuild the request verbatim.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	requestID := uuid.New().String()

	// A token known to be stale is renewed up front instead of burning a
	// round trip on a guaranteed 401. Only worth doing when a renewal is
	// actually possible.
	if !isTokenEndpoint(path) && c.session.RefreshToken() != "" {
		if access := c.session.AccessToken(); access != "" && token.Expired(access, c.nowTime()) {
			c.log.Debug().Str("request_id", requestID).Str("path", path).Msg("access token stale, renewing before request")
			if err := c.renewAccessToken(ctx); err != nil {
				return err
			}
		}
	}

	usedAccess := c.session.AccessToken()
	statusCode, respBody, err := c.roundTrip(ctx, method, path, contentType, body, requestID, usedAccess)
	if err != nil {
		return err
	}

	if statusCode == http.StatusUnauthorized && !isTokenEndpoint(path) {
		c.log.Warn().Str("request_id", requestID).Str("path", path).Msg("request unauthorized, entering renewal")
		if current := c.session.AccessToken(); current != "" && current != usedAccess {
			// A concurrent renewal already replaced the token while this
			// request was in flight; no second renewal call is needed.
			usedAccess = current
		} else {
			if c.session.RefreshToken() == "" {
				// Nothing to renew with: terminate the session and surface
				// the original 401.
				c.terminateSession("no refresh token")
				return &APIError{StatusCode: statusCode, Body: respBody}
			}
			if err := c.renewAccessToken(ctx); err != nil {
				return err
			}
			usedAccess = c.session.AccessToken()
		}
		// Replay exactly once with the renewed token.
		statusCode, respBody, err = c.roundTrip(ctx, method, path, contentType, body, requestID, usedAccess)
		if err != nil {
			return err
		}
	}

	if statusCode < 200 || statusCode > 299 {
		return &APIError{StatusCode: statusCode, Body: respBody}
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrap(err, "[Client.do] json.Unmarshal response")
		}
	}
	return nil
}

// roundTrip performs a single HTTP exchange with the given access token. The
// caller decides which token to send so that a replay after renewal carries
// the new one and so the 401 handler can tell whether the token it sent is
// still current.
func (c *Client) roundTrip(ctx context.Context, method, path, contentType string, body []byte, requestID, access string) (int, []byte, error) {
	target, err := c.baseURL.Parse(path)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.roundTrip] resolve path")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.roundTrip] http.NewRequestWithContext")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errors.Wrapf(ErrNetwork, "[Client.roundTrip] %s %s: %v", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrapf(ErrNetwork, "[Client.roundTrip] read response: %v", err)
	}
	return resp.StatusCode, respBody, nil
}

// terminateSession clears the session and forces navigation to the login
// entry point. Called on renewal failure and on a 401 with no refresh token.
func (c *Client) terminateSession(reason string) {
	c.log.Warn().Str("reason", reason).Msg("session terminated")
	c.session.Clear()
	c.navigator.Navigate(c.loginPath)
}

func isTokenEndpoint(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	return trimmed == TokenPath || trimmed == TokenRefreshPath
}

func pathWithQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
