// Package apiclient is the JSON-over-HTTP transport shared by every feed of the
// analytics API. Authenticated calls carry the stored session token as a bearer
// credential.
package apiclient

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
	"github.com/jrsteele09/secops-console/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 64 << 10
)

// Client issues requests against one API base URL.
type Client struct {
	baseURL string
	public  *http.Client // no credentials (login, register)
	authed  *http.Client // bearer token from the credential store
	nowTime func() time.Time
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*clientOptions)

type clientOptions struct {
	base    http.RoundTripper
	timeout time.Duration
	nowTime func() time.Time
}

// WithTransport sets the round tripper underneath the bearer transport
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.base = rt
	}
}

// WithTimeout bounds every request
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(o *clientOptions) {
		o.nowTime = nowFunc
	}
}

// New creates a Client for baseURL that reads the bearer token from store on every
// authenticated request.
func New(baseURL string, store credentials.Store, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] invalid base URL")
	}
	if store == nil {
		return nil, errors.New("[apiclient.New] credential store is required")
	}

	o := clientOptions{base: http.DefaultTransport, timeout: defaultTimeout, nowTime: time.Now}
	for _, opt := range options {
		opt(&o)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		public:  &http.Client{Transport: o.base, Timeout: o.timeout},
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: NewStoreTokenSource(store), Base: o.base},
			Timeout:   o.timeout,
		},
		nowTime: o.nowTime,
	}, nil
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  Query
	Body   any
	Public bool // send without the bearer token
}

// Do sends req and decodes a 2xx JSON body into out (which may be nil). Non-2xx
// responses come back as *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return err
	}

	client := c.authed
	if req.Public {
		client = c.public
	}

	start := c.nowTime()
	resp, err := client.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", c.nowTime().Sub(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", req.Method, req.Path)
	}
	return nil
}

// Get is shorthand for an authenticated GET
func (c *Client) Get(ctx context.Context, path string, query Query, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Put is shorthand for an authenticated PUT
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Post is shorthand for an authenticated POST
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// URL returns the absolute URL for path and query.
func (c *Client) URL(path string, query Query) string {
	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s %s", req.Method, req.Path)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", req.Method, req.Path)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(requestIDHeader, uuid.New().String())
	if body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	return httpReq, nil
}
