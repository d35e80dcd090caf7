/* Copyright 2025 Daylily Catalog Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package client provides interfaces for interacting with the catalog data service
// and the data structures for its responses
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daylilycatalog/catalog/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Entity kinds served by the data service. Each one is synced independently.
const (
	KindListings           = "listings"
	KindLists              = "lists"
	KindImages             = "images"
	KindCultivarReferences = "cultivar-references"
)

// Kinds lists every entity kind
var Kinds = []string{KindListings, KindLists, KindImages, KindCultivarReferences}

// ErrContentTypeMismatch is an error for a response with an unexpected Content-Type
var ErrContentTypeMismatch = errors.New("content type mismatch")

// ErrNoSession is an error for a request that requires a session key when none is configured
var ErrNoSession = errors.New("no session key found")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsConflict returns true if the error is a 409 Conflict error
func (e *HTTPError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsGone returns true if the error is a 410 Gone error. The server responds
// with it when an incremental sync cursor predates its retention window.
func (e *HTTPError) IsGone() bool {
	return e.StatusCode == http.StatusGone
}

// IsSyncWindowExpired reports whether the given error tells the client to
// discard its cursor and perform a full re-seed
func IsSyncWindowExpired(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsGone()
	}

	return false
}

var contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// Client talks to the catalog data service on behalf of one session
type Client struct {
	Endpoint   string
	SessionKey string
	Version    string
	HTTPClient *http.Client
}

// New returns a client for the given API endpoint and session key
func New(endpoint, sessionKey, version string, hc *http.Client) *Client {
	if hc == nil {
		hc = NewRateLimitedHTTPClient()
	}

	return &Client{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		SessionKey: sessionKey,
		Version:    version,
		HTTPClient: hc,
	}
}

func (c *Client) getReq(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.Endpoint, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", c.Version)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}

	if c.SessionKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.SessionKey))
	}

	return req, nil
}

// checkRespErr checks if the given http response indicates an error and
// returns an *HTTPError carrying the decoded message if so
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

func checkContentType(res *http.Response) error {
	got := res.Header.Get("Content-Type")
	if !strings.HasPrefix(got, contentTypeApplicationJSON) {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

// do performs an authorized request and decodes the JSON response into dest
// unless dest is nil
func (c *Client) do(ctx context.Context, method, path string, payload, dest interface{}) error {
	if c.SessionKey == "" {
		return ErrNoSession
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshaling payload")
		}
		body = bytes.NewReader(b)
	}

	req, err := c.getReq(ctx, method, path, body)
	if err != nil {
		return errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return errors.Wrap(err, "server responded with an error")
	}

	if dest == nil {
		return nil
	}

	if err = checkContentType(res); err != nil {
		return errors.Wrap(err, "unexpected Content-Type")
	}

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decoding payload")
	}

	return nil
}

// MeResp is the response from the whoami endpoint
type MeResp struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// GetMe returns the user that owns the session key
func (c *Client) GetMe(ctx context.Context) (MeResp, error) {
	var resp MeResp
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &resp); err != nil {
		return resp, errors.Wrap(err, "getting the current user")
	}

	return resp, nil
}

// rowsResp is the envelope of endpoints returning many rows
type rowsResp[R any] struct {
	Rows []R `json:"rows"`
}

// rowResp is the envelope of endpoints returning one row
type rowResp[R any] struct {
	Row R `json:"row"`
}

// Resource is the remote data service for one entity kind. R is the row type,
// C the create payload and P the partial update payload.
type Resource[R any, C any, P any] struct {
	client *Client
	kind   string
}

// NewResource returns a resource for the given entity kind
func NewResource[R any, C any, P any](c *Client, kind string) *Resource[R, C, P] {
	return &Resource[R, C, P]{client: c, kind: kind}
}

// Kind returns the entity kind of the resource
func (r *Resource[R, C, P]) Kind() string {
	return r.kind
}

func (r *Resource[R, C, P]) path(suffix string) string {
	return fmt.Sprintf("/v1/%s%s", r.kind, suffix)
}

// Sync returns the rows changed at or after since. A nil since returns every row.
func (r *Resource[R, C, P]) Sync(ctx context.Context, since *time.Time) ([]R, error) {
	p := r.path("/sync")
	if since != nil {
		v := url.Values{}
		v.Set("since", since.UTC().Format(time.RFC3339Nano))
		p = fmt.Sprintf("%s?%s", p, v.Encode())
	}

	var resp rowsResp[R]
	if err := r.client.do(ctx, http.MethodGet, p, nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "syncing %s", r.kind)
	}

	return resp.Rows, nil
}

// List returns every live row owned by the caller
func (r *Resource[R, C, P]) List(ctx context.Context) ([]R, error) {
	var resp rowsResp[R]
	if err := r.client.do(ctx, http.MethodGet, r.path(""), nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "listing %s", r.kind)
	}

	return resp.Rows, nil
}

// GetByIDs returns the rows with the given ids. Unknown ids are omitted.
func (r *Resource[R, C, P]) GetByIDs(ctx context.Context, ids []string) ([]R, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	v := url.Values{}
	for _, id := range ids {
		v.Add("ids", id)
	}

	var resp rowsResp[R]
	if err := r.client.do(ctx, http.MethodGet, fmt.Sprintf("%s?%s", r.path("/by-ids"), v.Encode()), nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "getting %s by ids", r.kind)
	}

	return resp.Rows, nil
}

// Create creates a row in the server and returns its canonical form
func (r *Resource[R, C, P]) Create(ctx context.Context, input C) (R, error) {
	var resp rowResp[R]
	if err := r.client.do(ctx, http.MethodPost, r.path(""), input, &resp); err != nil {
		return resp.Row, errors.Wrapf(err, "creating %s", r.kind)
	}

	return resp.Row, nil
}

// Update partially updates a row in the server and returns its canonical form
func (r *Resource[R, C, P]) Update(ctx context.Context, id string, patch P) (R, error) {
	var resp rowResp[R]
	endpoint := r.path("/" + url.PathEscape(id))
	if err := r.client.do(ctx, http.MethodPatch, endpoint, patch, &resp); err != nil {
		return resp.Row, errors.Wrapf(err, "updating %s %s", r.kind, id)
	}

	return resp.Row, nil
}

// Delete deletes a row in the server
func (r *Resource[R, C, P]) Delete(ctx context.Context, id string) error {
	endpoint := r.path("/" + url.PathEscape(id))
	if err := r.client.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Wrapf(err, "deleting %s %s", r.kind, id)
	}

	return nil
}

// ListResource is the lists resource with its membership endpoints
type ListResource struct {
	*Resource[List, ListInput, ListPatch]
}

// NewListResource returns the lists resource
func NewListResource(c *Client) *ListResource {
	return &ListResource{Resource: NewResource[List, ListInput, ListPatch](c, KindLists)}
}

func (r *ListResource) memberPath(listID, listingID string) string {
	return r.path(fmt.Sprintf("/%s/listings/%s", url.PathEscape(listID), url.PathEscape(listingID)))
}

// AddMember adds a listing to a list and returns the canonical list
func (r *ListResource) AddMember(ctx context.Context, listID, listingID string) (List, error) {
	var resp rowResp[List]
	if err := r.client.do(ctx, http.MethodPost, r.memberPath(listID, listingID), nil, &resp); err != nil {
		return resp.Row, errors.Wrapf(err, "adding listing %s to list %s", listingID, listID)
	}

	return resp.Row, nil
}

// RemoveMember removes a listing from a list and returns the canonical list
func (r *ListResource) RemoveMember(ctx context.Context, listID, listingID string) (List, error) {
	var resp rowResp[List]
	if err := r.client.do(ctx, http.MethodDelete, r.memberPath(listID, listingID), nil, &resp); err != nil {
		return resp.Row, errors.Wrapf(err, "removing listing %s from list %s", listingID, listID)
	}

	return resp.Row, nil
}
