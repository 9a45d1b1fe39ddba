// Package rest implements controlplane.Client over the workspace's HTTP/JSON
// control plane API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/buildkite/roko"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultEndpoint    = "https://management.azure.com"
	defaultUserAgent   = "pipeline-publish/rest"
	defaultAPIVersion  = "2024-04-01"
	defaultMaxAttempts = 3
	defaultRetryBase   = 2 * time.Second

	requestIDHeader = "x-ms-client-request-id"
)

// Workspace identifies the workspace every request is scoped to.
type Workspace struct {
	SubscriptionID string
	ResourceGroup  string
	Name           string
}

func (w Workspace) path() string {
	return fmt.Sprintf("subscriptions/%s/resourceGroups/%s/providers/Microsoft.MachineLearningServices/workspaces/%s",
		url.PathEscape(w.SubscriptionID), url.PathEscape(w.ResourceGroup), url.PathEscape(w.Name))
}

// Config is configuration for the REST client.
type Config struct {
	// Endpoint is the base URL of the control plane. Defaults to the public
	// management endpoint.
	Endpoint string

	// Workspace all requests are scoped to.
	Workspace Workspace

	// APIVersion is sent as the api-version query parameter.
	APIVersion string

	// Tokens provides bearer tokens. Requests are sent unauthenticated when nil.
	Tokens TokenSource

	// UserAgent sent with every request.
	UserAgent string

	// MaxAttempts is the number of attempts for a request that fails with a
	// retryable status or connection error.
	MaxAttempts int

	// RetrySleepFunc replaces the sleep between attempts, for tests.
	RetrySleepFunc func(time.Duration)

	// HTTPClient used for requests, leave nil for http.DefaultClient.
	HTTPClient *http.Client
}

// Client manages communication with the control plane.
type Client struct {
	conf   Config
	client *http.Client
	logger *slog.Logger
}

// NewClient returns a new REST client.
func NewClient(l *slog.Logger, conf Config) *Client {
	if conf.Endpoint == "" {
		conf.Endpoint = defaultEndpoint
	}
	if conf.APIVersion == "" {
		conf.APIVersion = defaultAPIVersion
	}
	if conf.UserAgent == "" {
		conf.UserAgent = defaultUserAgent
	}
	if conf.MaxAttempts <= 0 {
		conf.MaxAttempts = defaultMaxAttempts
	}
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := conf.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		conf:   conf,
		client: httpClient,
		logger: l,
	}
}

// Config returns the configuration of the client.
func (c *Client) Config() Config {
	return c.conf
}

// newRequest creates a request against a path relative to the workspace. If body is
// set it is JSON encoded.
func (c *Client) newRequest(ctx context.Context, method, urlStr, requestID string, body any) (*http.Request, error) {
	u, err := url.Parse(joinURLPath(c.conf.Endpoint, c.conf.Workspace.path(), urlStr))
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse request URL")
	}

	q := u.Query()
	q.Set("api-version", c.conf.APIVersion)
	u.RawQuery = q.Encode()

	buf := new(bytes.Buffer)
	if body != nil {
		err := json.NewEncoder(buf).Encode(body)
		if err != nil {
			return nil, errors.Wrap(err, "unable to encode request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.conf.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.conf.Tokens != nil {
		token, err := c.conf.Tokens.Token(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "unable to get access token")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// Response wraps the standard http.Response.
type Response struct {
	*http.Response
}

// sendMode says which failures of a request may be retried.
type sendMode int

const (
	// idempotent requests are retried on retryable statuses and connection errors.
	idempotent sendMode = iota
	// sendOnce requests change state on the server. They are only retried when the
	// request never left the client.
	sendOnce
)

// do sends a request built by newRequest, retrying failures allowed by mode, and
// decodes a successful JSON response into v when v is not nil. Every attempt carries
// the same request ID.
func (c *Client) do(ctx context.Context, mode sendMode, method, urlStr string, body, v any) (*Response, error) {
	requestID := uuid.NewString()

	sleep := c.conf.RetrySleepFunc
	if sleep == nil {
		sleep = time.Sleep
	}

	retrier := roko.NewRetrier(
		roko.WithMaxAttempts(c.conf.MaxAttempts),
		roko.WithStrategy(roko.Exponential(defaultRetryBase, 0)),
		roko.WithJitter(),
		roko.WithSleepFunc(sleep),
	)

	return roko.DoFunc(ctx, retrier, func(r *roko.Retrier) (*Response, error) {
		req, err := c.newRequest(ctx, method, urlStr, requestID, body)
		if err != nil {
			r.Break()
			return nil, err
		}

		resp, err := c.doRequest(req, v)
		if err == nil {
			return resp, nil
		}

		logger := c.logger.With(
			slog.String("method", method),
			slog.String("url", req.URL.Path),
			slog.String("request_id", req.Header.Get(requestIDHeader)),
			slog.Int("attempt", r.AttemptCount()),
		)

		if resp == nil {
			retry := IsUnsentError(err) || (mode == idempotent && IsRetryableError(err))
			if !retry {
				r.Break()
				return nil, err
			}
			logger.Warn("control plane request failed, retrying", slog.Any("error", err))
			return nil, err
		}

		if mode == sendOnce || !IsRetryableStatus(resp) {
			r.Break()
			return resp, err
		}

		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, perr := strconv.Atoi(retryAfter); perr == nil {
				r.SetNextInterval(time.Duration(seconds) * time.Second)
			}
		}

		logger.Warn("control plane request failed, retrying", slog.Int("status", resp.StatusCode), slog.Any("error", err))

		return resp, err
	})
}

func (c *Client) doRequest(req *http.Request, v any) (*Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()              //nolint:errcheck // read-only body
	defer io.Copy(io.Discard, resp.Body) //nolint:errcheck // best effort drain

	response := &Response{Response: resp}

	if err := checkResponse(resp); err != nil {
		return response, err
	}

	if v != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return response, errors.Wrap(err, "failed to decode JSON response")
		}
	}

	return response, nil
}

// ErrorResponse is returned for any non-2xx response.
type ErrorResponse struct {
	Response *http.Response `json:"-"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
}

// apiError matches the {"error": {...}} envelope of the control plane.
type apiError struct {
	Error *ErrorResponse `json:"error"`
}

func (r *ErrorResponse) Error() string {
	s := fmt.Sprintf("%v %v: %s",
		r.Response.Request.Method, r.Response.Request.URL.Path,
		r.Response.Status)

	if r.Code != "" {
		s = fmt.Sprintf("%s: %s", s, r.Code)
	}
	if r.Message != "" {
		s = fmt.Sprintf("%s: %v", s, r.Message)
	}

	return s
}

// IsErrHavingStatus reports whether err is an ErrorResponse with the given status.
func IsErrHavingStatus(err error, code int) bool {
	var apierr *ErrorResponse
	return errors.As(err, &apierr) && apierr.Response.StatusCode == code
}

func checkResponse(r *http.Response) error {
	if c := r.StatusCode; 200 <= c && c <= 299 {
		return nil
	}

	errorResponse := &ErrorResponse{Response: r}
	data, err := io.ReadAll(r.Body)
	if err == nil && len(data) > 0 {
		envelope := apiError{Error: errorResponse}
		if json.Unmarshal(data, &envelope) != nil || (errorResponse.Code == "" && errorResponse.Message == "") {
			errorResponse.Message = strings.TrimSpace(string(data))
		}
	}

	return errorResponse
}

// addOptions adds the parameters in opt as URL query parameters to s. opt must be a
// struct whose fields may contain "url" tags.
func addOptions(s string, opt any) (string, error) {
	v := reflect.ValueOf(opt)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	qs, err := query.Values(opt)
	if err != nil {
		return s, err
	}

	u.RawQuery = qs.Encode()

	return u.String(), nil
}

func joinURLPath(endpoint string, paths ...string) string {
	res := strings.TrimRight(endpoint, "/")
	for _, p := range paths {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		res += "/" + p
	}

	return res
}
