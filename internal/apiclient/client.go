// Package apiclient is the uniform wrapper around the marketplace REST API:
// bearer auth from an explicit Session, JSON or multipart bodies, validated
// response envelopes and typed errors. It never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxResponseBytes = 16 << 20

type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	session         *Session
	requestIDHeader string
	requestID       func() string
	logger          *logrus.Entry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithRequestIDHeader(name string) Option {
	return func(c *Client) {
		if name = strings.TrimSpace(name); name != "" {
			c.requestIDHeader = name
		}
	}
}

// WithRequestID propagates the inbound request id instead of minting a new one.
func WithRequestID(id string) Option {
	return func(c *Client) {
		if id = strings.TrimSpace(id); id != "" {
			c.requestID = func() string { return id }
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client rooted at baseURL (e.g. "https://api.example.com/api/").
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", baseURL)
	}
	if session == nil {
		session = NewSession("")
	}
	c := &Client{
		baseURL:         u,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		session:         session,
		requestIDHeader: "X-Request-ID",
		requestID:       uuid.NewString,
		logger:          logrus.NewEntry(utils.Logger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) endpointURL(endpoint string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(endpoint, "/")
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do issues one request and returns the validated envelope.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) (envelope, int, error) {
	token, err := c.session.Token()
	if err != nil {
		return envelope{}, http.StatusUnauthorized, err
	}

	reader, contentType, err := encodeBody(body)
	if err != nil {
		return envelope{}, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(endpoint, query), reader)
	if err != nil {
		return envelope{}, 0, domain.APIError{Kind: domain.KindTransport, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rid := c.requestID()
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, rid)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"method": method, "endpoint": endpoint, "request_id": rid}).WithError(err).Warn("api transport failure")
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return envelope{}, 0, domain.APIError{Kind: domain.KindTransport, Message: domain.FallbackMessage(0), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, resp.StatusCode, domain.APIError{Kind: domain.KindTransport, Status: resp.StatusCode, Message: "could not read response", Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"method":     method,
		"endpoint":   endpoint,
		"status":     resp.StatusCode,
		"request_id": rid,
		"latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	}).Debug("api call")

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Logout()
		return envelope{}, resp.StatusCode, domain.APIError{
			Kind:    domain.KindUnauthorized,
			Status:  resp.StatusCode,
			Message: messageOr(decodeErrorBody(raw), resp.StatusCode),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope{}, resp.StatusCode, domain.APIError{
			Kind:    domain.KindHTTP,
			Status:  resp.StatusCode,
			Message: messageOr(decodeErrorBody(raw), resp.StatusCode),
		}
	}

	env, err := decodeEnvelope(resp.StatusCode, raw)
	if err != nil {
		var apiErr domain.APIError
		if errors.As(err, &apiErr) && apiErr.Kind == domain.KindApplication && apiErr.Message == "" {
			apiErr.Message = domain.FallbackMessage(resp.StatusCode)
			return envelope{}, resp.StatusCode, apiErr
		}
		return envelope{}, resp.StatusCode, err
	}
	return env, resp.StatusCode, nil
}

func messageOr(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return domain.FallbackMessage(status)
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.encode()
	case Multipart:
		return b.encode()
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, "", domain.InternalError{Msg: "could not encode request body", Err: err}
		}
		return bytes.NewReader(payload), "application/json", nil
	}
}
