// Package models maps each Reddit REST endpoint to one method. A model builds the request,
// executes it through the shared Transport and decodes the body into its declared response type.
// Models are stateless apart from the transport, never validate arguments locally and never retry.
package models

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	pkgerrs "github.com/jamesprial/go-reddit-dispatch/pkg/errors"
)

// Transport is the authenticated HTTP collaborator shared by every model.
type Transport interface {
	NewRequest(ctx context.Context, method, path string, body io.Reader, params url.Values) (*http.Request, error)
	DoRaw(req *http.Request) ([]byte, error)
}

// base holds what every model needs.
type base struct {
	transport Transport
	logger    *slog.Logger
}

func newBase(t Transport, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return base{transport: t, logger: logger}
}

// execute performs one request and returns the raw body.
func (b base) execute(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	req, err := b.transport.NewRequest(ctx, method, path, nil, params)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("reddit api request", "method", method, "path", path)
	return b.transport.DoRaw(req)
}

// call performs one request and decodes the body into a new T.
func call[T any](ctx context.Context, b base, method, path string, params url.Values) (*T, error) {
	body, err := b.execute(ctx, method, path, params)
	if err != nil {
		return nil, err
	}
	return decode[T](method+" "+path, body)
}

// decode unmarshals body into a new T. An empty body decodes to the zero value.
func decode[T any](op string, body []byte) (*T, error) {
	out := new(T)
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, &pkgerrs.ParseError{Operation: op, Message: "failed to decode response", Err: err}
	}
	return out, nil
}

// apiJSON returns form values carrying api_type=json, which makes Reddit report errors in the
// {"json": {"errors": [...]}} envelope instead of as HTML.
func apiJSON() url.Values {
	v := url.Values{}
	v.Set("api_type", "json")
	return v
}

func setBool(v url.Values, key string, b bool) {
	v.Set(key, strconv.FormatBool(b))
}
