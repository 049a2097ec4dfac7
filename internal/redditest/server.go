// Package redditest provides a configurable mock Reddit API server for tests.
package redditest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenPath is the OAuth token endpoint served by default.
const TokenPath = "/api/v1/access_token"

// DefaultTokenBody is the token response served unless overridden.
const DefaultTokenBody = `{"access_token":"mock_token","token_type":"bearer","expires_in":3600,"scope":"*"}`

// Response defines a canned API response.
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// JSON builds a 200 response whose body is v encoded as JSON. It panics if v cannot be encoded.
func JSON(v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &Response{Status: http.StatusOK, Body: string(body)}
}

// Request is one logged incoming request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Form    url.Values
	Headers http.Header
	Body    string
}

// Server is an httptest server answering by method and path.
type Server struct {
	server *httptest.Server

	mu          sync.RWMutex
	responses   map[string]*Response
	defaultResp *Response
	requests    []Request
	callCount   map[string]int
}

// NewServer starts a mock server. The token endpoint answers with DefaultTokenBody and every other
// path with {} until configured otherwise. The server is closed when the test finishes.
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		responses:   make(map[string]*Response),
		callCount:   make(map[string]int),
		defaultResp: &Response{Status: http.StatusOK, Body: `{}`},
	}
	s.responses[TokenPath] = &Response{Status: http.StatusOK, Body: DefaultTokenBody}
	s.server = httptest.NewServer(s)
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL of the mock server
func (s *Server) URL() string {
	return s.server.URL
}

// Client returns an HTTP client that talks to the server.
func (s *Server) Client() *http.Client {
	return s.server.Client()
}

// Handle configures the response for key, which is either "/path" or "METHOD /path".
// A method-specific key takes precedence over a bare path.
func (s *Server) Handle(key string, resp *Response) {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = resp
}

// HandleJSON is shorthand for Handle(key, JSON(v)).
func (s *Server) HandleJSON(key string, v any) {
	s.Handle(key, JSON(v))
}

// SetDefaultResponse configures the response for unconfigured paths.
func (s *Server) SetDefaultResponse(resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultResp = resp
}

// Requests returns the API requests received so far, excluding token requests.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Request, 0, len(s.requests))
	for _, r := range s.requests {
		if r.Path != TokenPath {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the most recent API request, or a zero Request when none was made.
func (s *Server) LastRequest() Request {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return Request{}
	}
	return reqs[len(reqs)-1]
}

// CallCount returns how many requests were made to path, for any method.
func (s *Server) CallCount(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.callCount[path]
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	entry := Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.Query(),
		Headers: r.Header.Clone(),
		Body:    string(body),
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		entry.Form, _ = url.ParseQuery(string(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, entry)
	s.callCount[r.URL.Path]++
	resp, ok := s.responses[r.Method+" "+r.URL.Path]
	if !ok {
		resp, ok = s.responses[r.URL.Path]
	}
	if !ok {
		resp = s.defaultResp
	}
	s.mu.Unlock()

	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	w.Header().Set("Content-Type", "application/json")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}
