// Package notiontest provides a recording notion.Caller for tests.
package notiontest

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Responder answers a recorded request.
type Responder func(req Request) (notion.Object, error)

type route struct {
	method  string
	path    string
	respond Responder
}

// Fake records every call and answers from registered routes. Paths ending
// in "*" match by prefix. Unmatched calls get an empty, final list page.
type Fake struct {
	mu       sync.Mutex
	requests []Request
	routes   []route
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{}
}

// On registers a responder. Later registrations take precedence.
func (f *Fake) On(method, path string, r Responder) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append([]route{{method: method, path: path, respond: r}}, f.routes...)
	return f
}

// Reply registers a fixed response.
func (f *Fake) Reply(method, path string, obj notion.Object) *Fake {
	return f.On(method, path, func(Request) (notion.Object, error) { return obj, nil })
}

// Fail registers a fixed error.
func (f *Fake) Fail(method, path string, err error) *Fake {
	return f.On(method, path, func(Request) (notion.Object, error) { return nil, err })
}

// Call implements notion.Caller.
func (f *Fake) Call(_ context.Context, method, path string, query url.Values, body any) (notion.Object, error) {
	req := Request{Method: method, Path: path, Query: query, Body: body}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	var respond Responder
	for _, r := range f.routes {
		if r.method == method && matchPath(r.path, path) {
			respond = r.respond
			break
		}
	}
	f.mu.Unlock()

	if respond == nil {
		return notion.Object{"object": "list", "results": []any{}, "has_more": false}, nil
	}
	return respond(req)
}

// Requests returns a copy of the recorded calls.
func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Count returns the number of recorded calls.
func (f *Fake) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Find returns recorded calls matching method and path.
func (f *Fake) Find(method, path string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Method == method && matchPath(path, r.Path) {
			out = append(out, r)
		}
	}
	return out
}

func matchPath(pattern, path string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == path
}

var _ notion.Caller = (*Fake)(nil)
