package notion

import (
	"context"
	"sync"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/credential"
)

// TokenResolver supplies the API token on demand.
type TokenResolver interface {
	Resolve(ctx context.Context) (credential.Credential, error)
}

// CallerFactory builds a Caller for a token.
type CallerFactory func(token config.Secret) Caller

// Session resolves the token on first use and keeps the resulting Caller
// for the life of the process. A failed resolution is not cached.
type Session struct {
	resolver TokenResolver
	factory  CallerFactory
	onToken  func(token string)

	mu     sync.Mutex
	caller Caller
}

// NewSession creates a Session. onToken, when non-nil, is called with each
// resolved token value so it can be registered for scrubbing.
func NewSession(resolver TokenResolver, factory CallerFactory, onToken func(string)) *Session {
	return &Session{resolver: resolver, factory: factory, onToken: onToken}
}

// NewClientSession is a Session that builds real Clients from opts.
func NewClientSession(resolver TokenResolver, opts Options, onToken func(string)) *Session {
	return NewSession(resolver, func(token config.Secret) Caller {
		return New(token, opts)
	}, onToken)
}

// Caller returns the session Caller, resolving the credential if needed.
func (s *Session) Caller(ctx context.Context) (Caller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.caller != nil {
		return s.caller, nil
	}
	cred, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.caller = s.WithToken(cred.Value)
	return s.caller, nil
}

// WithToken returns a Caller for an explicit token without touching the
// session's cached Caller.
func (s *Session) WithToken(token config.Secret) Caller {
	if s.onToken != nil {
		s.onToken(token.Value())
	}
	return s.factory(token)
}

// Reset drops the cached Caller.
func (s *Session) Reset() {
	s.mu.Lock()
	s.caller = nil
	s.mu.Unlock()
}
