// Package credential resolves and stores the Notion API token.
//
// Resolution walks an explicit, ordered list of resolvers. The default order
// is the NOTION_API_TOKEN environment variable, then the OS secret store.
// Tokens are only ever written to the OS secret store.
package credential

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"go.uber.org/zap"
)

// EnvVar overrides the stored token when set.
const EnvVar = "NOTION_API_TOKEN"

// Source identifies where a credential came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceKeychain    Source = "keychain"
	SourceExplicit    Source = "explicit"
)

// Credential is a resolved token. Value redacts itself when formatted.
type Credential struct {
	Value  config.Secret
	Source Source
}

// Resolver looks up a token. A resolver that has nothing to offer returns
// found=false and a nil error.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context) (cred Credential, found bool, err error)
}

// EnvResolver reads the token from an environment variable.
type EnvResolver struct {
	Var    string
	Lookup func(string) (string, bool)
}

// Name implements Resolver.
func (r EnvResolver) Name() string { return "env:" + r.Var }

// Resolve implements Resolver. An empty value counts as unset.
func (r EnvResolver) Resolve(context.Context) (Credential, bool, error) {
	lookup := r.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(r.Var)
	if !ok || v == "" {
		return Credential{}, false, nil
	}
	return Credential{Value: config.Secret(v), Source: SourceEnvironment}, true, nil
}

// KeyringResolver reads the token from a SecretStore.
type KeyringResolver struct {
	Store   SecretStore
	Service string
	Account string
}

// Name implements Resolver.
func (r KeyringResolver) Name() string { return "keychain:" + r.Service }

// Resolve implements Resolver.
func (r KeyringResolver) Resolve(context.Context) (Credential, bool, error) {
	v, err := r.Store.Get(r.Service, r.Account)
	if errors.Is(err, ErrSecretNotFound) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, err
	}
	if v == "" {
		return Credential{}, false, nil
	}
	return Credential{Value: config.Secret(v), Source: SourceKeychain}, true, nil
}

// Store resolves tokens through its resolvers and saves them to the
// secret store. The first successful resolution is cached.
type Store struct {
	resolvers []Resolver
	secrets   SecretStore
	service   string
	account   string
	logger    *zap.Logger

	mu     sync.Mutex
	cached *Credential
}

// NewStore builds a Store with the default resolver order: environment
// variable, then secret store.
func NewStore(cfg config.CredentialConfig, secrets SecretStore, logger *zap.Logger) *Store {
	return NewStoreWithResolvers(cfg, secrets, logger,
		EnvResolver{Var: EnvVar},
		KeyringResolver{Store: secrets, Service: cfg.Service, Account: cfg.Account},
	)
}

// NewStoreWithResolvers builds a Store that tries resolvers in order.
func NewStoreWithResolvers(cfg config.CredentialConfig, secrets SecretStore, logger *zap.Logger, resolvers ...Resolver) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		resolvers: resolvers,
		secrets:   secrets,
		service:   cfg.Service,
		account:   cfg.Account,
		logger:    logger,
	}
}

// Resolve returns the first credential any resolver finds. Resolver errors
// are logged and skipped; when nothing is found the result is a
// CredentialNotFound error.
func (s *Store) Resolve(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return *s.cached, nil
	}

	tried := make([]string, 0, len(s.resolvers))
	var errs []error
	for _, r := range s.resolvers {
		if err := ctx.Err(); err != nil {
			return Credential{}, failure.Wrap(failure.TransportError, err, "credential resolution cancelled")
		}
		tried = append(tried, r.Name())
		cred, found, err := r.Resolve(ctx)
		if err != nil {
			s.logger.Warn("credential resolver failed",
				zap.String("resolver", r.Name()),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if found {
			s.logger.Debug("credential resolved",
				zap.String("resolver", r.Name()),
				zap.String("source", string(cred.Source)))
			s.cached = &cred
			return cred, nil
		}
	}

	ferr := failure.Wrap(failure.CredentialNotFound, errors.Join(errs...),
		"no Notion API token found; set %s or run 'notionctl setup --token <token>'", EnvVar).
		With("tried", tried)
	return Credential{}, ferr
}

// Save writes token to the secret store and drops any cached credential.
func (s *Store) Save(ctx context.Context, token string) error {
	if token == "" {
		return failure.Missing("token")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.secrets == nil {
		return failure.New(failure.InternalError, "no secret store configured")
	}
	if err := s.secrets.Set(s.service, s.account, token); err != nil {
		return failure.Wrap(failure.InternalError, err, "failed to store token in %s", s.service)
	}

	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	s.logger.Info("token stored", zap.String("service", s.service))
	return nil
}

// Forget drops the cached credential so the next Resolve runs the resolvers
// again.
func (s *Store) Forget() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
