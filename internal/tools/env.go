package tools

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

// TokenSaver persists an API token to the OS secret store.
type TokenSaver interface {
	Save(ctx context.Context, token string) error
}

// Env carries the process-level dependencies handlers need.
type Env struct {
	Session *notion.Session
	Tokens  TokenSaver

	// Now defaults to time.Now.
	Now func() time.Time
}

func (e *Env) caller(ctx context.Context) (notion.Caller, error) {
	if e == nil || e.Session == nil {
		return nil, failure.New(failure.InternalError, "no Notion session configured")
	}
	return e.Session.Caller(ctx)
}

func (e *Env) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
