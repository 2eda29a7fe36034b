package tools

import (
	"context"
	"net/http"
	"strings"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

const teamsWarning = "The public Notion API does not have a dedicated teams endpoint. Returning workspace users as a proxy."

type setupParams struct {
	Token  string `json:"token"`
	Verify bool   `json:"verify"`
}

func handleSetup(ctx context.Context, env *Env, p setupParams) (any, error) {
	if p.Token == "" && !p.Verify {
		e := failure.Missing("token")
		e.Message = "provide token to store, or verify to test the current token"
		return nil, e
	}

	if p.Token != "" {
		if env == nil || env.Tokens == nil {
			return nil, failure.New(failure.InternalError, "no credential store configured")
		}
		if err := env.Tokens.Save(ctx, p.Token); err != nil {
			return nil, err
		}
		if env.Session != nil {
			env.Session.Reset()
		}
		if !p.Verify {
			return notion.Object{"success": true, "message": "Token stored in Keychain."}, nil
		}
	}

	var (
		c   notion.Caller
		err error
	)
	if p.Token != "" {
		if env.Session == nil {
			return nil, failure.New(failure.InternalError, "no Notion session configured")
		}
		c = env.Session.WithToken(config.Secret(p.Token))
	} else if c, err = env.caller(ctx); err != nil {
		return nil, err
	}

	bot, err := c.Call(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	out := notion.Object{"success": true, "message": "Token is valid.", "bot": bot}
	if p.Token != "" {
		out["stored"] = true
	}
	return out, nil
}

type getUsersParams struct {
	Query      string `json:"query"`
	UserID     string `json:"user_id"`
	MaxResults int    `json:"max_results"`
}

func handleGetUsers(ctx context.Context, env *Env, p getUsersParams) (any, error) {
	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}

	if p.UserID != "" {
		uid := p.UserID
		if uid != "me" {
			uid = notion.NormalizeID(uid)
		}
		return c.Call(ctx, http.MethodGet, "/users/"+uid, nil, nil)
	}

	res, err := notion.Paginate(ctx, c, http.MethodGet, "/users", nil, nil, p.MaxResults)
	if err != nil {
		return nil, err
	}
	users := filterUsers(res["results"], p.Query, true)
	return notion.Object{"results": users, "total": len(users)}, nil
}

type getTeamsParams struct {
	Query string `json:"query"`
}

func handleGetTeams(ctx context.Context, env *Env, p getTeamsParams) (any, error) {
	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	res, err := notion.Paginate(ctx, c, http.MethodGet, "/users", nil, nil, 0)
	if err != nil {
		return nil, err
	}
	users := filterUsers(res["results"], p.Query, false)
	return notion.Object{"warning": teamsWarning, "users": users, "total": len(users)}, nil
}

// filterUsers keeps users whose name, or person email when byEmail is set,
// contains query case-insensitively. An empty query keeps everyone.
func filterUsers(results any, query string, byEmail bool) []any {
	users, _ := results.([]any)
	if query == "" {
		if users == nil {
			users = []any{}
		}
		return users
	}

	q := strings.ToLower(query)
	out := make([]any, 0, len(users))
	for _, item := range users {
		u, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := u["name"].(string)
		if strings.Contains(strings.ToLower(name), q) {
			out = append(out, u)
			continue
		}
		if !byEmail || u["type"] != "person" {
			continue
		}
		if person, ok := u["person"].(map[string]any); ok {
			email, _ := person["email"].(string)
			if strings.Contains(strings.ToLower(email), q) {
				out = append(out, u)
			}
		}
	}
	return out
}
