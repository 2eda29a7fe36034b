package tools

import (
	"context"
	"net/http"

	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

type searchParams struct {
	Query      string `json:"query"`
	Filter     string `json:"filter"`
	Sort       string `json:"sort"`
	MaxResults int    `json:"max_results"`
}

func handleSearch(ctx context.Context, env *Env, p searchParams) (any, error) {
	body := notion.Object{"query": p.Query}
	if p.Filter != "" {
		body["filter"] = notion.Object{"value": p.Filter, "property": "object"}
	}
	if p.Sort != "" {
		direction := "descending"
		if p.Sort == "asc" {
			direction = "ascending"
		}
		body["sort"] = notion.Object{"direction": direction, "timestamp": "last_edited_time"}
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	return notion.Paginate(ctx, c, http.MethodPost, "/search", nil, body, p.MaxResults)
}
