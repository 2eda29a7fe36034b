package tools

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

type createCommentParams struct {
	ParentID     string `json:"parent_id"`
	DiscussionID string `json:"discussion_id"`
	Text         string `json:"text"`
	RichText     any    `json:"rich_text_json"`
}

func handleCreateComment(ctx context.Context, env *Env, p createCommentParams) (any, error) {
	richText, err := arrayArg("rich_text_json", p.RichText)
	if err != nil {
		return nil, err
	}
	if richText == nil {
		if p.Text == "" {
			return nil, missingOneOf("text", "rich_text_json")
		}
		richText = notion.RichText(p.Text)
	}
	if p.ParentID == "" && p.DiscussionID == "" {
		return nil, missingOneOf("parent_id", "discussion_id")
	}

	body := notion.Object{"rich_text": richText}
	if p.ParentID != "" {
		body["parent"] = notion.Object{"page_id": notion.NormalizeID(p.ParentID)}
	}
	if p.DiscussionID != "" {
		body["discussion_id"] = p.DiscussionID
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, http.MethodPost, "/comments", nil, body)
}

type getCommentsParams struct {
	PageID     string `json:"page_id"`
	MaxResults int    `json:"max_results"`
}

func handleGetComments(ctx context.Context, env *Env, p getCommentsParams) (any, error) {
	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	query := url.Values{"block_id": {notion.NormalizeID(p.PageID)}}
	return notion.Paginate(ctx, c, http.MethodGet, "/comments", query, nil, p.MaxResults)
}
