package tools

import (
	"context"
	"net/http"
	"strings"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

var blockActions = []string{"get", "children", "append", "update", "delete"}

type blocksParams struct {
	Action     string `json:"action"`
	BlockID    string `json:"block_id"`
	Blocks     any    `json:"blocks_json"`
	Block      any    `json:"block_json"`
	Text       string `json:"text"`
	MaxResults int    `json:"max_results"`
}

func handleBlocks(ctx context.Context, env *Env, p blocksParams) (any, error) {
	if p.BlockID == "" {
		return nil, failure.Missing("block_id")
	}

	var (
		children []any
		update   notion.Object
		err      error
	)
	switch p.Action {
	case "append":
		if children, err = arrayArg("blocks_json", p.Blocks); err != nil {
			return nil, err
		}
		if len(children) == 0 {
			if p.Text == "" {
				return nil, missingOneOf("blocks_json", "text")
			}
			children = []any{notion.Paragraph(p.Text)}
		}
	case "update":
		if update, err = objectArg("block_json", p.Block); err != nil {
			return nil, err
		}
		if update == nil {
			return nil, failure.Missing("block_json")
		}
	case "get", "children", "delete":
	default:
		return nil, failure.Invalid("action", "one of "+strings.Join(blockActions, ", "))
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	id := notion.NormalizeID(p.BlockID)

	switch p.Action {
	case "get":
		return c.Call(ctx, http.MethodGet, "/blocks/"+id, nil, nil)
	case "children":
		return notion.Paginate(ctx, c, http.MethodGet, "/blocks/"+id+"/children", nil, nil, p.MaxResults)
	case "append":
		return notion.AppendChildren(ctx, c, id, children)
	case "update":
		return c.Call(ctx, http.MethodPatch, "/blocks/"+id, nil, update)
	default:
		return c.Call(ctx, http.MethodDelete, "/blocks/"+id, nil, nil)
	}
}
