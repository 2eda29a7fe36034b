package tools

import (
	"context"
	"net/http"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

// copyablePropertyTypes are the property types duplicate-page carries over
// besides the title.
var copyablePropertyTypes = map[string]bool{
	"rich_text":    true,
	"number":       true,
	"select":       true,
	"multi_select": true,
	"date":         true,
	"checkbox":     true,
	"url":          true,
	"email":        true,
	"phone_number": true,
}

type fetchParams struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	IncludeChildren bool   `json:"include_children"`
}

// handleFetch tries page, then database, then block when no type is given.
// Only "not this kind of object" answers (400, 404) fall through.
func handleFetch(ctx context.Context, env *Env, p fetchParams) (any, error) {
	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	id := notion.NormalizeID(p.ID)

	if p.Type == "" || p.Type == "page" {
		page, err := c.Call(ctx, http.MethodGet, "/pages/"+id, nil, nil)
		if err == nil {
			if p.IncludeChildren {
				children, err := notion.FetchChildren(ctx, c, id, notion.MaxChildDepth)
				if err != nil {
					return nil, err
				}
				page["children"] = children
			}
			return page, nil
		}
		if p.Type == "page" || !wrongObjectType(err) {
			return nil, err
		}
	}

	if p.Type == "" || p.Type == "database" {
		db, err := c.Call(ctx, http.MethodGet, "/databases/"+id, nil, nil)
		if err == nil {
			return db, nil
		}
		if p.Type == "database" || !wrongObjectType(err) {
			return nil, err
		}
	}

	block, err := c.Call(ctx, http.MethodGet, "/blocks/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	if has, _ := block["has_children"].(bool); p.IncludeChildren && has {
		children, err := notion.FetchChildren(ctx, c, id, notion.MaxChildDepth)
		if err != nil {
			return nil, err
		}
		block["children"] = children
	}
	return block, nil
}

func wrongObjectType(err error) bool {
	if !failure.Is(err, failure.RemoteError) {
		return false
	}
	status, _ := failure.As(err).Detail["status"].(int)
	return status == http.StatusBadRequest || status == http.StatusNotFound
}

type createPageParams struct {
	ParentID      string `json:"parent_id"`
	Title         string `json:"title"`
	ParentType    string `json:"parent_type"`
	TitleProperty string `json:"title_property"`
	Properties    any    `json:"properties_json"`
	Content       any    `json:"content_json"`
	ContentText   string `json:"content_text"`
	IconEmoji     string `json:"icon_emoji"`
	CoverURL      string `json:"cover_url"`
}

func handleCreatePage(ctx context.Context, env *Env, p createPageParams) (any, error) {
	props, err := objectArg("properties_json", p.Properties)
	if err != nil {
		return nil, err
	}
	children, err := arrayArg("content_json", p.Content)
	if err != nil {
		return nil, err
	}

	if props == nil {
		props = notion.Object{}
	}
	if p.Title != "" {
		key := "title"
		if p.ParentType == "database_id" {
			key = p.TitleProperty
		}
		props[key] = notion.Object{"title": notion.RichText(p.Title)}
	}
	if children == nil && p.ContentText != "" {
		children = []any{notion.Paragraph(p.ContentText)}
	}

	body := notion.Object{
		"parent":     notion.Object{p.ParentType: notion.NormalizeID(p.ParentID)},
		"properties": props,
	}
	if len(children) > 0 {
		body["children"] = children
	}
	if p.IconEmoji != "" {
		body["icon"] = emojiIcon(p.IconEmoji)
	}
	if p.CoverURL != "" {
		body["cover"] = externalCover(p.CoverURL)
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, http.MethodPost, "/pages", nil, body)
}

type updatePageParams struct {
	PageID       string `json:"page_id"`
	Properties   any    `json:"properties_json"`
	Title        string `json:"title"`
	Archive      bool   `json:"archive"`
	Unarchive    bool   `json:"unarchive"`
	IconEmoji    string `json:"icon_emoji"`
	CoverURL     string `json:"cover_url"`
	AppendBlocks any    `json:"append_blocks_json"`
	AppendText   string `json:"append_text"`
}

// handleUpdatePage patches page metadata first and then appends content.
// Each step is its own request; an append failure leaves the patch applied.
func handleUpdatePage(ctx context.Context, env *Env, p updatePageParams) (any, error) {
	props, err := objectArg("properties_json", p.Properties)
	if err != nil {
		return nil, err
	}
	blocks, err := arrayArg("append_blocks_json", p.AppendBlocks)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 && p.AppendText != "" {
		blocks = []any{notion.Paragraph(p.AppendText)}
	}

	patching := props != nil || p.Title != "" || p.Archive || p.Unarchive || p.IconEmoji != "" || p.CoverURL != ""
	if !patching && len(blocks) == 0 {
		return nil, missingOneOf("properties_json", "title", "archive", "unarchive",
			"icon_emoji", "cover_url", "append_blocks_json", "append_text")
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	id := notion.NormalizeID(p.PageID)

	var resp notion.Object
	if patching {
		body := notion.Object{}
		switch {
		case props != nil:
			body["properties"] = props
		case p.Title != "":
			prop, err := titleProperty(ctx, c, id)
			if err != nil {
				return nil, err
			}
			body["properties"] = notion.Object{prop: notion.Object{"title": notion.RichText(p.Title)}}
		}
		if p.Archive {
			body["archived"] = true
		}
		if p.Unarchive {
			body["archived"] = false
		}
		if p.IconEmoji != "" {
			body["icon"] = emojiIcon(p.IconEmoji)
		}
		if p.CoverURL != "" {
			body["cover"] = externalCover(p.CoverURL)
		}

		if resp, err = c.Call(ctx, http.MethodPatch, "/pages/"+id, nil, body); err != nil {
			return nil, err
		}
	}

	if len(blocks) > 0 {
		if resp, err = notion.AppendChildren(ctx, c, id, blocks); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// titleProperty returns the name of the page's title property, or "title"
// when the page has none.
func titleProperty(ctx context.Context, c notion.Caller, pageID string) (string, error) {
	page, err := c.Call(ctx, http.MethodGet, "/pages/"+pageID, nil, nil)
	if err != nil {
		return "", err
	}
	props, _ := page["properties"].(map[string]any)
	for name, v := range props {
		if prop, ok := v.(map[string]any); ok && prop["type"] == "title" {
			return name, nil
		}
	}
	return "title", nil
}

type movePageParams struct {
	PageIDs       string `json:"page_ids"`
	NewParentID   string `json:"new_parent_id"`
	NewParentType string `json:"new_parent_type"`
}

// handleMovePage moves pages one at a time. A failure stops the sequence;
// pages already moved stay moved.
func handleMovePage(ctx context.Context, env *Env, p movePageParams) (any, error) {
	ids := splitList(p.PageIDs)
	if len(ids) == 0 {
		return nil, failure.Missing("page_ids")
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}

	parent := notion.Object{p.NewParentType: notion.NormalizeID(p.NewParentID)}
	results := make([]any, 0, len(ids))
	for _, id := range ids {
		resp, err := c.Call(ctx, http.MethodPatch, "/pages/"+notion.NormalizeID(id), nil, notion.Object{"parent": parent})
		if err != nil {
			return nil, err
		}
		results = append(results, resp)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return notion.Object{"results": results, "total": len(results)}, nil
}

type duplicatePageParams struct {
	PageID      string `json:"page_id"`
	NewTitle    string `json:"new_title"`
	NewParentID string `json:"new_parent_id"`
}

// handleDuplicatePage reads the source page and its block tree, creates the
// copy with the first batch of blocks, then appends the rest. There is no
// rollback: a failed append leaves a partial copy behind.
func handleDuplicatePage(ctx context.Context, env *Env, p duplicatePageParams) (any, error) {
	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	id := notion.NormalizeID(p.PageID)

	source, err := c.Call(ctx, http.MethodGet, "/pages/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	children, err := notion.FetchChildren(ctx, c, id, notion.MaxChildDepth)
	if err != nil {
		return nil, err
	}

	var parent any = source["parent"]
	if p.NewParentID != "" {
		parent = notion.Object{"page_id": notion.NormalizeID(p.NewParentID)}
	}
	if parent == nil {
		parent = notion.Object{}
	}

	body := notion.Object{
		"parent":     parent,
		"properties": copyProperties(source["properties"], p.NewTitle),
	}
	if icon := source["icon"]; icon != nil {
		body["icon"] = icon
	}
	if cover := source["cover"]; cover != nil {
		body["cover"] = cover
	}

	head, rest := children, []any(nil)
	if len(children) > notion.MaxAppendBlocks {
		head, rest = children[:notion.MaxAppendBlocks], children[notion.MaxAppendBlocks:]
	}
	if blocks := notion.PrepareBlocksForCopy(head); len(blocks) > 0 {
		body["children"] = blocks
	}

	created, err := c.Call(ctx, http.MethodPost, "/pages", nil, body)
	if err != nil {
		return nil, err
	}

	if len(rest) > 0 {
		newID, _ := created["id"].(string)
		if newID == "" {
			return nil, failure.New(failure.MalformedResponse, "POST /pages: created page has no id")
		}
		if _, err := notion.AppendChildren(ctx, c, newID, notion.PrepareBlocksForCopy(rest)); err != nil {
			return nil, err
		}
	}

	return notion.Object{
		"success":   true,
		"message":   "Page duplicated.",
		"source_id": id,
		"new_page":  created,
	}, nil
}

// copyProperties keeps the title and simple value properties of a page.
func copyProperties(v any, newTitle string) notion.Object {
	src, _ := v.(map[string]any)
	out := make(notion.Object, len(src))
	for name, raw := range src {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		propType, _ := prop["type"].(string)
		switch {
		case propType == "title":
			title := newTitle
			if title == "" {
				rt, _ := prop["title"].([]any)
				title = "Copy of " + notion.PlainText(rt)
			}
			out[name] = notion.Object{"title": notion.RichText(title)}
		case copyablePropertyTypes[propType]:
			out[name] = notion.Object{propType: prop[propType]}
		}
	}
	return out
}
