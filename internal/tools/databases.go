package tools

import (
	"context"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/notionctl/internal/notion"
)

const (
	defaultMeetingQuery = "meeting"
	meetingScanLimit    = 50
)

type createDatabaseParams struct {
	ParentID    string `json:"parent_id"`
	Title       string `json:"title"`
	Properties  any    `json:"properties_json"`
	Description string `json:"description"`
	Inline      bool   `json:"inline"`
	IconEmoji   string `json:"icon_emoji"`
}

func handleCreateDatabase(ctx context.Context, env *Env, p createDatabaseParams) (any, error) {
	props, err := objectArg("properties_json", p.Properties)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = notion.Object{}
	}
	if !hasTitleProperty(props) {
		props["Name"] = notion.Object{"title": notion.Object{}}
	}

	body := notion.Object{
		"parent":     notion.Object{"page_id": notion.NormalizeID(p.ParentID)},
		"title":      notion.RichText(p.Title),
		"properties": props,
	}
	if p.Description != "" {
		body["description"] = notion.RichText(p.Description)
	}
	if p.Inline {
		body["is_inline"] = true
	}
	if p.IconEmoji != "" {
		body["icon"] = emojiIcon(p.IconEmoji)
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, http.MethodPost, "/databases", nil, body)
}

func hasTitleProperty(props notion.Object) bool {
	for _, v := range props {
		if prop, ok := v.(map[string]any); ok {
			if _, ok := prop["title"]; ok {
				return true
			}
		}
	}
	return false
}

type updateDatabaseParams struct {
	DatabaseID       string `json:"database_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Properties       any    `json:"properties_json"`
	RemoveProperties string `json:"remove_properties"`
	Archive          bool   `json:"archive"`
}

func handleUpdateDatabase(ctx context.Context, env *Env, p updateDatabaseParams) (any, error) {
	props, err := objectArg("properties_json", p.Properties)
	if err != nil {
		return nil, err
	}
	for _, name := range splitList(p.RemoveProperties) {
		if props == nil {
			props = notion.Object{}
		}
		props[name] = nil
	}

	body := notion.Object{}
	if p.Title != "" {
		body["title"] = notion.RichText(p.Title)
	}
	if p.Description != "" {
		body["description"] = notion.RichText(p.Description)
	}
	if len(props) > 0 {
		body["properties"] = props
	}
	if p.Archive {
		body["archived"] = true
	}
	if len(body) == 0 {
		return nil, missingOneOf("title", "description", "properties_json", "remove_properties", "archive")
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, http.MethodPatch, "/databases/"+notion.NormalizeID(p.DatabaseID), nil, body)
}

type queryDatabaseParams struct {
	DatabaseID     string `json:"database_id"`
	Filter         any    `json:"filter_json"`
	Sorts          any    `json:"sorts_json"`
	MaxResults     int    `json:"max_results"`
	PageSize       int    `json:"page_size"`
	Cursor         string `json:"cursor"`
	NoAutoPaginate bool   `json:"no_auto_paginate"`
}

func handleQueryDatabase(ctx context.Context, env *Env, p queryDatabaseParams) (any, error) {
	filter, err := objectArg("filter_json", p.Filter)
	if err != nil {
		return nil, err
	}
	sorts, err := arrayArg("sorts_json", p.Sorts)
	if err != nil {
		return nil, err
	}

	body := notion.Object{}
	if filter != nil {
		body["filter"] = filter
	}
	if sorts != nil {
		body["sorts"] = sorts
	}

	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}
	path := "/databases/" + notion.NormalizeID(p.DatabaseID) + "/query"

	if p.NoAutoPaginate {
		if p.PageSize > 0 {
			body["page_size"] = min(p.PageSize, notion.PageSize)
		}
		if p.Cursor != "" {
			body["start_cursor"] = p.Cursor
		}
		return c.Call(ctx, http.MethodPost, path, nil, body)
	}
	return notion.Paginate(ctx, c, http.MethodPost, path, nil, body, p.MaxResults)
}

type meetingNotesParams struct {
	TitleContains string `json:"title_contains"`
	DateFrom      string `json:"date_from"`
	DateTo        string `json:"date_to"`
	DateRelative  string `json:"date_relative"`
	AttendeeID    string `json:"attendee_id"`
	MaxResults    int    `json:"max_results"`
}

// handleQueryMeetingNotes searches by title and filters the pages locally.
// date_from and date_to compare against created_time truncated to the
// length of the given bound, so both dates and full timestamps work.
func handleQueryMeetingNotes(ctx context.Context, env *Env, p meetingNotesParams) (any, error) {
	c, err := env.caller(ctx)
	if err != nil {
		return nil, err
	}

	query := p.TitleContains
	if query == "" {
		query = defaultMeetingQuery
	}
	limit := p.MaxResults
	if limit == 0 {
		limit = meetingScanLimit
	}
	res, err := notion.Paginate(ctx, c, http.MethodPost, "/search", nil, notion.Object{"query": query}, limit)
	if err != nil {
		return nil, err
	}

	since := relativeCutoff(p.DateRelative, env.now())
	attendee := notion.NormalizeID(p.AttendeeID)

	pages, _ := res["results"].([]any)
	filtered := make([]any, 0, len(pages))
	for _, item := range pages {
		page, ok := item.(map[string]any)
		if !ok || page["object"] != "page" {
			continue
		}
		created, _ := page["created_time"].(string)
		if p.DateFrom != "" && truncate(created, len(p.DateFrom)) < p.DateFrom {
			continue
		}
		if p.DateTo != "" && truncate(created, len(p.DateTo)) > p.DateTo {
			continue
		}
		if !since.IsZero() {
			if ts, err := time.Parse(time.RFC3339, created); err == nil && ts.Before(since) {
				continue
			}
		}
		if attendee != "" && !hasAttendee(page, attendee) {
			continue
		}
		filtered = append(filtered, page)
	}

	return notion.Object{"results": filtered, "total": len(filtered)}, nil
}

// relativeCutoff returns the earliest creation time allowed by window.
// this_week starts on Monday 00:00 UTC.
func relativeCutoff(window string, now time.Time) time.Time {
	switch window {
	case "past_week":
		return now.AddDate(0, 0, -7)
	case "past_month":
		return now.AddDate(0, 0, -30)
	case "this_week":
		now = now.UTC()
		offset := (int(now.Weekday()) + 6) % 7
		y, m, d := now.AddDate(0, 0, -offset).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return time.Time{}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// hasAttendee reports whether userID created the page or appears in one of
// its people properties.
func hasAttendee(page map[string]any, userID string) bool {
	if by, ok := page["created_by"].(map[string]any); ok {
		if id, _ := by["id"].(string); notion.NormalizeID(id) == userID {
			return true
		}
	}
	props, _ := page["properties"].(map[string]any)
	for _, v := range props {
		prop, ok := v.(map[string]any)
		if !ok || prop["type"] != "people" {
			continue
		}
		people, _ := prop["people"].([]any)
		for _, person := range people {
			u, ok := person.(map[string]any)
			if !ok {
				continue
			}
			if id, _ := u["id"].(string); notion.NormalizeID(id) == userID {
				return true
			}
		}
	}
	return false
}
