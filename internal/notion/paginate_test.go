package notion_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/fyrsmithlabs/notionctl/internal/notion"
	"github.com/fyrsmithlabs/notionctl/internal/notion/notiontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pages serves n results split into pages of size per page, keyed by cursor.
func pages(n, per int) notiontest.Responder {
	return func(req notiontest.Request) (notion.Object, error) {
		start := 0
		if body, ok := req.Body.(notion.Object); ok {
			if c, ok := body["start_cursor"].(string); ok {
				fmt.Sscanf(c, "c%d", &start)
			}
		} else if c := req.Query.Get("start_cursor"); c != "" {
			fmt.Sscanf(c, "c%d", &start)
		}
		end := start + per
		if end > n {
			end = n
		}
		results := make([]any, 0, end-start)
		for i := start; i < end; i++ {
			results = append(results, notion.Object{"id": fmt.Sprintf("r%d", i)})
		}
		resp := notion.Object{"results": results, "has_more": end < n}
		if end < n {
			resp["next_cursor"] = fmt.Sprintf("c%d", end)
		} else {
			resp["next_cursor"] = nil
		}
		return resp, nil
	}
}

func TestPaginate_POSTFollowsCursorInBody(t *testing.T) {
	fake := notiontest.New().On(http.MethodPost, "/search", pages(5, 2))

	out, err := notion.Paginate(context.Background(), fake, http.MethodPost, "/search", nil,
		notion.Object{"query": "x"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, out["total"])
	assert.Len(t, out["results"], 5)

	reqs := fake.Requests()
	require.Len(t, reqs, 3)
	first := reqs[0].Body.(notion.Object)
	assert.Equal(t, "x", first["query"])
	assert.Equal(t, 100, first["page_size"])
	assert.NotContains(t, first, "start_cursor")
	assert.Equal(t, "c2", reqs[1].Body.(notion.Object)["start_cursor"])
}

func TestPaginate_GETFollowsCursorInQuery(t *testing.T) {
	fake := notiontest.New().On(http.MethodGet, "/users", pages(3, 2))

	out, err := notion.Paginate(context.Background(), fake, http.MethodGet, "/users",
		url.Values{"block_id": {"b"}}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, out["total"])

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "100", reqs[0].Query.Get("page_size"))
	assert.Equal(t, "b", reqs[0].Query.Get("block_id"))
	assert.Nil(t, reqs[0].Body)
	assert.Equal(t, "c2", reqs[1].Query.Get("start_cursor"))
}

func TestPaginate_StopsAtMax(t *testing.T) {
	fake := notiontest.New().On(http.MethodPost, "/search", pages(10, 4))

	out, err := notion.Paginate(context.Background(), fake, http.MethodPost, "/search", nil, nil, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, out["total"])
	assert.Equal(t, 2, fake.Count())
}

func TestPaginate_DoesNotMutateInputs(t *testing.T) {
	fake := notiontest.New()
	body := notion.Object{"query": "x"}
	query := url.Values{"a": {"1"}}

	_, err := notion.Paginate(context.Background(), fake, http.MethodPost, "/search", nil, body, 0)
	require.NoError(t, err)
	_, err = notion.Paginate(context.Background(), fake, http.MethodGet, "/users", query, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, notion.Object{"query": "x"}, body)
	assert.Equal(t, url.Values{"a": {"1"}}, query)
}

func TestPaginate_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	fake := notiontest.New().Fail(http.MethodPost, "/search", boom)

	_, err := notion.Paginate(context.Background(), fake, http.MethodPost, "/search", nil, nil, 0)
	assert.ErrorIs(t, err, boom)
}

func TestPaginate_HasMoreWithoutCursorStops(t *testing.T) {
	fake := notiontest.New().Reply(http.MethodGet, "/users", notion.Object{
		"results":  []any{notion.Object{"id": "u"}},
		"has_more": true,
	})

	out, err := notion.Paginate(context.Background(), fake, http.MethodGet, "/users", nil, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, out["total"])
	assert.Equal(t, 1, fake.Count())
}
