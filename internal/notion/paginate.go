package notion

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PageSize is the page size requested when paginating.
const PageSize = 100

// Paginate follows has_more/next_cursor until the listing is exhausted or
// max results have been collected (max <= 0 means no limit). POST requests
// carry the cursor in the body, everything else in the query string.
//
// The result has the shape {"results": [...], "total": n}.
func Paginate(ctx context.Context, c Caller, method, path string, query url.Values, body Object, max int) (Object, error) {
	all := make([]any, 0)
	cursor := ""

	for {
		var (
			resp Object
			err  error
		)
		if method == http.MethodPost {
			req := make(Object, len(body)+2)
			for k, v := range body {
				req[k] = v
			}
			req["page_size"] = PageSize
			if cursor != "" {
				req["start_cursor"] = cursor
			}
			resp, err = c.Call(ctx, method, path, query, req)
		} else {
			q := url.Values{}
			for k, v := range query {
				q[k] = append([]string(nil), v...)
			}
			q.Set("page_size", strconv.Itoa(PageSize))
			if cursor != "" {
				q.Set("start_cursor", cursor)
			}
			resp, err = c.Call(ctx, method, path, q, nil)
		}
		if err != nil {
			return nil, err
		}

		results, _ := resp["results"].([]any)
		all = append(all, results...)

		if max > 0 && len(all) >= max {
			all = all[:max]
			break
		}

		hasMore, _ := resp["has_more"].(bool)
		next, _ := resp["next_cursor"].(string)
		if !hasMore || next == "" {
			break
		}
		cursor = next
	}

	return Object{"results": all, "total": len(all)}, nil
}
