package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches all pages from a Notion database, handling pagination.
// Rate limiting is enforced by the Client (3 req/s by default).
// Uses prefetch: starts fetching page N+1 in a goroutine while the caller
// is still holding page N, reducing effective latency for multi-page
// databases. Result order follows Notion's cursor order.
func QueryAll(ctx context.Context, c Client, dbID string) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}

	type prefetchResult struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}
	var prefetchCh <-chan prefetchResult

	for {
		var resp *notionapi.DatabaseQueryResponse
		var err error

		if prefetchCh != nil {
			result := <-prefetchCh
			resp, err = result.resp, result.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, req)
		}

		if err != nil {
			return nil, eris.Wrap(err, "notion: query all pages")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}

		nextReq := &notionapi.DatabaseQueryRequest{
			StartCursor: resp.NextCursor,
		}

		ch := make(chan prefetchResult, 1)
		prefetchCh = ch
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, nextReq)
			ch <- prefetchResult{resp: r, err: e}
		}()
	}

	return all, nil
}
