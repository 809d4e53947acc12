package balldontlie

import (
	"context"
	"net/url"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// drain follows next_cursor until the last page and returns every record in page order.
// It gives up with ErrPageLimitExceeded once maxPages pages still point further, or when
// the upstream hands back a cursor it already returned.
func drain[T any](ctx context.Context, c *Client, version APIVersion, endpoint string, query url.Values) ([]T, error) {
	out := make([]T, 0)
	seen := make(map[int64]struct{})
	var cursor *int64

	for page := 1; ; page++ {
		p, err := c.FetchPage(ctx, version, endpoint, query, cursor)
		if err != nil {
			return nil, err
		}

		var records []T
		if err := sonic.Unmarshal(p.Data, &records); err != nil {
			return nil, crerr.Mark(crerr.Wrapf(err, "decode %s page=%d", endpoint, page), ErrMalformedResponse)
		}
		out = append(out, records...)

		if p.NextCursor == nil {
			return out, nil
		}
		if _, repeated := seen[*p.NextCursor]; repeated {
			return nil, crerr.Wrapf(ErrPageLimitExceeded, "%s repeated cursor=%d", endpoint, *p.NextCursor)
		}
		if page >= c.maxPages {
			return nil, crerr.Wrapf(ErrPageLimitExceeded, "%s exceeded max_pages=%d", endpoint, c.maxPages)
		}
		seen[*p.NextCursor] = struct{}{}
		cursor = p.NextCursor
	}
}

// single decodes the first page only, for endpoints that are not paginated.
func single[T any](ctx context.Context, c *Client, version APIVersion, endpoint string, query url.Values) ([]T, error) {
	p, err := c.FetchPage(ctx, version, endpoint, query, nil)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := sonic.Unmarshal(p.Data, &records); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "decode %s", endpoint), ErrMalformedResponse)
	}
	return records, nil
}
