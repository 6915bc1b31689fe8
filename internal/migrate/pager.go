package migrate

import "context"

// ForEachPage drives the limit/offset loop every paginated flow shares.
// fetch is called with an advancing offset until it returns an empty page;
// handle processes each non-empty page before the next fetch. Both the
// fetch and the handler stop the loop by returning an error, which is
// propagated unchanged — committed pages from earlier iterations are
// unaffected.
func ForEachPage[T any](ctx context.Context, size int, fetch func(ctx context.Context, limit, offset int) ([]T, error), handle func(ctx context.Context, page []T) error) error {
	for offset := 0; ; offset += size {
		page, err := fetch(ctx, size, offset)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := handle(ctx, page); err != nil {
			return err
		}
	}
}
