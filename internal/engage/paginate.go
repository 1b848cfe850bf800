package engage

import (
	"context"
	"iter"
)

// FetchPage fetches one page for the given cursor and returns the page
// plus the cursor for the next one. The first call receives an empty
// cursor; an empty returned cursor ends the sequence.
type FetchPage[P any] func(ctx context.Context, cursor string) (page P, nextCursor string, err error)

// Pages returns a lazy sequence over a cursor-paged collaborator
// operation. One external call is made per yielded page; a fetch error is
// yielded once and ends the sequence. Finiteness depends on the
// collaborator eventually returning an empty cursor — a collaborator that
// keeps handing back fresh cursors will keep the loop alive.
func Pages[P any](ctx context.Context, fetch FetchPage[P]) iter.Seq2[P, error] {
	return func(yield func(P, error) bool) {
		cursor := ""
		for {
			page, next, err := fetch(ctx, cursor)
			if err != nil {
				var zero P
				yield(zero, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if next == "" {
				return
			}
			cursor = next
		}
	}
}
