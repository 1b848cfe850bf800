package engage

import (
	"context"
	"fmt"

	"github.com/crewsight/nonengage/internal/slack"
)

// reactors collects the union of all reactor IDs across every reaction on
// the target message. The direct reactions fetch is the primary path; on
// an API-level error it falls back to reading the reaction list embedded
// in the message body. Transport failures do not trigger the fallback.
func (e *Engine) reactors(ctx context.Context, channel, ts string) (map[string]struct{}, error) {
	rxns, err := e.api.ReactionsGet(ctx, channel, ts)
	if err != nil {
		if !slack.IsAPIError(err) {
			return nil, err
		}
		e.log.Debug().Err(err).Msg("reactions fetch failed, reading message body instead")
		msg, ferr := e.api.GetMessage(ctx, channel, ts)
		if ferr != nil {
			return nil, ferr
		}
		rxns = msg.Reactions
	}

	out := make(map[string]struct{})
	for _, r := range rxns {
		for _, u := range r.Users {
			out[u] = struct{}{}
		}
	}
	return out, nil
}

// repliers collects the authors of every thread reply under the target
// message, skipping entries with no author and entries with a subtype
// (join/leave and similar system noise). The parent author is then
// removed: a self-reply alone is not engagement by others. If the parent
// fetch fails the removal is skipped without raising an error.
func (e *Engine) repliers(ctx context.Context, channel, ts string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	fetch := func(ctx context.Context, cursor string) ([]slack.Message, string, error) {
		return e.api.ConversationsReplies(ctx, channel, ts, cursor)
	}
	for page, err := range Pages(ctx, fetch) {
		if err != nil {
			return nil, fmt.Errorf("list thread replies: %w", err)
		}
		for _, m := range page {
			if m.User != "" && m.Subtype == "" {
				out[m.User] = struct{}{}
			}
		}
	}

	parent, err := e.api.GetMessage(ctx, channel, ts)
	if err != nil {
		e.log.Debug().Err(err).Msg("parent fetch failed, keeping author in reply set")
		return out, nil
	}
	delete(out, parent.User)
	return out, nil
}
