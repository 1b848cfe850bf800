package engage

import (
	"context"
	"fmt"

	"github.com/crewsight/nonengage/internal/slack"
)

// SystemAccountID is the reserved workspace system account. It is never
// counted in a channel population.
const SystemAccountID = "USLACKBOT"

// countable is the keep policy for channel members: the directory must
// have a record, and bots, the system account and deleted accounts are out.
func countable(m slack.Member, ok bool) bool {
	if !ok {
		return false
	}
	if m.IsBot || m.ID == SystemAccountID {
		return false
	}
	if m.Deleted {
		return false
	}
	return true
}

// channelPopulation drains the channel membership listing and keeps the
// IDs whose directory record passes the keep policy. The result is a set;
// ordering is imposed later, at reconciliation.
func (e *Engine) channelPopulation(ctx context.Context, channel string, dir Directory) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	fetch := func(ctx context.Context, cursor string) ([]string, string, error) {
		return e.api.ConversationsMembers(ctx, channel, cursor)
	}
	for page, err := range Pages(ctx, fetch) {
		if err != nil {
			return nil, fmt.Errorf("list channel members: %w", err)
		}
		for _, id := range page {
			m, ok := dir[id]
			if countable(m, ok) {
				ids[id] = struct{}{}
			}
		}
	}
	return ids, nil
}
