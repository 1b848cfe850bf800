// Package engage computes, for a message in a channel, the set of channel
// members who did not engage with it: no reaction, no thread reply, not
// the author.
package engage

import (
	"context"
	"sort"

	"github.com/crewsight/nonengage/internal/logger"
	"github.com/crewsight/nonengage/internal/slack"
)

// API is the subset of the platform Web API the engine consumes.
type API interface {
	UsersList(ctx context.Context, cursor string) ([]slack.Member, string, error)
	ConversationsMembers(ctx context.Context, channel, cursor string) ([]string, string, error)
	GetMessage(ctx context.Context, channel, ts string) (*slack.Message, error)
	ReactionsGet(ctx context.Context, channel, ts string) ([]slack.Reaction, error)
	ConversationsReplies(ctx context.Context, channel, ts, cursor string) ([]slack.Message, string, error)
}

// Engine reconciles channel population against message engagement.
// The exclusion set is fixed at construction; every computation is a
// full, independent recomputation with nothing shared between runs.
type Engine struct {
	api        API
	exclusions map[string]struct{}
	log        *logger.Logger
}

// NewEngine creates an engine. Excluded IDs are never counted in a
// population regardless of channel membership or engagement.
func NewEngine(api API, excludedIDs []string) *Engine {
	exclusions := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		exclusions[id] = struct{}{}
	}
	return &Engine{
		api:        api,
		exclusions: exclusions,
		log:        logger.Get(),
	}
}

// Result is the outcome of one non-engager computation. NonEngagedIDs is
// sorted ascending and NonEngagedNames is parallel to it.
type Result struct {
	PopulationIDs   map[string]struct{}
	EngagedIDs      map[string]struct{}
	NonEngagedIDs   []string
	NonEngagedNames []string
}

// ComputeNonEngagers resolves the channel population and the engagement
// set for the message at ts, and returns who did not engage.
//
// Order matters: engagement is intersected with the population before
// exclusions are removed from it, so an excluded member who engaged is
// simply never counted either way.
func (e *Engine) ComputeNonEngagers(ctx context.Context, channel, ts string) (*Result, error) {
	dir, err := e.loadDirectory(ctx)
	if err != nil {
		return nil, err
	}

	pop, err := e.channelPopulation(ctx, channel, dir)
	if err != nil {
		return nil, err
	}

	msg, err := e.api.GetMessage(ctx, channel, ts)
	if err != nil {
		return nil, err
	}

	reacted, err := e.reactors(ctx, channel, ts)
	if err != nil {
		return nil, err
	}
	replied, err := e.repliers(ctx, channel, ts)
	if err != nil {
		return nil, err
	}

	engaged := make(map[string]struct{}, len(reacted)+len(replied)+1)
	for id := range reacted {
		engaged[id] = struct{}{}
	}
	for id := range replied {
		engaged[id] = struct{}{}
	}
	// authorship counts as engagement with one's own message; some
	// subtypes have no resolvable author, then nothing is added
	if msg.User != "" {
		engaged[msg.User] = struct{}{}
	}

	// engagement by non-members (removed or external users) does not count
	for id := range engaged {
		if _, ok := pop[id]; !ok {
			delete(engaged, id)
		}
	}

	for id := range e.exclusions {
		delete(pop, id)
	}

	non := make([]string, 0, len(pop))
	for id := range pop {
		if _, ok := engaged[id]; !ok {
			non = append(non, id)
		}
	}
	sort.Strings(non)

	names := make([]string, len(non))
	for i, id := range non {
		names[i] = dir.Name(id)
	}

	e.log.Info().
		Str("channel", channel).
		Str("ts", ts).
		Int("population", len(pop)).
		Int("engaged", len(engaged)).
		Int("non_engaged", len(non)).
		Msg("non-engager computation completed")

	return &Result{
		PopulationIDs:   pop,
		EngagedIDs:      engaged,
		NonEngagedIDs:   non,
		NonEngagedNames: names,
	}, nil
}
