// Package bot dispatches slash-command and message-shortcut requests to
// the engagement engine and delivers the results back to the requester.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewsight/nonengage/internal/engage"
	"github.com/crewsight/nonengage/internal/logger"
)

// Computer produces a non-engager result for one message.
type Computer interface {
	ComputeNonEngagers(ctx context.Context, channel, ts string) (*engage.Result, error)
}

// DeliveryAPI is the subset of the Web API used to deliver results.
type DeliveryAPI interface {
	ConversationsOpen(ctx context.Context, userID string) (string, error)
	PostMessage(ctx context.Context, channel, text string) error
	PostEphemeral(ctx context.Context, channel, user, text string) error
	UploadFile(ctx context.Context, channel, filename, title string, content []byte) error
	Respond(ctx context.Context, responseURL, text string) error
}

// EventPublisher publishes report lifecycle events.
type EventPublisher interface {
	PublishReportCompleted(ctx context.Context, event ReportCompletedEvent) error
}

// ReportCompletedEvent is emitted after a report has been delivered.
type ReportCompletedEvent struct {
	RunID       uuid.UUID `json:"run_id"`
	ChannelID   string    `json:"channel_id"`
	MessageTS   string    `json:"message_ts"`
	Population  int       `json:"population"`
	Engaged     int       `json:"engaged"`
	NonEngaged  int       `json:"non_engaged"`
	CompletedAt time.Time `json:"completed_at"`
}

// Reporter runs one report end to end: compute, DM the requester the
// summary, attach the full CSV, publish the completion event.
type Reporter struct {
	engine       Computer
	api          DeliveryAPI
	publisher    EventPublisher // nil disables publishing
	summaryLimit int
	log          *logger.Logger
}

// NewReporter creates a reporter.
func NewReporter(engine Computer, api DeliveryAPI, publisher EventPublisher, summaryLimit int) *Reporter {
	if summaryLimit <= 0 {
		summaryLimit = engage.DefaultSummaryLimit
	}
	return &Reporter{
		engine:       engine,
		api:          api,
		publisher:    publisher,
		summaryLimit: summaryLimit,
		log:          logger.Get(),
	}
}

// Run implements Runner. Failures anywhere abort the run and are reported
// back to the requester with the error's literal text — no partial results.
func (r *Reporter) Run(ctx context.Context, run *Run) {
	opts := run.Options

	r.log.Info().
		Str("run_id", run.ID.String()).
		Str("channel", opts.ChannelID).
		Str("ts", opts.MessageTS).
		Msg("starting report")

	res, err := r.engine.ComputeNonEngagers(ctx, opts.ChannelID, opts.MessageTS)
	if err != nil {
		r.log.Error().Err(err).Str("run_id", run.ID.String()).Msg("report computation failed")
		r.fail(ctx, opts, err)
		return
	}

	if err := r.deliver(ctx, opts, res); err != nil {
		r.log.Error().Err(err).Str("run_id", run.ID.String()).Msg("report delivery failed")
		r.fail(ctx, opts, err)
		return
	}

	if r.publisher != nil {
		event := ReportCompletedEvent{
			RunID:       run.ID,
			ChannelID:   opts.ChannelID,
			MessageTS:   opts.MessageTS,
			Population:  len(res.PopulationIDs),
			Engaged:     len(res.EngagedIDs),
			NonEngaged:  len(res.NonEngagedIDs),
			CompletedAt: time.Now(),
		}
		if err := r.publisher.PublishReportCompleted(ctx, event); err != nil {
			r.log.Warn().Err(err).Msg("failed to publish report event")
		}
	}
}

// deliver DMs the requester a headline plus summary and, when anyone is
// left to report, uploads the complete CSV to the same DM.
func (r *Reporter) deliver(ctx context.Context, opts RunOptions, res *engage.Result) error {
	dm, err := r.api.ConversationsOpen(ctx, opts.UserID)
	if err != nil {
		return fmt.Errorf("open dm: %w", err)
	}

	text := headline(res) + "\n\n" + engage.Summarize(res.NonEngagedNames, r.summaryLimit)
	if err := r.api.PostMessage(ctx, dm, text); err != nil {
		return fmt.Errorf("post summary: %w", err)
	}

	if len(res.NonEngagedIDs) == 0 {
		return nil
	}

	data, err := engage.CSV(res)
	if err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	if err := r.api.UploadFile(ctx, dm, "non_engagers.csv", "Non-engagers", data); err != nil {
		return fmt.Errorf("upload csv: %w", err)
	}
	return nil
}

// fail reports the error text back to the requester: via the slash
// command's response_url when present, otherwise ephemerally in the
// channel the shortcut was used in.
func (r *Reporter) fail(ctx context.Context, opts RunOptions, cause error) {
	text := fmt.Sprintf("Sorry, I couldn't compute that: `%v`", cause)

	var err error
	if opts.ResponseURL != "" {
		err = r.api.Respond(ctx, opts.ResponseURL, text)
	} else {
		err = r.api.PostEphemeral(ctx, opts.ChannelID, opts.UserID, text)
	}
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to report error to requester")
	}
}

func headline(res *engage.Result) string {
	return fmt.Sprintf("*Members considered:* %d  ·  *Engaged:* %d  ·  *Non-engagers:* %d",
		len(res.PopulationIDs), len(res.EngagedIDs), len(res.NonEngagedIDs))
}
