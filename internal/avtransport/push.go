package avtransport

import (
	"context"
	"time"

	"github.com/minicast/minicast/internal/logger"
)

// Orchestrator drives one renderer to playing state through an ordered list
// of fallback strategies. Renderers disagree on whether metadata may be
// empty, which InstanceID is valid, and whether SetAVTransportURI works
// without a preceding Stop - so instead of guessing one renderer's quirks
// we try the cheapest, most spec-compliant attempt first and escalate.
type Orchestrator struct {
	client   *Client
	armDelay time.Duration
	log      logger.Logger
}

// NewOrchestrator returns an orchestrator for the given control client.
// armDelay is the pause between a successful SetAVTransportURI and the
// Play that follows - playback takes a moment to arm on most renderers.
func NewOrchestrator(client *Client, armDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		client:   client,
		armDelay: armDelay,
		log:      logger.New(),
	}
}

// PlayURL runs the strategy ladder until one Play succeeds, recording every
// attempted action in order. The returned report is never nil and its
// Success flag is true iff some Play step succeeded; on total failure the
// step list is the complete diagnostic trail.
func (o *Orchestrator) PlayURL(ctx context.Context, mediaURL, mime string) *PushReport {
	report := &PushReport{}

	meta := Metadata(mediaURL, "", mime)

	// best effort stop first: outcome recorded but ignored, some renderers
	// error on Stop when already stopped
	report.append(o.client.Stop(ctx, 0))

	strategies := []func() bool{
		// bare URI, instance 0
		func() bool { return o.setThenPlay(ctx, report, 0, mediaURL, "") },
		// with DIDL-Lite metadata, instance 0
		func() bool { return o.setThenPlay(ctx, report, 0, mediaURL, meta) },
		// explicit stop before the URI change
		func() bool {
			report.append(o.client.Stop(ctx, 0))
			return o.setThenPlay(ctx, report, 0, mediaURL, meta)
		},
		// single-instance renderers that want InstanceID=1
		func() bool { return o.setThenPlay(ctx, report, 1, mediaURL, meta) },
		// renderers that only honor the next slot
		func() bool {
			set := o.client.SetNextURI(ctx, 0, mediaURL, meta)
			report.append(set)

			if !set.OK() {
				return false
			}

			play := o.client.Play(ctx, 0)
			report.append(play)

			return play.OK()
		},
	}

	for i, strategy := range strategies {
		if ctx.Err() != nil {
			break
		}

		if strategy() {
			report.Success = true

			o.log.Info().
				Int("strategy", i+1).
				Int("steps", len(report.Steps)).
				Msg("renderer is playing")

			return report
		}
	}

	o.log.Warn().
		Int("steps", len(report.Steps)).
		Msg("every playback strategy failed")

	return report
}

// setThenPlay runs one SetAVTransportURI/Play pair, appending both results.
// Play is only attempted when the URI change succeeded.
func (o *Orchestrator) setThenPlay(
	ctx context.Context,
	report *PushReport,
	instanceID int,
	mediaURL string,
	metadata string,
) bool {
	set := o.client.SetURI(ctx, instanceID, mediaURL, metadata)
	report.append(set)

	if !set.OK() {
		return false
	}

	o.pause(ctx)

	play := o.client.Play(ctx, instanceID)
	report.append(play)

	return play.OK()
}

func (o *Orchestrator) pause(ctx context.Context) {
	if o.armDelay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(o.armDelay):
	}
}
