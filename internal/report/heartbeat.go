package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bft-labs/hostbeat/pkg/log"
)

// ErrInvalidInterval is returned for a non-positive heartbeat interval.
var ErrInvalidInterval = errors.New("heartbeat interval must be positive")

// Heartbeat holds the settings of the heartbeat loop.
type Heartbeat struct {
	Interval time.Duration
	// ShowIdentity repeats the OS name in every heartbeat line.
	ShowIdentity bool
}

// Validate checks the heartbeat settings.
func (h Heartbeat) Validate() error {
	if h.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, h.Interval)
	}
	return nil
}

// HeartbeatLoop increments the counter, waits for the interval and prints a
// heartbeat line, forever. It only returns when ctx is done, with ctx.Err().
func (r *Reporter) HeartbeatLoop(ctx context.Context, hb Heartbeat) error {
	if err := hb.Validate(); err != nil {
		return err
	}

	r.logger.Info("heartbeat started",
		log.Duration("interval", hb.Interval),
		log.Bool("show_identity", hb.ShowIdentity),
	)

	timer := time.NewTimer(hb.Interval)
	defer timer.Stop()

	for {
		r.counter++

	wait:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case next := <-r.reload:
				hb = r.apply(hb, next)
			case <-timer.C:
				break wait
			}
		}

		fmt.Fprintln(r.out, r.heartbeatLine(hb))
		r.logger.Debug("heartbeat", log.Uint64("count", r.counter))
		timer.Reset(hb.Interval)
	}
}

// Reload hands new settings to a running HeartbeatLoop. A pending update that
// the loop has not picked up yet is replaced.
func (r *Reporter) Reload(hb Heartbeat) {
	for {
		select {
		case r.reload <- hb:
			return
		default:
		}
		select {
		case <-r.reload:
		default:
		}
	}
}

// Count returns the number of heartbeat iterations started so far.
func (r *Reporter) Count() uint64 {
	return r.counter
}

func (r *Reporter) apply(cur, next Heartbeat) Heartbeat {
	if err := next.Validate(); err != nil {
		r.logger.Warn("ignoring heartbeat reload", log.Err(err))
		return cur
	}
	if next != cur {
		r.logger.Info("heartbeat reloaded",
			log.Duration("interval", next.Interval),
			log.Bool("show_identity", next.ShowIdentity),
		)
	}
	return next
}

func (r *Reporter) heartbeatLine(hb Heartbeat) string {
	secs := strconv.FormatFloat(hb.Interval.Seconds(), 'f', -1, 64)
	if hb.ShowIdentity {
		return fmt.Sprintf("Waiting %s seconds on %s (%d)...", secs, r.host.OSName, r.counter)
	}
	return fmt.Sprintf("Waiting %s seconds (%d)...", secs, r.counter)
}
