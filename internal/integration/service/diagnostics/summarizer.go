package diagnostics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/statuscake"
)

const downAlertWindow = 14 * 24 * time.Hour

// Monitoring is the slice of the StatusCake client the summarizer consumes.
type Monitoring interface {
	UptimeTest(ctx context.Context, testID string) (*statuscake.UptimeTest, error)
	UptimeAlerts(ctx context.Context, testID string) ([]statuscake.UptimeAlert, error)
}

// Summarizer renders the human-readable diagnostics block appended to a new
// ticket's description: today's uptime, the previous down transition and the
// trailing two-week down count. Every fetch failure is non-fatal; the block
// degrades to whatever was obtained, possibly the empty string.
type Summarizer struct {
	mon   Monitoring
	nowFn func() time.Time
}

func New(mon Monitoring) *Summarizer {
	return &Summarizer{mon: mon, nowFn: time.Now}
}

// parseTriggeredAt strips the literal "+00:00" suffix and parses the rest as
// naive local time. This mirrors the upstream feed's observed format; it is a
// source-format quirk, not a timezone conversion.
func parseTriggeredAt(s string) (time.Time, error) {
	s = strings.Replace(s, "+00:00", "", 1)
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
}

func (s *Summarizer) Summarize(ctx context.Context, testID string) string {
	var b strings.Builder

	details, err := s.mon.UptimeTest(ctx, testID)
	if err != nil {
		log.Error().Err(err).Str("test_id", testID).Msg("fetch uptime details failed")
	} else if details != nil {
		b.WriteString("Additional Details \n")
		b.WriteString("-----------------------\n")
		fmt.Fprintf(&b, "Today's Uptime: %v%% \n", details.Uptime)
	}

	alerts, err := s.mon.UptimeAlerts(ctx, testID)
	if err != nil {
		log.Error().Err(err).Str("test_id", testID).Msg("fetch uptime alerts failed")
		return b.String()
	}

	// history is newest first; index 0 is the down transition that triggered
	// this very run, so index 1 is the last prior outage
	var downTimes []time.Time
	for _, a := range alerts {
		if a.Status != "down" {
			continue
		}
		t, err := parseTriggeredAt(a.TriggeredAt)
		if err != nil {
			log.Warn().Str("triggered_at", a.TriggeredAt).Msg("unparseable alert timestamp, skipping")
			continue
		}
		downTimes = append(downTimes, t)
	}

	if len(downTimes) > 1 {
		fmt.Fprintf(&b, "Last Downtime: %s \n", downTimes[1].Format("Mon Jan 02 2006 3:04:05 PM"))
	}

	cutoff := s.nowFn().Add(-downAlertWindow)
	recent := 0
	for _, t := range downTimes {
		if t.After(cutoff) {
			recent++
		}
	}
	if recent > 0 {
		fmt.Fprintf(&b, "Total Down Alerts (past 2 weeks): %d", recent)
	}

	return b.String()
}
