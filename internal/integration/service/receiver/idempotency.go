package receiver

import (
	"sync"
	"time"

	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
)

// seenTTL bounds the local dedup window. StatusCake redelivers a webhook
// within seconds when the first acknowledgement is slow; a genuine repeat
// outage of the same test arrives well after this window.
const seenTTL = 2 * time.Minute

type seenEntry struct {
	marker string
	at     time.Time
}

var (
	seenMu sync.Mutex
	seen   = map[string]seenEntry{}
)

// DedupeMarker identifies the delivery's payload for dedup purposes. Entries
// are keyed by test id and hold only the latest marker, so an Up displaces the
// test's Down marker and a flap inside the TTL window is never mistaken for a
// redelivery.
func DedupeMarker(ev *model.AlertEvent) string {
	return ev.Status + "|" + ev.StatusCode
}

// AlreadySeen reports whether the test's latest marker matches within the TTL.
func AlreadySeen(testID, marker string) bool {
	seenMu.Lock()
	defer seenMu.Unlock()

	cutoff := time.Now().Add(-seenTTL)
	for k, e := range seen {
		if e.at.Before(cutoff) {
			delete(seen, k)
		}
	}

	e, ok := seen[testID]
	return ok && e.marker == marker
}

// MarkSeen records the test's latest marker, displacing any previous one.
func MarkSeen(testID, marker string) {
	seenMu.Lock()
	defer seenMu.Unlock()
	seen[testID] = seenEntry{marker: marker, at: time.Now()}
}
