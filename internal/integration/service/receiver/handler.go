package receiver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/metrics"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
)

// AlertProcessor drives the ticket lifecycle for one decoded alert.
type AlertProcessor interface {
	HandleDown(ctx context.Context, ev *model.AlertEvent)
	HandleUp(ctx context.Context, ev *model.AlertEvent)
}

type Handler struct {
	proc  AlertProcessor
	cache AlertCache
}

// NewHandler uses a NoopCache; dedup is then process-local only.
func NewHandler(proc AlertProcessor) *Handler { return &Handler{proc: proc, cache: NoopCache{}} }

// NewHandlerWithCache allows injecting a real cache implementation.
func NewHandlerWithCache(proc AlertProcessor, cache AlertCache) *Handler {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Handler{proc: proc, cache: cache}
}

// statusLabel folds the request-supplied status into a fixed label set; raw
// values would let a caller mint unbounded metric series.
func statusLabel(s string) string {
	switch s {
	case model.StatusDown:
		return "down"
	case model.StatusUp:
		return "up"
	default:
		return "other"
	}
}

// StatusCakeWebhook handles one form-encoded uptime alert. Only Website tests
// are processed; everything else is rejected before any external call.
func (h *Handler) StatusCakeWebhook(c *gin.Context) {
	if !AuthMiddleware(c) {
		log.Warn().Msg("StatusCakeWebhook: authentication failed")
		return
	}

	ev := ParseAlertEvent(c)
	log.Info().
		Str("name", ev.Name).
		Str("method", ev.Method).
		Str("test_id", ev.TestID).
		Str("status", ev.Status).
		Str("url", ev.URL).
		Str("ip", ev.IP).
		Strs("tags", ev.Tags).
		Msg("StatusCakeWebhook: alert received")

	if ev.Method != model.MethodWebsite {
		log.Warn().Str("method", ev.Method).Msg("StatusCakeWebhook: method is not a website uptime, exiting")
		c.String(http.StatusBadRequest, "Method is not a website uptime. Exiting...")
		return
	}

	summary := ResponseSummary(ev)
	metrics.AlertsReceived.WithLabelValues(statusLabel(ev.Status)).Inc()

	marker := DedupeMarker(ev)
	if ok, err := h.cache.TryMarkIdempotent(c.Request.Context(), ev.TestID, marker); err != nil {
		// guard failure never blocks processing
		log.Error().Err(err).Msg("StatusCakeWebhook: idempotency cache unavailable, continuing")
	} else if !ok {
		log.Debug().Str("test_id", ev.TestID).Str("marker", marker).Msg("StatusCakeWebhook: alert already processed (distributed cache)")
		c.String(http.StatusOK, summary)
		return
	}
	if AlreadySeen(ev.TestID, marker) {
		log.Debug().Str("test_id", ev.TestID).Str("marker", marker).Msg("StatusCakeWebhook: alert already processed (local cache)")
		c.String(http.StatusOK, summary)
		return
	}

	switch ev.Status {
	case model.StatusDown:
		h.proc.HandleDown(c.Request.Context(), ev)
	case model.StatusUp:
		h.proc.HandleUp(c.Request.Context(), ev)
	default:
		log.Warn().Str("status", ev.Status).Msg("StatusCakeWebhook: no status")
	}

	MarkSeen(ev.TestID, marker)
	c.String(http.StatusOK, summary)
}
