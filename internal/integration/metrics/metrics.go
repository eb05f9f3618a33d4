package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AlertsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statuscake_alerts_received_total",
		Help: "Webhook alerts accepted for processing, by alert status.",
	}, []string{"status"})

	TicketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autotask_tickets_created_total",
		Help: "Tickets successfully created for Down alerts.",
	})

	TicketsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "autotask_tickets_closed_total",
		Help: "Tickets moved to a closing status on Up alerts.",
	})

	EscalationEmails = promauto.NewCounter(prometheus.CounterOpts{
		Name: "escalation_emails_total",
		Help: "Escalation emails attempted after failed ticket creation.",
	})

	AmbiguousResolutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "company_resolutions_ambiguous_total",
		Help: "Company resolutions that fell back to the unknown-company sentinel.",
	})
)

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
