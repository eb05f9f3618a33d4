package model

import "time"

const (
	StatusDown = "Down"
	StatusUp   = "Up"

	// MethodWebsite is the only StatusCake test method this service handles.
	MethodWebsite = "Website"
)

// AlertEvent is one decoded StatusCake webhook delivery. It lives for the
// duration of a single invocation and is never persisted.
type AlertEvent struct {
	TestID     string
	Name       string
	Method     string
	Status     string
	StatusCode string
	URL        string
	IP         string
	Tags       []string
}

// CorrelationRecord links a monitoring test to the ticket opened for its most
// recent Down alert. CreatedAt doubles as the "down since" marker used to
// compute total downtime when the Up alert arrives.
type CorrelationRecord struct {
	ID        string
	TestID    string
	TestName  string
	URL       string
	IP        string
	TicketID  int64
	CreatedAt time.Time
}
