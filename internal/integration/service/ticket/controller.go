package ticket

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/autotask"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/metrics"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/enricher"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/resolver"
)

// TicketAPI is the slice of the Autotask client the controller drives.
type TicketAPI interface {
	Preflight(ctx context.Context) error
	QueryTickets(ctx context.Context, filter autotask.Filter) ([]autotask.Ticket, error)
	CreateTicket(ctx context.Context, t *autotask.NewTicket) (int64, error)
	UpdateTicketStatus(ctx context.Context, ticketID int64, status int) error
	CreateTicketNote(ctx context.Context, ticketID int64, note *autotask.TicketNote) error
}

type CompanyResolver interface {
	ResolveCompany(ctx context.Context, displayName string, tags []string) autotask.Company
	ResolveDevice(ctx context.Context, companyID int64, tags []string, url, ip string) *autotask.ConfigurationItem
}

type ContextEnricher interface {
	Enrich(ctx context.Context, companyID int64) enricher.Context
}

type Summarizer interface {
	Summarize(ctx context.Context, testID string) string
}

// CorrelationStore persists the test-to-ticket mapping that lets an Up alert
// find the ticket opened by the earlier Down alert. The backing store is
// replaceable behind this interface.
type CorrelationStore interface {
	FindByTestID(ctx context.Context, testID string) ([]model.CorrelationRecord, error)
	Insert(ctx context.Context, rec *model.CorrelationRecord) error
	Delete(ctx context.Context, id, testID string) error
}

type Mailer interface {
	Send(ctx context.Context, subject, htmlContent string) error
}

// Defaults are the fixed Autotask field values stamped onto created tickets.
type Defaults struct {
	QueueID                 int
	IssueType               int
	SubIssueType            int
	ServiceLevelAgreementID int
	FallbackLocationID      int
}

// Controller is the open/close state machine per monitoring test: Down creates
// a ticket (or escalates by email) and persists a correlation record; Up
// consumes the record, closing the ticket with a downtime note.
type Controller struct {
	api      TicketAPI
	resolver CompanyResolver
	enricher ContextEnricher
	diag     Summarizer
	store    CorrelationStore
	mailer   Mailer
	defaults Defaults

	// nowFn allows overriding the clock for tests
	nowFn func() time.Time
}

func NewController(api TicketAPI, res CompanyResolver, enr ContextEnricher, diag Summarizer, store CorrelationStore, mail Mailer, defaults Defaults) *Controller {
	return &Controller{
		api:      api,
		resolver: res,
		enricher: enr,
		diag:     diag,
		store:    store,
		mailer:   mail,
		defaults: defaults,
		nowFn:    time.Now,
	}
}

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	lineBreak = regexp.MustCompile(`\r?\n`)
)

func composeDescription(ev *model.AlertEvent, notes string) string {
	target := ev.IP
	if target == "" {
		target = ev.URL
	}
	targetType := "IP"
	if hasLetter.MatchString(target) {
		targetType = "Url"
	}
	return fmt.Sprintf("Alert from StatusCake. \n%s Has Gone Down. \n%s test: %s \nStatus Code: %s \n\n\n%s",
		ev.Name, targetType, target, ev.StatusCode, notes)
}

// HandleDown processes a Down alert: resolve, enrich, summarize, create a
// ticket and persist its correlation record, or escalate by email when the
// create fails. A failed preflight downgrades the run to unresolved context
// rather than aborting it.
func (c *Controller) HandleDown(ctx context.Context, ev *model.AlertEvent) {
	apiUsable := true
	if err := c.api.Preflight(ctx); err != nil {
		log.Error().Err(err).Msg("autotask preflight failed, resolution skipped for this alert")
		apiUsable = false
	}

	company := resolver.UnknownCompany()
	var enriched enricher.Context
	var device *autotask.ConfigurationItem
	if apiUsable {
		company = c.resolver.ResolveCompany(ctx, ev.Name, ev.Tags)
		enriched = c.enricher.Enrich(ctx, company.ID)
		device = c.resolver.ResolveDevice(ctx, company.ID, ev.Tags, ev.URL, ev.IP)
	}

	notes := c.diag.Summarize(ctx, ev.TestID)

	locationID := int64(c.defaults.FallbackLocationID)
	if enriched.LocationID != nil {
		locationID = *enriched.LocationID
	}
	var configurationItemID *int64
	if device != nil {
		configurationItemID = &device.ID
	}

	title := fmt.Sprintf("Your Site: %s Is Currently Down", ev.Name)
	description := composeDescription(ev, notes)
	newTicket := &autotask.NewTicket{
		CompanyID:               company.ID,
		CompanyLocationID:       locationID,
		Priority:                autotask.TicketPriorityHigh,
		Status:                  autotask.TicketStatusNew,
		QueueID:                 c.defaults.QueueID,
		IssueType:               c.defaults.IssueType,
		SubIssueType:            c.defaults.SubIssueType,
		ServiceLevelAgreementID: c.defaults.ServiceLevelAgreementID,
		ContractID:              enriched.ContractID,
		ConfigurationItemID:     configurationItemID,
		Title:                   title,
		Description:             description,
	}

	ticketID, err := c.api.CreateTicket(ctx, newTicket)
	if err != nil {
		log.Error().Err(err).Str("test_id", ev.TestID).Msg("ticket creation failed")
		c.escalate(ctx, title, description)
		return
	}
	log.Info().Int64("ticket_id", ticketID).Str("test_id", ev.TestID).Msg("new ticket created")
	metrics.TicketsCreated.Inc()

	rec := &model.CorrelationRecord{
		ID:        uuid.NewString(),
		TestID:    ev.TestID,
		TestName:  ev.Name,
		URL:       ev.URL,
		IP:        ev.IP,
		TicketID:  ticketID,
		CreatedAt: c.nowFn(),
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		// known limitation: the ticket is orphaned, the Up alert will not find it
		log.Error().Err(err).Int64("ticket_id", ticketID).Str("test_id", ev.TestID).
			Msg("failed to persist ticket reference; up alert will not close this ticket")
	}
}

// escalate sends the one-shot backup email. Its own failure is terminal for
// the invocation and logged only.
func (c *Controller) escalate(ctx context.Context, title, description string) {
	metrics.EscalationEmails.Inc()
	html := lineBreak.ReplaceAllString(description, "<br />")
	if err := c.mailer.Send(ctx, title, html); err != nil {
		log.Error().Err(err).Msg("ticket creation failed, sending an email as a backup also failed")
		return
	}
	log.Warn().Msg("ticket creation failed, backup email sent to support")
}

// HandleUp processes an Up alert: every correlation record for the test is
// consumed at most once. Still-open tickets get a closing note and a status
// update; the record is deleted after processing whether or not the ticket
// update succeeded. With no records the event is a logged no-op.
func (c *Controller) HandleUp(ctx context.Context, ev *model.AlertEvent) {
	recs, err := c.store.FindByTestID(ctx, ev.TestID)
	if err != nil {
		log.Error().Err(err).Str("test_id", ev.TestID).Msg("ticket reference lookup failed")
		return
	}
	if len(recs) == 0 {
		log.Warn().Str("test_id", ev.TestID).Msg("no ticket found to close")
		return
	}

	// With unusable credentials nothing can be closed; keep the records so a
	// later delivery can still find the ticket.
	if err := c.api.Preflight(ctx); err != nil {
		log.Error().Err(err).Str("test_id", ev.TestID).Msg("autotask preflight failed, leaving ticket references in place")
		return
	}

	for _, rec := range recs {
		c.closeTicket(ctx, &rec)

		if err := c.store.Delete(ctx, rec.ID, rec.TestID); err != nil {
			log.Error().Err(err).Str("reference_id", rec.ID).Msg("failed to delete ticket reference")
		}
	}
	log.Info().Str("test_id", ev.TestID).Int("references", len(recs)).Msg("up alert processed")
}

func (c *Controller) closeTicket(ctx context.Context, rec *model.CorrelationRecord) {
	tickets, err := c.api.QueryTickets(ctx, autotask.Eq("id", rec.TicketID))
	if err != nil {
		log.Error().Err(err).Int64("ticket_id", rec.TicketID).Msg("ticket lookup failed")
		return
	}
	if len(tickets) == 0 {
		log.Warn().Int64("ticket_id", rec.TicketID).Msg("referenced ticket not found")
		return
	}

	downtime := formatDowntime(c.nowFn().Sub(rec.CreatedAt))

	for _, t := range tickets {
		if t.Status == autotask.TicketStatusComplete {
			log.Debug().Int64("ticket_id", t.ID).Msg("ticket already complete, skipping")
			continue
		}

		if err := c.api.CreateTicketNote(ctx, t.ID, autotask.NewClosingNote(t.ID, downtime)); err != nil {
			log.Error().Err(err).Int64("ticket_id", t.ID).Msg("failed to post closing note")
		}

		status := autotask.TicketStatusComplete
		if t.AssignedResourceID != nil {
			status = autotask.TicketStatusResolvedPending
		}
		if err := c.api.UpdateTicketStatus(ctx, t.ID, status); err != nil {
			log.Error().Err(err).Int64("ticket_id", t.ID).Msg("failed to update ticket status")
			continue
		}
		metrics.TicketsClosed.Inc()
		log.Info().Int64("ticket_id", t.ID).Str("downtime", downtime).Int("status", status).Msg("ticket closed")
	}
}
