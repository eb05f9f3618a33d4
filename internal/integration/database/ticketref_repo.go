package database

import (
	"context"
	"fmt"

	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
)

// TicketReferenceRepo is the PostgreSQL-backed correlation store: a persisted
// mapping from monitoring test id to the ticket opened for its Down alert.
// The testid column is deliberately non-unique so multiple open tickets per
// test remain representable.
type TicketReferenceRepo struct {
	DB *Database
}

func NewTicketReferenceRepo(db *Database) *TicketReferenceRepo {
	return &TicketReferenceRepo{DB: db}
}

// EnsureSchema creates the ticket_references table when missing.
func (r *TicketReferenceRepo) EnsureSchema(ctx context.Context) error {
	const q = `
	CREATE TABLE IF NOT EXISTS ticket_references (
		id         uuid PRIMARY KEY,
		testid     text NOT NULL,
		test_name  text NOT NULL DEFAULT '',
		url        text NOT NULL DEFAULT '',
		ip         text NOT NULL DEFAULT '',
		ticketid   bigint NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_ticket_references_testid ON ticket_references (testid);
	`
	if _, err := r.DB.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure ticket_references schema: %w", err)
	}
	return nil
}

// FindByTestID returns every correlation record for the test, oldest first.
func (r *TicketReferenceRepo) FindByTestID(ctx context.Context, testID string) ([]model.CorrelationRecord, error) {
	const q = `
	SELECT id, testid, test_name, url, ip, ticketid, created_at
	FROM ticket_references
	WHERE testid = $1
	ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, q, testID)
	if err != nil {
		return nil, fmt.Errorf("find ticket references: %w", err)
	}
	defer rows.Close()

	var recs []model.CorrelationRecord
	for rows.Next() {
		var rec model.CorrelationRecord
		if err := rows.Scan(&rec.ID, &rec.TestID, &rec.TestName, &rec.URL, &rec.IP, &rec.TicketID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket reference: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *TicketReferenceRepo) Insert(ctx context.Context, rec *model.CorrelationRecord) error {
	const q = `
	INSERT INTO ticket_references (id, testid, test_name, url, ip, ticketid, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, q, rec.ID, rec.TestID, rec.TestName, rec.URL, rec.IP, rec.TicketID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket reference: %w", err)
	}
	return nil
}

// Delete removes one record by id, scoped to its test id so a record can only
// be consumed by the test that created it.
func (r *TicketReferenceRepo) Delete(ctx context.Context, id, testID string) error {
	const q = `DELETE FROM ticket_references WHERE id = $1 AND testid = $2`
	_, err := r.DB.ExecContext(ctx, q, id, testID)
	if err != nil {
		return fmt.Errorf("delete ticket reference: %w", err)
	}
	return nil
}
