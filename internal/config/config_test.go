package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("AUTOTASK_USER", "api-user")
	t.Setenv("TICKET_QUEUE_ID", "29683")
	t.Setenv("TICKET_SERVICE_LEVEL_AGREEMENT_ID", "5")
	t.Setenv("DB_PORT", "5433")

	cfg := fromEnv()

	if cfg.Autotask.User != "api-user" {
		t.Errorf("Autotask.User = %q", cfg.Autotask.User)
	}
	if cfg.Ticket.QueueID != 29683 {
		t.Errorf("Ticket.QueueID = %d", cfg.Ticket.QueueID)
	}
	if cfg.Ticket.ServiceLevelAgreementID != 5 {
		t.Errorf("Ticket.ServiceLevelAgreementID = %d", cfg.Ticket.ServiceLevelAgreementID)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("Database.Port = %d", cfg.Database.Port)
	}
	if cfg.Ticket.FallbackLocationID != 10 {
		t.Errorf("FallbackLocationID default = %d, want 10", cfg.Ticket.FallbackLocationID)
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "tickets", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=tickets sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

func TestLoadTicketDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticket_defaults.yaml")
	data := []byte("queue_id: 29683\nissue_type: 10\nsub_issue_type: 136\nservice_level_agreement_id: 5\nfallback_location_id: 11\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write defaults file: %v", err)
	}

	cfg := TicketConfig{QueueID: 1}
	if err := loadTicketDefaults(&cfg, path); err != nil {
		t.Fatalf("loadTicketDefaults: %v", err)
	}

	if cfg.QueueID != 29683 || cfg.IssueType != 10 || cfg.SubIssueType != 136 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.FallbackLocationID != 11 {
		t.Errorf("FallbackLocationID = %d, want 11", cfg.FallbackLocationID)
	}
}

func TestLoadTicketDefaultsMissingFile(t *testing.T) {
	cfg := TicketConfig{}
	if err := loadTicketDefaults(&cfg, "/nonexistent/ticket_defaults.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
