package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/autotask"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/config"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/database"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/metrics"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/diagnostics"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/enricher"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/receiver"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/resolver"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/service/ticket"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/mailer"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/statuscake"
)

type Api struct {
	db *database.Database
}

// NewApiWithConfig builds the outbound clients, the correlation store and the
// lifecycle controller, then registers the webhook and ops routes.
func NewApiWithConfig(router *gin.Engine, cfg *config.Config) (*Api, error) {
	atClient := autotask.New(&autotask.Config{
		BaseURL:         cfg.Autotask.BaseURL,
		User:            cfg.Autotask.User,
		Secret:          cfg.Autotask.Secret,
		IntegrationCode: cfg.Autotask.IntegrationCode,
	})
	if err := atClient.DiscoverZone(context.Background()); err != nil {
		log.Warn().Err(err).Msg("autotask zone discovery failed, using configured base url")
	}

	scClient := statuscake.New(&statuscake.Config{
		BaseURL: cfg.StatusCake.BaseURL,
		APIKey:  cfg.StatusCake.APIKey,
	})

	mail := mailer.New(&mailer.Config{
		Endpoint: cfg.Email.Endpoint,
		APIKey:   cfg.Email.APIKey,
		From:     mailer.Identity{Email: cfg.Email.FromEmail, Name: cfg.Email.FromName},
		To:       mailer.Identity{Email: cfg.Email.ToEmail, Name: cfg.Email.ToName},
	})

	db, err := database.New(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open correlation store: %w", err)
	}
	repo := database.NewTicketReferenceRepo(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	var cache receiver.AlertCache = receiver.NoopCache{}
	if cfg.Redis.Addr != "" {
		cache = receiver.NewCache(receiver.NewRedisClientFromConfig(&cfg.Redis))
	}

	ctrl := ticket.NewController(
		atClient,
		resolver.New(atClient),
		enricher.New(atClient),
		diagnostics.New(scClient),
		repo,
		mail,
		ticket.Defaults{
			QueueID:                 cfg.Ticket.QueueID,
			IssueType:               cfg.Ticket.IssueType,
			SubIssueType:            cfg.Ticket.SubIssueType,
			ServiceLevelAgreementID: cfg.Ticket.ServiceLevelAgreementID,
			FallbackLocationID:      cfg.Ticket.FallbackLocationID,
		},
	)

	receiver.ConfigureAuth(cfg.Webhook.Token)
	receiver.RegisterReceiverRoutes(router, receiver.NewHandlerWithCache(ctrl, cache))

	api := &Api{db: db}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/healthz", api.healthz)
	return api, nil
}

func (api *Api) healthz(c *gin.Context) {
	if err := api.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (api *Api) Close() {
	if api.db != nil {
		api.db.Close()
	}
}
