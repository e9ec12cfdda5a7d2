package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/availability"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/config"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/service"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

type ConsumerService struct {
	db           *database.DB
	nats         *messaging.NATSClient
	handlers     *Handlers
	reservations *service.ReservationService
	subs         []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	hours, err := availability.ParseHours(cfg.Reservations.OpeningTime, cfg.Reservations.ClosingTime)
	if err != nil {
		natsClient.Close()
		db.Close()
		return nil, fmt.Errorf("invalid opening hours: %w", err)
	}

	repos := repository.NewRepositories(db)
	brevo := external.NewBrevoClient(cfg.Brevo)
	if !brevo.Enabled() {
		slog.Warn("BREVO_API_KEY not set, emails will only be logged")
	}

	return &ConsumerService{
		db:           db,
		nats:         natsClient,
		handlers:     NewHandlers(brevo, cfg.PublicURL),
		reservations: service.NewReservationService(db, repos, natsClient, hours),
	}, nil
}

// Reservations is used by the completion job, which publishes through the same connection.
func (cs *ConsumerService) Reservations() *service.ReservationService {
	return cs.reservations
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subscriptions := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventReservationCreated, cs.handlers.HandleReservationCreated},
		{models.EventReservationStatusChanged, cs.handlers.HandleReservationStatus},
		{models.EventReservationCancelled, cs.handlers.HandleReservationStatus},
		{models.EventClientRegistered, cs.handlers.HandleClientRegistered},
		{models.EventStoreOrderCreated, cs.handlers.HandleStoreOrderCreated},
	}
	for _, s := range subscriptions {
		sub, err := cs.nats.SubscribeQueue(s.subject, queueGroup, s.handler)
		if err != nil {
			return err
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subjects", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close keeps the durable subscriptions so that pending messages survive a restart
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Warn("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.ErrorContext(ctx, "Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
