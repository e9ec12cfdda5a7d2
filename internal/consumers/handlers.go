package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/metrics"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"

	"github.com/nats-io/stan.go"
)

const sendTimeout = 20 * time.Second

// errSkip marks a message that is acknowledged without sending anything.
var errSkip = errors.New("nothing to send")

// Mailer sends a transactional email and returns the provider message id.
type Mailer interface {
	SendEmail(ctx context.Context, email external.Email) (string, error)
}

type Handlers struct {
	mailer    Mailer
	publicURL string
}

func NewHandlers(mailer Mailer, publicURL string) *Handlers {
	return &Handlers{mailer: mailer, publicURL: publicURL}
}

// handle acks processed and undecodable messages. A failed send is left
// unacknowledged so that NATS Streaming redelivers it after AckWait.
func (h *Handlers) handle(m *stan.Msg, process func(ctx context.Context, data []byte) error) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	err := process(ctx, m.Data)
	var decodeErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil, errors.Is(err, errSkip):
	case errors.As(err, &decodeErr), errors.As(err, &typeErr):
		slog.Error("Dropping malformed message", "subject", m.Subject, "seq", m.Sequence, "error", err)
	default:
		slog.Error("Failed to process message", "subject", m.Subject, "seq", m.Sequence, "error", err)
		return
	}

	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", m.Subject, "seq", m.Sequence, "error", err)
	}
}

func (h *Handlers) send(ctx context.Context, template string, email external.Email) error {
	id, err := h.mailer.SendEmail(ctx, email)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(template, "error").Inc()
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	metrics.EmailsSent.WithLabelValues(template, "ok").Inc()
	slog.Info("Email sent", "template", template, "to", email.To[0].Email, "message_id", id)
	return nil
}

func decodeReservation(data []byte) (*models.ReservationEvent, error) {
	var event models.ReservationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.ClientEmail == "" {
		slog.Debug("Reservation without email, skipping", "reservation_id", event.ReservationID)
		return nil, errSkip
	}
	return &event, nil
}

func (h *Handlers) HandleReservationCreated(m *stan.Msg) {
	h.handle(m, h.processReservationCreated)
}

func (h *Handlers) processReservationCreated(ctx context.Context, data []byte) error {
	event, err := decodeReservation(data)
	if err != nil {
		return err
	}
	email, err := reservationCreatedEmail(event)
	if err != nil {
		return err
	}
	return h.send(ctx, templateReservationCreated, email)
}

// HandleReservationStatus covers reservation.status_changed and reservation.cancelled.
func (h *Handlers) HandleReservationStatus(m *stan.Msg) {
	h.handle(m, h.processReservationStatus)
}

func (h *Handlers) processReservationStatus(ctx context.Context, data []byte) error {
	event, err := decodeReservation(data)
	if err != nil {
		return err
	}
	// completed and no-show visits do not warrant an email
	if event.Statut == models.StatutTerminee || event.Statut == models.StatutNoShow {
		return errSkip
	}
	email, err := reservationStatusEmail(event)
	if err != nil {
		return err
	}
	return h.send(ctx, templateReservationStatus, email)
}

func (h *Handlers) HandleClientRegistered(m *stan.Msg) {
	h.handle(m, h.processClientRegistered)
}

func (h *Handlers) processClientRegistered(ctx context.Context, data []byte) error {
	var event models.ClientRegisteredEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	if event.Email == "" || event.TokenVerification == "" {
		return errSkip
	}
	email, err := verificationEmail(&event, h.publicURL)
	if err != nil {
		return err
	}
	return h.send(ctx, templateVerification, email)
}

func (h *Handlers) HandleStoreOrderCreated(m *stan.Msg) {
	h.handle(m, h.processStoreOrderCreated)
}

func (h *Handlers) processStoreOrderCreated(ctx context.Context, data []byte) error {
	var event models.StoreOrderCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	if event.ClientEmail == "" {
		return errSkip
	}
	email, err := orderConfirmationEmail(&event)
	if err != nil {
		return err
	}
	return h.send(ctx, templateOrderConfirmation, email)
}
