package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

type fakeMailer struct {
	sent []external.Email
	err  error
}

func (f *fakeMailer) SendEmail(_ context.Context, email external.Email) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, email)
	return "msg-1", nil
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func reservationEvent(statut string) models.ReservationEvent {
	return models.ReservationEvent{
		ReservationID:   12,
		ClientEmail:     "amal@example.com",
		ClientNom:       "Amal Ben Ali",
		DateReservation: "2025-03-10",
		HeureDebut:      "10:00",
		HeureFin:        "11:30",
		Services:        []string{"Hammam", "Gommage"},
		PrixFinal:       85,
		Statut:          statut,
	}
}

func TestReservationCreatedEmail(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandlers(mailer, "http://localhost:5000")

	err := h.processReservationCreated(context.Background(), mustJSON(t, reservationEvent(models.StatutEnAttente)))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, "amal@example.com", email.To[0].Email)
	assert.Contains(t, email.Subject, "2025-03-10")
	assert.Contains(t, email.HTMLContent, "Hammam, Gommage")
	assert.Contains(t, email.HTMLContent, "85.00 DT")
	assert.Contains(t, email.HTMLContent, "en attente de confirmation")
}

func TestReservationWithoutEmailIsSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandlers(mailer, "")
	ev := reservationEvent(models.StatutEnAttente)
	ev.ClientEmail = ""

	err := h.processReservationCreated(context.Background(), mustJSON(t, ev))

	assert.ErrorIs(t, err, errSkip)
	assert.Empty(t, mailer.sent)
}

func TestReservationStatusEmails(t *testing.T) {
	tests := []struct {
		statut string
		sent   bool
	}{
		{models.StatutConfirmee, true},
		{models.StatutAnnulee, true},
		{models.StatutTerminee, false},
		{models.StatutNoShow, false},
	}
	for _, tt := range tests {
		t.Run(tt.statut, func(t *testing.T) {
			mailer := &fakeMailer{}
			h := NewHandlers(mailer, "")

			err := h.processReservationStatus(context.Background(), mustJSON(t, reservationEvent(tt.statut)))

			if tt.sent {
				require.NoError(t, err)
				require.Len(t, mailer.sent, 1)
				assert.Contains(t, mailer.sent[0].HTMLContent, statusLabel(tt.statut))
			} else {
				assert.ErrorIs(t, err, errSkip)
				assert.Empty(t, mailer.sent)
			}
		})
	}
}

func TestVerificationEmailLink(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandlers(mailer, "https://api.zenshe.tn/")

	err := h.processClientRegistered(context.Background(), mustJSON(t, models.ClientRegisteredEvent{
		ClientID:          3,
		Email:             "amal@example.com",
		Prenom:            "Amal",
		TokenVerification: "abc123",
	}))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].HTMLContent, "https://api.zenshe.tn/api/auth/verify-email?token=abc123")
}

func TestOrderConfirmationEmail(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewHandlers(mailer, "")

	err := h.processStoreOrderCreated(context.Background(), mustJSON(t, models.StoreOrderCreatedEvent{
		OrderID:              1,
		NumeroCommande:       "CMD-20250301-ABCDEF12",
		ClientEmail:          "amal@example.com",
		ClientNom:            "Amal",
		Total:                42.5,
		DateLivraisonEstimee: "2025-03-15",
	}))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Précommande CMD-20250301-ABCDEF12", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].HTMLContent, "2025-03-15")
}

func TestSendFailureIsReturned(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("brevo down")}
	h := NewHandlers(mailer, "")

	err := h.processReservationCreated(context.Background(), mustJSON(t, reservationEvent(models.StatutEnAttente)))

	require.Error(t, err)
	assert.NotErrorIs(t, err, errSkip)
}

func TestMalformedPayload(t *testing.T) {
	h := NewHandlers(&fakeMailer{}, "")

	err := h.processStoreOrderCreated(context.Background(), []byte("{not json"))

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}
