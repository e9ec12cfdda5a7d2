package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/availability"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
)

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, data any) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newTestReservationService(t *testing.T) (*ReservationService, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := database.New(sqlDB)
	pub := &recordingPublisher{}
	svc := NewReservationService(db, repository.NewRepositories(db), pub, availability.Hours{})
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local) }
	return svc, mock, pub
}

var reservationCols = []string{
	"id", "client_id", "service_id", "date_reservation", "heure_debut", "heure_fin", "statut",
	"prix_services", "reduction_pourcentage", "prix_final", "referral_code_id",
	"client_nom", "client_prenom", "client_email", "client_telephone",
	"notes", "session_id", "date_creation", "date_modification",
}

// guest presents the contact email of the guest rows below
var guest = models.ReservationAccess{Email: "amal@example.com"}

func reservationRows(id int64, statut, heureFin string, prix float64) *sqlmock.Rows {
	return clientReservationRows(id, nil, nil, statut, heureFin, prix)
}

func clientReservationRows(id int64, clientID, referralCodeID any, statut, heureFin string, prix float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(reservationCols).AddRow(
		id, clientID, int64(1), "2025-03-10", "10:00", heureFin, statut,
		prix, 0.0, prix, referralCodeID,
		"Ben Ali", "Amal", "amal@example.com", "+21600000000",
		nil, nil, now, now,
	)
}

var itemCols = []string{"id", "reservation_id", "service_id", "nom", "item_type", "prix", "duree", "notes", "created_at"}

var serviceCols = []string{"id", "nom", "description", "prix", "duree", "categorie_id", "categorie_nom", "populaire", "actif", "date_creation"}

var slotCols = []string{"id", "heure_debut", "heure_fin", "statut"}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.StatutEnAttente, models.StatutConfirmee, true},
		{models.StatutEnAttente, models.StatutAnnulee, true},
		{models.StatutEnAttente, models.StatutTerminee, false},
		{models.StatutConfirmee, models.StatutTerminee, true},
		{models.StatutConfirmee, models.StatutNoShow, true},
		{models.StatutConfirmee, models.StatutEnAttente, false},
		{models.StatutAnnulee, models.StatutConfirmee, false},
		{models.StatutTerminee, models.StatutAnnulee, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCheckAvailabilityTouchingBookingIsFree(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	mock.ExpectQuery(`WHERE s.id IN \(\?, \?\)`).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows(serviceCols).
			AddRow(1, "Massage", nil, 45.0, 40, nil, nil, false, true, time.Now()).
			AddRow(7, "Gommage", nil, 25.0, 30, nil, nil, false, true, time.Now()))
	mock.ExpectQuery(`FROM reservations WHERE date_reservation = \?`).
		WithArgs("2025-03-10", models.StatutEnAttente, models.StatutConfirmee).
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(3, "11:10", "12:00", models.StatutConfirmee))

	resp, err := svc.CheckAvailability(context.Background(), &models.CheckAvailabilityRequest{
		ServiceIDs:      []int64{1, 7},
		DateReservation: "2025-03-10",
		HeureDebut:      "10:00",
	})
	require.NoError(t, err)

	assert.True(t, resp.Available)
	assert.Equal(t, "11:10", resp.HeureFin)
	assert.Equal(t, 70, resp.TotalDuration)
	assert.Empty(t, resp.Conflicts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityReportsConflicts(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	mock.ExpectQuery(`WHERE s.id IN \(\?\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(serviceCols).
			AddRow(1, "Massage", nil, 45.0, 40, nil, nil, false, true, time.Now()))
	mock.ExpectQuery(`FROM reservations WHERE date_reservation = \?`).
		WillReturnRows(sqlmock.NewRows(slotCols).
			AddRow(3, "09:00", "10:00", models.StatutConfirmee).
			AddRow(4, "10:30", "11:00", models.StatutEnAttente))

	serviceID := int64(1)
	resp, err := svc.CheckAvailability(context.Background(), &models.CheckAvailabilityRequest{
		ServiceID:       &serviceID,
		DateReservation: "2025-03-10",
		HeureDebut:      "10:00",
	})
	require.NoError(t, err)

	assert.False(t, resp.Available)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, int64(4), resp.Conflicts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailabilityRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestReservationService(t)

	tests := []struct {
		name string
		req  models.CheckAvailabilityRequest
	}{
		{"no services", models.CheckAvailabilityRequest{DateReservation: "2025-03-10", HeureDebut: "10:00"}},
		{"duplicate service", models.CheckAvailabilityRequest{ServiceIDs: []int64{1, 1}, DateReservation: "2025-03-10", HeureDebut: "10:00"}},
		{"bad date", models.CheckAvailabilityRequest{ServiceIDs: []int64{1}, DateReservation: "10/03/2025", HeureDebut: "10:00"}},
		{"bad time", models.CheckAvailabilityRequest{ServiceIDs: []int64{1}, DateReservation: "2025-03-10", HeureDebut: "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CheckAvailability(context.Background(), &tt.req)
			assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
		})
	}
}

func TestCreateGuestReservation(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE s.id IN \(\?, \?\)`).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows(serviceCols).
			AddRow(1, "Massage", nil, 45.0, 40, nil, nil, false, true, time.Now()).
			AddRow(7, "Gommage", nil, 25.0, 30, nil, nil, false, true, time.Now()))
	mock.ExpectQuery(`FROM reservations WHERE date_reservation = \? .* FOR UPDATE`).
		WithArgs("2025-03-10", models.StatutEnAttente, models.StatutConfirmee).
		WillReturnRows(sqlmock.NewRows(slotCols))
	mock.ExpectExec(`INSERT INTO reservations`).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(`INSERT INTO reservation_items`).
		WithArgs(int64(5), int64(1), models.ItemTypeMain, 45.0, nil).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`INSERT INTO reservation_items`).
		WithArgs(int64(5), int64(7), models.ItemTypeAddon, 25.0, nil).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`FROM reservations r WHERE r.id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(reservationRows(5, models.StatutEnAttente, "11:10", 70))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, time.Now()))

	res, err := svc.Create(context.Background(), &models.CreateReservationRequest{
		ServiceIDs:      []int64{1, 7},
		DateReservation: "2025-03-10",
		HeureDebut:      "10:00",
		ClientNom:       "Ben Ali",
		ClientPrenom:    "Amal",
		ClientEmail:     "Amal@Example.com",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(5), res.ID)
	assert.Equal(t, "11:10", res.HeureFin)
	assert.Equal(t, 70.0, res.PrixFinal)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, []string{models.EventReservationCreated}, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE s.id IN \(\?\)`).
		WillReturnRows(sqlmock.NewRows(serviceCols).
			AddRow(1, "Massage", nil, 45.0, 40, nil, nil, false, true, time.Now()))
	mock.ExpectQuery(`FROM reservations WHERE date_reservation = \? .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(3, "10:20", "11:00", models.StatutConfirmee))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), &models.CreateReservationRequest{
		ServiceIDs:      []int64{1},
		DateReservation: "2025-03-10",
		HeureDebut:      "10:00",
		ClientNom:       "Ben Ali",
		ClientTelephone: "+21600000000",
	}, nil)

	assert.True(t, errors.Is(err, apperrors.ErrUnavailable), "got %v", err)
	assert.Empty(t, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGuestNeedsContact(t *testing.T) {
	svc, _, _ := newTestReservationService(t)

	_, err := svc.Create(context.Background(), &models.CreateReservationRequest{
		ServiceIDs:      []int64{1},
		DateReservation: "2025-03-10",
		HeureDebut:      "10:00",
		ClientNom:       "Ben Ali",
	}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = svc.Create(context.Background(), &models.CreateReservationRequest{
		ServiceIDs:      []int64{1},
		DateReservation: "2025-02-10",
		HeureDebut:      "10:00",
		ClientNom:       "Ben Ali",
		ClientEmail:     "amal@example.com",
	}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "past date")
}

func expectLockedReservation(mock sqlmock.Sqlmock, statut, heureFin string, prix float64, items *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \? FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(reservationRows(5, statut, heureFin, prix))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(5)).
		WillReturnRows(items)
}

func TestAddServiceRewritesAggregates(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutConfirmee, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectQuery(`WHERE s.id IN \(\?\)`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(serviceCols).
			AddRow(7, "Gommage", nil, 25.0, 30, nil, nil, false, true, time.Now()))
	mock.ExpectQuery(`FROM reservations WHERE date_reservation = \? .* AND id <> \? .* FOR UPDATE`).
		WithArgs("2025-03-10", models.StatutEnAttente, models.StatutConfirmee, int64(5)).
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(3, "11:10", "12:00", models.StatutConfirmee))
	mock.ExpectExec(`INSERT INTO reservation_items`).
		WithArgs(int64(5), int64(7), models.ItemTypeAddon, 25.0, nil).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`UPDATE reservations SET heure_fin = \?`).
		WithArgs("11:10", 70.0, 70.0, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`FROM reservations r WHERE r.id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(reservationRows(5, models.StatutConfirmee, "11:10", 70))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, time.Now()))

	res, err := svc.AddService(context.Background(), 5, guest, &models.AddServiceRequest{ServiceID: 7})
	require.NoError(t, err)

	assert.Equal(t, "11:10", res.HeureFin)
	assert.Equal(t, 70.0, res.PrixFinal)
	assert.Equal(t, []string{models.EventReservationUpdated}, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddServiceOverlapIsUnavailable(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutConfirmee, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectQuery(`WHERE s.id IN \(\?\)`).
		WillReturnRows(sqlmock.NewRows(serviceCols).
			AddRow(7, "Gommage", nil, 25.0, 30, nil, nil, false, true, time.Now()))
	mock.ExpectQuery(`FROM reservations WHERE date_reservation = \?`).
		WillReturnRows(sqlmock.NewRows(slotCols).AddRow(3, "10:45", "11:30", models.StatutConfirmee))
	mock.ExpectRollback()

	_, err := svc.AddService(context.Background(), 5, guest, &models.AddServiceRequest{ServiceID: 7})
	assert.True(t, errors.Is(err, apperrors.ErrUnavailable), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddServiceAlreadyPresentConflicts(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutConfirmee, "11:10", 70,
		sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.AddService(context.Background(), 5, guest, &models.AddServiceRequest{ServiceID: 7})
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddServiceOnCancelledReservationConflicts(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutAnnulee, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.AddService(context.Background(), 5, guest, &models.AddServiceRequest{ServiceID: 7})
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddServiceRejectsUnknownItemType(t *testing.T) {
	svc, _, _ := newTestReservationService(t)

	_, err := svc.AddService(context.Background(), 5, guest, &models.AddServiceRequest{ServiceID: 7, ItemType: "bonus"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestRemoveServiceRestoresAggregates(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutEnAttente, "11:10", 70,
		sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, time.Now()))
	mock.ExpectExec(`DELETE FROM reservation_items WHERE reservation_id = \? AND service_id = \?`).
		WithArgs(int64(5), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reservations SET heure_fin = \?`).
		WithArgs("10:40", 45.0, 45.0, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`FROM reservations r WHERE r.id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(reservationRows(5, models.StatutEnAttente, "10:40", 45))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))

	res, err := svc.RemoveService(context.Background(), 5, 7, guest)
	require.NoError(t, err)

	assert.Equal(t, "10:40", res.HeureFin)
	assert.Equal(t, 45.0, res.PrixFinal)
	assert.Equal(t, []string{models.EventReservationUpdated}, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveLastServiceIsRejected(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutConfirmee, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.RemoveService(context.Background(), 5, 1, guest)
	assert.True(t, errors.Is(err, apperrors.ErrValidation), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMissingServiceIsNotFound(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutConfirmee, "11:10", 70,
		sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.RemoveService(context.Background(), 5, 9, guest)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusFollowsWorkflow(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutEnAttente, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectExec(`UPDATE reservations SET statut = \? WHERE id = \?`).
		WithArgs(models.StatutConfirmee, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.UpdateStatus(context.Background(), 5, models.StatutConfirmee)
	require.NoError(t, err)
	assert.Equal(t, models.StatutConfirmee, res.Statut)
	assert.Equal(t, []string{models.EventReservationStatusChanged}, pub.subjects)

	expectLockedReservation(mock, models.StatutTerminee, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectRollback()

	_, err = svc.UpdateStatus(context.Background(), 5, models.StatutConfirmee)
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)

	_, err = svc.UpdateStatus(context.Background(), 5, "perdue")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHidesReservationFromOtherCallers(t *testing.T) {
	tests := []struct {
		name   string
		rows   func() *sqlmock.Rows
		access models.ReservationAccess
		found  bool
	}{
		{"owner", func() *sqlmock.Rows {
			return clientReservationRows(5, int64(42), nil, models.StatutConfirmee, "10:40", 45)
		}, models.ReservationAccess{ClientID: ptr(int64(42))}, true},
		{"other client", func() *sqlmock.Rows {
			return clientReservationRows(5, int64(42), nil, models.StatutConfirmee, "10:40", 45)
		}, models.ReservationAccess{ClientID: ptr(int64(7))}, false},
		{"anonymous on client booking", func() *sqlmock.Rows {
			return clientReservationRows(5, int64(42), nil, models.StatutConfirmee, "10:40", 45)
		}, models.ReservationAccess{Email: "amal@example.com"}, false},
		{"guest email", func() *sqlmock.Rows {
			return reservationRows(5, models.StatutConfirmee, "10:40", 45)
		}, models.ReservationAccess{Email: " AMAL@example.com"}, true},
		{"guest without proof", func() *sqlmock.Rows {
			return reservationRows(5, models.StatutConfirmee, "10:40", 45)
		}, models.ReservationAccess{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, _ := newTestReservationService(t)
			mock.ExpectQuery(`FROM reservations r WHERE r.id = \?`).
				WithArgs(int64(5)).
				WillReturnRows(tt.rows())
			mock.ExpectQuery(`FROM reservation_items ri`).
				WillReturnRows(sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))

			res, err := svc.Get(context.Background(), 5, tt.access)
			if tt.found {
				require.NoError(t, err)
				assert.Equal(t, int64(5), res.ID)
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRemoveServiceFromOtherClientsReservationIsNotFound(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \? FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(clientReservationRows(5, int64(42), nil, models.StatutConfirmee, "11:10", 70))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()).
			AddRow(12, 5, 7, "Gommage", "addon", 25.0, 30, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.RemoveService(context.Background(), 5, 7, models.ReservationAccess{})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
	assert.Empty(t, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddSecondMainServiceConflicts(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	expectLockedReservation(mock, models.StatutConfirmee, "10:40", 45,
		sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.AddService(context.Background(), 5, guest, &models.AddServiceRequest{ServiceID: 7, ItemType: models.ItemTypeMain})
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReleasesReferralUse(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \? FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(clientReservationRows(5, int64(42), int64(3), models.StatutConfirmee, "10:40", 45))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectExec(`UPDATE reservations SET statut = \? WHERE id = \?`).
		WithArgs(models.StatutAnnulee, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE referral_codes rc\s+JOIN referral_usage ru`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM referral_usage WHERE reservation_id = \?`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Cancel(context.Background(), 5, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatutAnnulee, res.Statut)
	assert.Equal(t, []string{models.EventReservationCancelled}, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByOtherClientIsNotFound(t *testing.T) {
	svc, mock, _ := newTestReservationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM reservations r WHERE r.id = \? FOR UPDATE`).
		WillReturnRows(clientReservationRows(5, int64(42), nil, models.StatutConfirmee, "10:40", 45))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, time.Now()))
	mock.ExpectRollback()

	_, err := svc.Cancel(context.Background(), 5, 7)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteEndedSkipsRowsChangedMeanwhile(t *testing.T) {
	svc, mock, pub := newTestReservationService(t)

	now := time.Now()
	mock.ExpectQuery(`WHERE r.statut = \?`).
		WillReturnRows(sqlmock.NewRows(reservationCols).
			AddRow(5, nil, int64(1), "2025-02-28", "10:00", "10:40", models.StatutConfirmee,
				45.0, 0.0, 45.0, nil, "Ben Ali", "Amal", "amal@example.com", "", nil, nil, now, now).
			AddRow(6, nil, int64(1), "2025-02-28", "11:00", "11:40", models.StatutConfirmee,
				45.0, 0.0, 45.0, nil, "Trabelsi", "Sana", "sana@example.com", "", nil, nil, now, now))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(11, 5, 1, "Massage", "main", 45.0, 40, nil, now))
	mock.ExpectQuery(`FROM reservation_items ri`).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(12, 6, 1, "Massage", "main", 45.0, 40, nil, now))
	mock.ExpectExec(`UPDATE reservations SET statut = \? WHERE id = \? AND statut = \?`).
		WithArgs(models.StatutTerminee, int64(5), models.StatutConfirmee).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reservations SET statut = \? WHERE id = \? AND statut = \?`).
		WithArgs(models.StatutTerminee, int64(6), models.StatutConfirmee).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := svc.CompleteEnded(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{models.EventReservationStatusChanged}, pub.subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}
