package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const reservationColumns = `
	r.id, r.client_id, r.service_id,
	DATE_FORMAT(r.date_reservation, '%Y-%m-%d'),
	TIME_FORMAT(r.heure_debut, '%H:%i'),
	TIME_FORMAT(r.heure_fin, '%H:%i'),
	r.statut, r.prix_services, r.reduction_pourcentage, r.prix_final, r.referral_code_id,
	COALESCE(r.client_nom, ''), COALESCE(r.client_prenom, ''),
	COALESCE(r.client_email, ''), COALESCE(r.client_telephone, ''),
	r.notes, r.session_id, r.date_creation, r.date_modification`

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// DB exposes the handle so services can open transactions spanning repositories.
func (r *ReservationRepository) DB() *database.DB {
	return r.db
}

func scanReservation(row scanner) (*models.Reservation, error) {
	res := &models.Reservation{}
	err := row.Scan(
		&res.ID,
		&res.ClientID,
		&res.ServiceID,
		&res.DateReservation,
		&res.HeureDebut,
		&res.HeureFin,
		&res.Statut,
		&res.PrixServices,
		&res.ReductionPourcentage,
		&res.PrixFinal,
		&res.ReferralCodeID,
		&res.ClientNom,
		&res.ClientPrenom,
		&res.ClientEmail,
		&res.ClientTelephone,
		&res.Notes,
		&res.SessionID,
		&res.DateCreation,
		&res.DateModification,
	)
	return res, err
}

func (r *ReservationRepository) get(ctx context.Context, q Querier, id int64, forUpdate bool) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ?`
	if forUpdate {
		query += " FOR UPDATE"
	}

	res, err := scanReservation(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, q, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetByID loads a reservation and its items.
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	return r.get(ctx, r.db, id, false)
}

// GetForUpdate loads a reservation inside tx holding a row lock on it.
func (r *ReservationRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Reservation, error) {
	return r.get(ctx, tx, id, true)
}

// loadItems fills Items. A legacy row without items gets one synthesized
// main item built from reservations.service_id (its ID is 0).
func (r *ReservationRepository) loadItems(ctx context.Context, q Querier, res *models.Reservation) error {
	items, err := r.GetItems(ctx, q, res.ID)
	if err != nil {
		return err
	}
	if len(items) == 0 && res.ServiceID != nil {
		legacy, err := r.legacyItem(ctx, q, res)
		if err != nil {
			return err
		}
		if legacy != nil {
			items = append(items, *legacy)
		}
	}
	res.Items = items
	return nil
}

func (r *ReservationRepository) legacyItem(ctx context.Context, q Querier, res *models.Reservation) (*models.ReservationItem, error) {
	item := &models.ReservationItem{
		ReservationID: res.ID,
		ServiceID:     *res.ServiceID,
		ItemType:      models.ItemTypeMain,
		CreatedAt:     res.DateCreation,
	}
	var catalogPrice float64
	err := q.QueryRowContext(ctx, `SELECT nom, duree, prix FROM services WHERE id = ?`, *res.ServiceID).
		Scan(&item.ServiceNom, &item.Duree, &catalogPrice)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// the booked price wins over the current catalog price
	item.Prix = catalogPrice
	if res.PrixServices > 0 {
		item.Prix = res.PrixServices
	}
	return item, nil
}

func (r *ReservationRepository) GetItems(ctx context.Context, q Querier, reservationID int64) ([]models.ReservationItem, error) {
	query := `
		SELECT ri.id, ri.reservation_id, ri.service_id, s.nom, ri.item_type, ri.prix, s.duree, ri.notes, ri.created_at
		FROM reservation_items ri
		JOIN services s ON s.id = ri.service_id
		WHERE ri.reservation_id = ?
		ORDER BY ri.item_type = 'addon', ri.id`

	rows, err := q.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ReservationItem{}
	for rows.Next() {
		var it models.ReservationItem
		err := rows.Scan(
			&it.ID,
			&it.ReservationID,
			&it.ServiceID,
			&it.ServiceNom,
			&it.ItemType,
			&it.Prix,
			&it.Duree,
			&it.Notes,
			&it.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListBlockingOnDate returns the slots of blocking reservations on date, excluding
// excludeID. With lock the matching rows are locked until tx ends.
func (r *ReservationRepository) ListBlockingOnDate(ctx context.Context, q Querier, date string, excludeID *int64, lock bool) ([]models.SlotBooking, error) {
	query := `
		SELECT id, TIME_FORMAT(heure_debut, '%H:%i'), TIME_FORMAT(heure_fin, '%H:%i'), statut
		FROM reservations
		WHERE date_reservation = ?
		  AND statut IN (` + placeholders(len(models.BlockingStatuses)) + `)`
	args := []any{date}
	for _, s := range models.BlockingStatuses {
		args = append(args, s)
	}
	if excludeID != nil {
		query += " AND id <> ?"
		args = append(args, *excludeID)
	}
	query += " ORDER BY heure_debut"
	if lock {
		query += " FOR UPDATE"
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.SlotBooking
	for rows.Next() {
		var s models.SlotBooking
		if err := rows.Scan(&s.ID, &s.HeureDebut, &s.HeureFin, &s.Statut); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *ReservationRepository) Create(ctx context.Context, tx *sql.Tx, res *models.Reservation) error {
	query := `
		INSERT INTO reservations (client_id, service_id, date_reservation, heure_debut, heure_fin, statut,
		                          prix_services, reduction_pourcentage, prix_final, referral_code_id,
		                          client_nom, client_prenom, client_email, client_telephone, notes, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		res.ClientID,
		res.ServiceID,
		res.DateReservation,
		res.HeureDebut,
		res.HeureFin,
		res.Statut,
		res.PrixServices,
		res.ReductionPourcentage,
		res.PrixFinal,
		res.ReferralCodeID,
		res.ClientNom,
		res.ClientPrenom,
		res.ClientEmail,
		res.ClientTelephone,
		res.Notes,
		res.SessionID,
	)
	if err != nil {
		return err
	}
	res.ID, err = result.LastInsertId()
	return err
}

func (r *ReservationRepository) InsertItem(ctx context.Context, tx *sql.Tx, item *models.ReservationItem) error {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservation_items (reservation_id, service_id, item_type, prix, notes) VALUES (?, ?, ?, ?, ?)`,
		item.ReservationID, item.ServiceID, item.ItemType, item.Prix, item.Notes)
	if err != nil {
		return err
	}
	item.ID, err = result.LastInsertId()
	return err
}

func (r *ReservationRepository) DeleteItem(ctx context.Context, tx *sql.Tx, reservationID, serviceID int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM reservation_items WHERE reservation_id = ? AND service_id = ?`, reservationID, serviceID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// UpdateAggregates rewrites the derived columns after the item set changed.
func (r *ReservationRepository) UpdateAggregates(ctx context.Context, tx *sql.Tx, res *models.Reservation) error {
	query := `
		UPDATE reservations
		SET heure_fin = ?, prix_services = ?, prix_final = ?, service_id = ?
		WHERE id = ?`

	_, err := tx.ExecContext(ctx, query, res.HeureFin, res.PrixServices, res.PrixFinal, res.ServiceID, res.ID)
	return err
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, q Querier, id int64, statut string) error {
	_, err := q.ExecContext(ctx, `UPDATE reservations SET statut = ? WHERE id = ?`, statut, id)
	return err
}

// UpdateStatusFrom changes the status only while the row still has status from.
func (r *ReservationRepository) UpdateStatusFrom(ctx context.Context, q Querier, id int64, from, to string) (bool, error) {
	res, err := q.ExecContext(ctx, `UPDATE reservations SET statut = ? WHERE id = ? AND statut = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ReservationRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.client_id = ?
		ORDER BY r.date_reservation DESC, r.heure_debut DESC`

	return r.list(ctx, query, clientID)
}

func (r *ReservationRepository) List(ctx context.Context, f models.ReservationFilter) ([]models.Reservation, int, error) {
	where := " WHERE 1=1"
	var args []any
	if f.Date != "" {
		where += " AND r.date_reservation = ?"
		args = append(args, f.Date)
	}
	if f.Statut != "" {
		where += " AND r.statut = ?"
		args = append(args, f.Statut)
	}
	if f.ClientID != nil {
		where += " AND r.client_id = ?"
		args = append(args, *f.ClientID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservations r"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	_, size, offset := paginate(f.Page, f.PageSize)
	query := `SELECT ` + reservationColumns + ` FROM reservations r` + where +
		` ORDER BY r.date_reservation DESC, r.heure_debut DESC LIMIT ? OFFSET ?`

	reservations, err := r.list(ctx, query, append(args, size, offset)...)
	return reservations, total, err
}

// ListEndedConfirmed returns confirmed reservations whose end is before now.
func (r *ReservationRepository) ListEndedConfirmed(ctx context.Context, now time.Time, limit int) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.statut = ?
		  AND TIMESTAMP(r.date_reservation, r.heure_fin) < ?
		ORDER BY r.date_reservation, r.heure_fin
		LIMIT ?`

	return r.list(ctx, query, models.StatutConfirmee, now.Format("2006-01-02 15:04:05"), limit)
}

// FindBySessionID returns the most recent reservation made with the JotForm session id.
func (r *ReservationRepository) FindBySessionID(ctx context.Context, q Querier, sessionID string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.session_id = ?
		ORDER BY r.id DESC
		LIMIT 1`

	res, err := scanReservation(q.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// list scans reservations and fills their items.
func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var reservations []models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range reservations {
		if err := r.loadItems(ctx, r.db, &reservations[i]); err != nil {
			return nil, err
		}
	}
	return reservations, nil
}
