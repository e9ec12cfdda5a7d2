package repository

import (
	"context"
	"database/sql"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const referralColumns = `
	id, code, owner_client_id, discount_percentage, max_uses, current_uses, expires_at, is_active, created_at`

type ReferralRepository struct {
	db *database.DB
}

func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func scanReferral(row scanner) (*models.ReferralCode, error) {
	c := &models.ReferralCode{}
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.OwnerClientID,
		&c.DiscountPercentage,
		&c.MaxUses,
		&c.CurrentUses,
		&c.ExpiresAt,
		&c.IsActive,
		&c.CreatedAt,
	)
	return c, err
}

func (r *ReferralRepository) getOne(ctx context.Context, q Querier, query string, args ...any) (*models.ReferralCode, error) {
	c, err := scanReferral(q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ReferralRepository) GetByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	return r.getOne(ctx, r.db, `SELECT `+referralColumns+` FROM referral_codes WHERE code = ?`, code)
}

// GetByCodeForUpdate locks the code row inside tx while it is being redeemed.
func (r *ReferralRepository) GetByCodeForUpdate(ctx context.Context, tx *sql.Tx, code string) (*models.ReferralCode, error) {
	return r.getOne(ctx, tx, `SELECT `+referralColumns+` FROM referral_codes WHERE code = ? FOR UPDATE`, code)
}

func (r *ReferralRepository) GetByID(ctx context.Context, id int64) (*models.ReferralCode, error) {
	return r.getOne(ctx, r.db, `SELECT `+referralColumns+` FROM referral_codes WHERE id = ?`, id)
}

func (r *ReferralRepository) GetByOwner(ctx context.Context, clientID int64) (*models.ReferralCode, error) {
	return r.getOne(ctx, r.db,
		`SELECT `+referralColumns+` FROM referral_codes WHERE owner_client_id = ? ORDER BY is_active DESC, id DESC LIMIT 1`,
		clientID)
}

func (r *ReferralRepository) Create(ctx context.Context, c *models.ReferralCode) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO referral_codes (code, owner_client_id, discount_percentage, max_uses, expires_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Code, c.OwnerClientID, c.DiscountPercentage, c.MaxUses, c.ExpiresAt, c.IsActive)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *ReferralRepository) List(ctx context.Context) ([]models.ReferralCode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+referralColumns+` FROM referral_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []models.ReferralCode
	for rows.Next() {
		c, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *c)
	}
	return codes, rows.Err()
}

func (r *ReferralRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE referral_codes SET is_active = FALSE WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Redeem increments the use counter and records the usage row inside tx.
func (r *ReferralRepository) Redeem(ctx context.Context, tx *sql.Tx, u *models.ReferralUsage) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE referral_codes SET current_uses = current_uses + 1 WHERE id = ?`, u.ReferralCodeID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO referral_usage (referral_code_id, used_by_client_id, reservation_id, discount_amount)
		VALUES (?, ?, ?, ?)`,
		u.ReferralCodeID, u.UsedByClientID, u.ReservationID, u.DiscountAmount)
	if err != nil {
		return err
	}
	u.ID, err = res.LastInsertId()
	return err
}

// Release undoes Redeem for a reservation. The usage row goes and the counter drops.
func (r *ReferralRepository) Release(ctx context.Context, tx *sql.Tx, reservationID int64) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE referral_codes rc
		JOIN referral_usage ru ON ru.referral_code_id = rc.id
		SET rc.current_uses = rc.current_uses - 1
		WHERE ru.reservation_id = ? AND rc.current_uses > 0`, reservationID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM referral_usage WHERE reservation_id = ?`, reservationID)
	return err
}

// UpdateUsageDiscount rewrites the recorded discount after the reservation total changed.
func (r *ReferralRepository) UpdateUsageDiscount(ctx context.Context, tx *sql.Tx, reservationID int64, amount float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE referral_usage SET discount_amount = ? WHERE reservation_id = ?`, amount, reservationID)
	return err
}

func (r *ReferralRepository) ListUsages(ctx context.Context, codeID int64) ([]models.ReferralUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, referral_code_id, used_by_client_id, reservation_id, discount_amount, used_at
		FROM referral_usage
		WHERE referral_code_id = ?
		ORDER BY used_at DESC`, codeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usages := []models.ReferralUsage{}
	for rows.Next() {
		var u models.ReferralUsage
		if err := rows.Scan(&u.ID, &u.ReferralCodeID, &u.UsedByClientID, &u.ReservationID, &u.DiscountAmount, &u.UsedAt); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}
