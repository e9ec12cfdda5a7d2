package repository

import (
	"context"
	"database/sql"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const membershipColumns = `
	m.id, m.nom, m.description, m.prix_mensuel, m.prix_3_mois, m.services_par_mois,
	m.avantages, m.actif, m.date_creation`

// TranslatedMembership is a membership joined with its row for one language, if any.
type TranslatedMembership struct {
	models.Membership
	TrNom         *string
	TrDescription *string
	TrAvantages   *string
}

type MembershipRepository struct {
	db *database.DB
}

func NewMembershipRepository(db *database.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func scanMembership(row scanner, extra ...any) (*models.Membership, error) {
	m := &models.Membership{}
	dest := []any{
		&m.ID,
		&m.Nom,
		&m.Description,
		&m.PrixMensuel,
		&m.Prix3Mois,
		&m.ServicesParMois,
		&m.Avantages,
		&m.Actif,
		&m.DateCreation,
	}
	err := row.Scan(append(dest, extra...)...)
	return m, err
}

func (r *MembershipRepository) ListTranslated(ctx context.Context, lang string, activeOnly bool) ([]TranslatedMembership, error) {
	query := `
		SELECT ` + membershipColumns + `, t.nom, t.description, t.avantages
		FROM memberships m
		LEFT JOIN memberships_translations t ON t.membership_id = m.id AND t.language_code = ?`
	if activeOnly {
		query += " WHERE m.actif = TRUE"
	}
	query += " ORDER BY m.prix_mensuel"

	rows, err := r.db.QueryContext(ctx, query, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []TranslatedMembership
	for rows.Next() {
		var tm TranslatedMembership
		m, err := scanMembership(rows, &tm.TrNom, &tm.TrDescription, &tm.TrAvantages)
		if err != nil {
			return nil, err
		}
		tm.Membership = *m
		memberships = append(memberships, tm)
	}
	return memberships, rows.Err()
}

func (r *MembershipRepository) GetByID(ctx context.Context, id int64) (*models.Membership, error) {
	m, err := scanMembership(r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships m WHERE m.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO memberships (nom, description, prix_mensuel, prix_3_mois, services_par_mois, avantages, actif)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		m.Nom, m.Description, m.PrixMensuel, m.Prix3Mois, m.ServicesParMois, m.Avantages, m.Actif)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *MembershipRepository) Update(ctx context.Context, m *models.Membership) (bool, error) {
	query := `
		UPDATE memberships
		SET nom = ?, description = ?, prix_mensuel = ?, prix_3_mois = ?, services_par_mois = ?, avantages = ?, actif = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		m.Nom, m.Description, m.PrixMensuel, m.Prix3Mois, m.ServicesParMois, m.Avantages, m.Actif, m.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MembershipRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MembershipRepository) ListTranslations(ctx context.Context, membershipID int64) ([]models.MembershipTranslation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT membership_id, language_code, nom, description, avantages
		FROM memberships_translations
		WHERE membership_id = ?
		ORDER BY language_code`, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	translations := []models.MembershipTranslation{}
	for rows.Next() {
		var t models.MembershipTranslation
		if err := rows.Scan(&t.MembershipID, &t.LanguageCode, &t.Nom, &t.Description, &t.Avantages); err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}

func (r *MembershipRepository) UpsertTranslation(ctx context.Context, t *models.MembershipTranslation) error {
	query := `
		INSERT INTO memberships_translations (membership_id, language_code, nom, description, avantages)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE nom = VALUES(nom), description = VALUES(description), avantages = VALUES(avantages)`

	_, err := r.db.ExecContext(ctx, query, t.MembershipID, t.LanguageCode, t.Nom, t.Description, t.Avantages)
	return err
}

func (r *MembershipRepository) DeleteTranslation(ctx context.Context, membershipID int64, lang string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships_translations WHERE membership_id = ? AND language_code = ?`, membershipID, lang)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
