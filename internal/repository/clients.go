package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const clientColumns = `
	id, nom, prenom, email, telephone, mot_de_passe, email_verifie, token_verification,
	DATE_FORMAT(date_naissance, '%Y-%m-%d'), adresse, langue_preferee, actif,
	date_creation, date_modification`

type ClientRepository struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row scanner) (*models.Client, error) {
	c := &models.Client{}
	err := row.Scan(
		&c.ID,
		&c.Nom,
		&c.Prenom,
		&c.Email,
		&c.Telephone,
		&c.MotDePasse,
		&c.EmailVerifie,
		&c.TokenVerification,
		&c.DateNaissance,
		&c.Adresse,
		&c.LanguePreferee,
		&c.Actif,
		&c.DateCreation,
		&c.DateModification,
	)
	return c, err
}

func (r *ClientRepository) getOne(ctx context.Context, where string, arg any) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE ` + where
	client, err := scanClient(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *ClientRepository) GetByVerificationToken(ctx context.Context, token string) (*models.Client, error) {
	return r.getOne(ctx, "token_verification = ?", token)
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO clients (nom, prenom, email, telephone, mot_de_passe, email_verifie,
		                     token_verification, langue_preferee, actif)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		c.Nom,
		c.Prenom,
		c.Email,
		c.Telephone,
		c.MotDePasse,
		c.EmailVerifie,
		c.TokenVerification,
		c.LanguePreferee,
		c.Actif,
	)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *ClientRepository) MarkVerified(ctx context.Context, id int64) error {
	query := `UPDATE clients SET email_verifie = TRUE, token_verification = NULL WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// UpdateProfile overwrites the editable profile columns with the values of c.
func (r *ClientRepository) UpdateProfile(ctx context.Context, c *models.Client) error {
	query := `
		UPDATE clients
		SET nom = ?, prenom = ?, telephone = ?, date_naissance = ?, adresse = ?, langue_preferee = ?
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		c.Nom,
		c.Prenom,
		c.Telephone,
		c.DateNaissance,
		c.Adresse,
		c.LanguePreferee,
		c.ID,
	)
	return err
}

func (r *ClientRepository) SetActive(ctx context.Context, id int64, actif bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET actif = ? WHERE id = ?`, actif, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ClientRepository) List(ctx context.Context, f models.ClientFilter) ([]models.Client, int, error) {
	where := " WHERE 1=1"
	var args []any

	if f.Search != "" {
		where += " AND (nom LIKE ? OR prenom LIKE ? OR email LIKE ? OR telephone LIKE ?)"
		like := "%" + f.Search + "%"
		args = append(args, like, like, like, like)
	}
	if f.Actif != nil {
		where += " AND actif = ?"
		args = append(args, *f.Actif)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	_, size, offset := paginate(f.Page, f.PageSize)
	query := `SELECT ` + clientColumns + ` FROM clients` + where + ` ORDER BY date_creation DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, size, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, total, rows.Err()
}
