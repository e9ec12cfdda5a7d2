package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

type AdminRepository struct {
	db *database.DB
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) getOne(ctx context.Context, where string, arg any) (*models.Admin, error) {
	query := `
		SELECT id, nom, email, mot_de_passe, role, permissions, actif, date_creation
		FROM administrateurs
		WHERE ` + where

	a := &models.Admin{}
	var perms []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID,
		&a.Nom,
		&a.Email,
		&a.MotDePasse,
		&a.Role,
		&perms,
		&a.Actif,
		&a.DateCreation,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &a.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions of admin %d: %w", a.ID, err)
		}
	}
	return a, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *AdminRepository) Create(ctx context.Context, a *models.Admin) error {
	perms, err := json.Marshal(a.Permissions)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO administrateurs (nom, email, mot_de_passe, role, permissions, actif) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Nom, a.Email, a.MotDePasse, a.Role, perms, a.Actif)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}
