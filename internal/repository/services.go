package repository

import (
	"context"
	"database/sql"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const serviceColumns = `
	s.id, s.nom, s.description, s.prix, s.duree, s.categorie_id, c.nom,
	s.populaire, s.actif, s.date_creation`

// TranslatedService is a service joined with its row for one language, if any.
type TranslatedService struct {
	models.Service
	TrNom         *string
	TrDescription *string
}

type ServiceRepository struct {
	db *database.DB
}

func NewServiceRepository(db *database.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func scanService(row scanner, extra ...any) (*models.Service, error) {
	s := &models.Service{}
	dest := []any{
		&s.ID,
		&s.Nom,
		&s.Description,
		&s.Prix,
		&s.Duree,
		&s.CategorieID,
		&s.CategorieNom,
		&s.Populaire,
		&s.Actif,
		&s.DateCreation,
	}
	err := row.Scan(append(dest, extra...)...)
	return s, err
}

// ListTranslated returns services with the translation of lang joined in.
func (r *ServiceRepository) ListTranslated(ctx context.Context, lang string, categoryID *int64, activeOnly bool) ([]TranslatedService, error) {
	query := `
		SELECT ` + serviceColumns + `, t.nom, t.description
		FROM services s
		LEFT JOIN categories_services c ON c.id = s.categorie_id
		LEFT JOIN services_translations t ON t.service_id = s.id AND t.language_code = ?
		WHERE 1=1`
	args := []any{lang}

	if activeOnly {
		query += " AND s.actif = TRUE"
	}
	if categoryID != nil {
		query += " AND s.categorie_id = ?"
		args = append(args, *categoryID)
	}
	query += " ORDER BY c.ordre_affichage, s.populaire DESC, s.nom"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []TranslatedService
	for rows.Next() {
		var ts TranslatedService
		s, err := scanService(rows, &ts.TrNom, &ts.TrDescription)
		if err != nil {
			return nil, err
		}
		ts.Service = *s
		services = append(services, ts)
	}
	return services, rows.Err()
}

func (r *ServiceRepository) GetTranslated(ctx context.Context, id int64, lang string) (*TranslatedService, error) {
	query := `
		SELECT ` + serviceColumns + `, t.nom, t.description
		FROM services s
		LEFT JOIN categories_services c ON c.id = s.categorie_id
		LEFT JOIN services_translations t ON t.service_id = s.id AND t.language_code = ?
		WHERE s.id = ?`

	var ts TranslatedService
	s, err := scanService(r.db.QueryRowContext(ctx, query, lang, id), &ts.TrNom, &ts.TrDescription)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts.Service = *s
	return &ts, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*models.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services s
		LEFT JOIN categories_services c ON c.id = s.categorie_id
		WHERE s.id = ?`

	s, err := scanService(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByIDs returns the requested services keyed by id. Missing ids are absent from the map.
func (r *ServiceRepository) GetByIDs(ctx context.Context, q Querier, ids []int64) (map[int64]models.Service, error) {
	result := make(map[int64]models.Service, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + serviceColumns + `
		FROM services s
		LEFT JOIN categories_services c ON c.id = s.categorie_id
		WHERE s.id IN (` + placeholders(len(ids)) + `)`

	rows, err := q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result[s.ID] = *s
	}
	return result, rows.Err()
}

func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	query := `
		INSERT INTO services (nom, description, prix, duree, categorie_id, populaire, actif)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		s.Nom, s.Description, s.Prix, s.Duree, s.CategorieID, s.Populaire, s.Actif)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *ServiceRepository) Update(ctx context.Context, s *models.Service) (bool, error) {
	query := `
		UPDATE services
		SET nom = ?, description = ?, prix = ?, duree = ?, categorie_id = ?, populaire = ?, actif = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		s.Nom, s.Description, s.Prix, s.Duree, s.CategorieID, s.Populaire, s.Actif, s.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Deactivate hides a service. Rows stay because reservations reference them.
func (r *ServiceRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE services SET actif = FALSE WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ServiceRepository) ListTranslations(ctx context.Context, serviceID int64) ([]models.ServiceTranslation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT service_id, language_code, nom, description FROM services_translations WHERE service_id = ? ORDER BY language_code`,
		serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var translations []models.ServiceTranslation
	for rows.Next() {
		var t models.ServiceTranslation
		if err := rows.Scan(&t.ServiceID, &t.LanguageCode, &t.Nom, &t.Description); err != nil {
			return nil, err
		}
		translations = append(translations, t)
	}
	return translations, rows.Err()
}

func (r *ServiceRepository) UpsertTranslation(ctx context.Context, t *models.ServiceTranslation) error {
	query := `
		INSERT INTO services_translations (service_id, language_code, nom, description)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE nom = VALUES(nom), description = VALUES(description)`

	_, err := r.db.ExecContext(ctx, query, t.ServiceID, t.LanguageCode, t.Nom, t.Description)
	return err
}

func (r *ServiceRepository) DeleteTranslation(ctx context.Context, serviceID int64, lang string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM services_translations WHERE service_id = ? AND language_code = ?`, serviceID, lang)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Categories

func scanCategory(row scanner) (*models.ServiceCategory, error) {
	c := &models.ServiceCategory{}
	err := row.Scan(&c.ID, &c.Nom, &c.Description, &c.CouleurTheme, &c.OrdreAffichage, &c.Actif)
	return c, err
}

func (r *ServiceRepository) ListCategories(ctx context.Context, activeOnly bool) ([]models.ServiceCategory, error) {
	query := `SELECT id, nom, description, couleur_theme, ordre_affichage, actif FROM categories_services`
	if activeOnly {
		query += " WHERE actif = TRUE"
	}
	query += " ORDER BY ordre_affichage, nom"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.ServiceCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (r *ServiceRepository) GetCategory(ctx context.Context, id int64) (*models.ServiceCategory, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT id, nom, description, couleur_theme, ordre_affichage, actif FROM categories_services WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ServiceRepository) CreateCategory(ctx context.Context, c *models.ServiceCategory) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories_services (nom, description, couleur_theme, ordre_affichage, actif) VALUES (?, ?, ?, ?, ?)`,
		c.Nom, c.Description, c.CouleurTheme, c.OrdreAffichage, c.Actif)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *ServiceRepository) UpdateCategory(ctx context.Context, c *models.ServiceCategory) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories_services SET nom = ?, description = ?, couleur_theme = ?, ordre_affichage = ?, actif = ? WHERE id = ?`,
		c.Nom, c.Description, c.CouleurTheme, c.OrdreAffichage, c.Actif, c.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ServiceRepository) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories_services WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
