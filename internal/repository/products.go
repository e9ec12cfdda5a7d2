package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const productColumns = `
	p.id, p.nom, p.description, p.prix, p.categorie_id, pc.nom, p.image_url,
	p.is_preorder, p.estimated_delivery_days, p.actif, p.created_at, p.updated_at`

const productFrom = `
	FROM products p
	LEFT JOIN product_categories pc ON pc.id = p.categorie_id`

type ProductRepository struct {
	db *database.DB
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row scanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(
		&p.ID,
		&p.Nom,
		&p.Description,
		&p.Prix,
		&p.CategorieID,
		&p.CategorieNom,
		&p.ImageURL,
		&p.IsPreorder,
		&p.EstimatedDeliveryDays,
		&p.Actif,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *ProductRepository) queryProducts(ctx context.Context, q Querier, query string, args ...any) ([]models.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// List filters active products by text and category.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error) {
	where := " WHERE p.actif = TRUE"
	var args []any
	if f.Query != "" {
		where += " AND (p.nom LIKE ? OR p.description LIKE ?)"
		like := "%" + f.Query + "%"
		args = append(args, like, like)
	}
	if f.CategorieID != nil {
		where += " AND p.categorie_id = ?"
		args = append(args, *f.CategorieID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+productFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	_, size, offset := paginate(f.Page, f.PageSize)
	query := `SELECT ` + productColumns + productFrom + where + ` ORDER BY p.nom LIMIT ? OFFSET ?`
	products, err := r.queryProducts(ctx, r.db, query, append(args, size, offset)...)
	return products, total, err
}

// ListAll returns every product, active or not (used to rebuild the search index).
func (r *ProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx, r.db, `SELECT `+productColumns+productFrom+` ORDER BY p.id`)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, q Querier, ids []int64) (map[int64]models.Product, error) {
	result := make(map[int64]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	products, err := r.queryProducts(ctx, q,
		`SELECT `+productColumns+productFrom+` WHERE p.id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// Create inserts a product. Every product is a pre-order item.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (nom, description, prix, categorie_id, image_url, is_preorder, estimated_delivery_days, actif)
		VALUES (?, ?, ?, ?, ?, TRUE, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		p.Nom, p.Description, p.Prix, p.CategorieID, p.ImageURL, p.EstimatedDeliveryDays, p.Actif)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	p.IsPreorder = true
	return err
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) (bool, error) {
	query := `
		UPDATE products
		SET nom = ?, description = ?, prix = ?, categorie_id = ?, image_url = ?,
		    estimated_delivery_days = ?, actif = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		p.Nom, p.Description, p.Prix, p.CategorieID, p.ImageURL, p.EstimatedDeliveryDays, p.Actif, p.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ProductRepository) Deactivate(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET actif = FALSE WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ProductRepository) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, nom, description, actif FROM product_categories WHERE actif = TRUE ORDER BY nom`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.ProductCategory
	for rows.Next() {
		var c models.ProductCategory
		if err := rows.Scan(&c.ID, &c.Nom, &c.Description, &c.Actif); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *ProductRepository) GetCategory(ctx context.Context, id int64) (*models.ProductCategory, error) {
	c := &models.ProductCategory{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nom, description, actif FROM product_categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Nom, &c.Description, &c.Actif)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ProductRepository) CreateCategory(ctx context.Context, c *models.ProductCategory) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO product_categories (nom, description, actif) VALUES (?, ?, ?)`, c.Nom, c.Description, c.Actif)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}
