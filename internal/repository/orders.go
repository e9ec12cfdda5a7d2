package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const orderColumns = `
	id, numero_commande, client_id, client_nom, client_email, client_telephone, adresse_livraison,
	statut, total, DATE_FORMAT(date_livraison_estimee, '%Y-%m-%d'), notes, created_at, updated_at`

type StoreOrderRepository struct {
	db *database.DB
}

func NewStoreOrderRepository(db *database.DB) *StoreOrderRepository {
	return &StoreOrderRepository{db: db}
}

func (r *StoreOrderRepository) DB() *database.DB {
	return r.db
}

func scanOrder(row scanner) (*models.StoreOrder, error) {
	o := &models.StoreOrder{}
	err := row.Scan(
		&o.ID,
		&o.NumeroCommande,
		&o.ClientID,
		&o.ClientNom,
		&o.ClientEmail,
		&o.ClientTelephone,
		&o.AdresseLivraison,
		&o.Statut,
		&o.Total,
		&o.DateLivraisonEstimee,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func (r *StoreOrderRepository) Create(ctx context.Context, tx *sql.Tx, o *models.StoreOrder) error {
	query := `
		INSERT INTO store_orders (numero_commande, client_id, client_nom, client_email, client_telephone,
		                          adresse_livraison, statut, total, date_livraison_estimee, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, query,
		o.NumeroCommande,
		o.ClientID,
		o.ClientNom,
		o.ClientEmail,
		o.ClientTelephone,
		o.AdresseLivraison,
		o.Statut,
		o.Total,
		o.DateLivraisonEstimee,
		o.Notes,
	)
	if err != nil {
		return err
	}
	o.ID, err = res.LastInsertId()
	return err
}

func (r *StoreOrderRepository) InsertItem(ctx context.Context, tx *sql.Tx, it *models.StoreOrderItem) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO store_order_items (order_id, product_id, quantite, prix_unitaire, sous_total) VALUES (?, ?, ?, ?, ?)`,
		it.OrderID, it.ProductID, it.Quantite, it.PrixUnitaire, it.SousTotal)
	if err != nil {
		return err
	}
	it.ID, err = res.LastInsertId()
	return err
}

func (r *StoreOrderRepository) GetByID(ctx context.Context, id int64) (*models.StoreOrder, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM store_orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = r.GetItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *StoreOrderRepository) GetItems(ctx context.Context, orderID int64) ([]models.StoreOrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.nom, oi.quantite, oi.prix_unitaire, oi.sous_total
		FROM store_order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.StoreOrderItem
	for rows.Next() {
		var it models.StoreOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductNom, &it.Quantite, &it.PrixUnitaire, &it.SousTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByClient returns the orders of a client, matching guest orders placed with the same email.
func (r *StoreOrderRepository) ListByClient(ctx context.Context, clientID int64, email string) ([]models.StoreOrder, error) {
	query := `SELECT ` + orderColumns + `
		FROM store_orders
		WHERE client_id = ? OR (client_id IS NULL AND client_email = ?)
		ORDER BY created_at DESC`

	return r.list(ctx, query, clientID, email)
}

func (r *StoreOrderRepository) List(ctx context.Context, f models.OrderFilter) ([]models.StoreOrder, int, error) {
	where := ""
	var args []any
	if f.Statut != "" {
		where = " WHERE statut = ?"
		args = append(args, f.Statut)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM store_orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	_, size, offset := paginate(f.Page, f.PageSize)
	orders, err := r.list(ctx,
		`SELECT `+orderColumns+` FROM store_orders`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, size, offset)...)
	return orders, total, err
}

func (r *StoreOrderRepository) UpdateStatus(ctx context.Context, id int64, statut string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE store_orders SET statut = ? WHERE id = ?`, statut, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *StoreOrderRepository) list(ctx context.Context, query string, args ...any) ([]models.StoreOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var orders []models.StoreOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range orders {
		items, err := r.GetItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}
