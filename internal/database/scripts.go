package database

import (
	"context"
	"fmt"
	"log/slog"
)

// RunPreorderMigration switches the store to pre-order only. Safe to run repeatedly.
func (db *DB) RunPreorderMigration(ctx context.Context) error {
	slog.Info("Running pre-order store migration...")

	alters := []string{
		"ALTER TABLE products ADD COLUMN is_preorder BOOLEAN NOT NULL DEFAULT TRUE",
		"ALTER TABLE products ADD COLUMN estimated_delivery_days INT NOT NULL DEFAULT 14",
		"ALTER TABLE store_orders ADD COLUMN date_livraison_estimee DATE NULL",
	}
	for _, stmt := range alters {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if IsDuplicateColumn(err) {
				slog.Debug("Column already exists, skipping", "statement", stmt)
				continue
			}
			return fmt.Errorf("preorder migration: %w", err)
		}
	}

	backfill := []string{
		"UPDATE products SET is_preorder = TRUE WHERE is_preorder IS NULL OR is_preorder = FALSE",
		"UPDATE products SET estimated_delivery_days = 14 WHERE estimated_delivery_days IS NULL OR estimated_delivery_days <= 0",
	}
	for _, stmt := range backfill {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("preorder backfill: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, "ALTER TABLE products DROP COLUMN stock_quantity"); err != nil {
		if !IsCantDropField(err) {
			return fmt.Errorf("drop stock_quantity: %w", err)
		}
		slog.Debug("stock_quantity already removed")
	}

	slog.Info("Pre-order store migration completed")
	return nil
}

// RunPermissionsMigration adds the permissions column and fills role defaults.
func (db *DB) RunPermissionsMigration(ctx context.Context) error {
	slog.Info("Running admin permissions migration...")

	_, err := db.ExecContext(ctx, "ALTER TABLE administrateurs ADD COLUMN permissions JSON NULL")
	if err != nil && !IsDuplicateColumn(err) {
		return fmt.Errorf("permissions migration: %w", err)
	}

	defaults := map[string]string{
		"super_admin": `["*"]`,
		"admin":       `["reservations","services","clients","memberships","referrals","store","stats"]`,
		"employe":     `["reservations","clients"]`,
	}
	for role, perms := range defaults {
		res, err := db.ExecContext(ctx,
			"UPDATE administrateurs SET permissions = CAST(? AS JSON) WHERE role = ? AND permissions IS NULL",
			perms, role)
		if err != nil {
			return fmt.Errorf("backfill permissions for %s: %w", role, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slog.Info("Backfilled admin permissions", "role", role, "rows", n)
		}
	}

	slog.Info("Admin permissions migration completed")
	return nil
}

// ColumnInfo describes one column as reported by information_schema.
type ColumnInfo struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
}

// InspectStore lists the columns of the store tables in the current schema.
func (db *DB) InspectStore(ctx context.Context) ([]ColumnInfo, error) {
	query := `
		SELECT TABLE_NAME, COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COALESCE(COLUMN_DEFAULT, '')
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		  AND TABLE_NAME IN ('products', 'product_categories', 'store_orders', 'store_order_items')
		ORDER BY TABLE_NAME, ORDINAL_POSITION`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("inspect store: %w", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		var nullable string
		if err := rows.Scan(&c.Table, &c.Column, &c.Type, &nullable, &c.Default); err != nil {
			return nil, err
		}
		c.Nullable = nullable == "YES"
		columns = append(columns, c)
	}
	return columns, rows.Err()
}
