package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(conn), mock
}

func TestMySQLErrorHelpers(t *testing.T) {
	dup := &mysql.MySQLError{Number: ErrCodeDupFieldName, Message: "Duplicate column name 'is_preorder'"}
	wrapped := fmt.Errorf("alter: %w", dup)

	assert.True(t, IsDuplicateColumn(dup))
	assert.True(t, IsDuplicateColumn(wrapped))
	assert.False(t, IsDuplicateEntry(wrapped))
	assert.False(t, IsDuplicateColumn(errors.New("boom")))
	assert.True(t, IsCantDropField(&mysql.MySQLError{Number: ErrCodeCantDropField}))
	assert.True(t, IsDuplicateEntry(&mysql.MySQLError{Number: ErrCodeDupEntry}))
}

func TestPreorderMigrationIsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	dupCol := &mysql.MySQLError{Number: ErrCodeDupFieldName}

	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE products ADD COLUMN is_preorder")).WillReturnError(dupCol)
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE products ADD COLUMN estimated_delivery_days")).WillReturnError(dupCol)
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE store_orders ADD COLUMN date_livraison_estimee")).WillReturnError(dupCol)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET is_preorder = TRUE")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET estimated_delivery_days = 14")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE products DROP COLUMN stock_quantity")).
		WillReturnError(&mysql.MySQLError{Number: ErrCodeCantDropField})

	require.NoError(t, db.RunPreorderMigration(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreorderMigrationDropsStock(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("ALTER TABLE products ADD COLUMN is_preorder").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE products ADD COLUMN estimated_delivery_days").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE store_orders ADD COLUMN date_livraison_estimee").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE products SET is_preorder").WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("UPDATE products SET estimated_delivery_days").WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("ALTER TABLE products DROP COLUMN stock_quantity").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.RunPreorderMigration(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreorderMigrationFailsOnOtherErrors(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("ALTER TABLE products ADD COLUMN is_preorder").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'products' doesn't exist"})

	err := db.RunPreorderMigration(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "preorder migration")
}

func TestPermissionsMigrationBackfillsRoles(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("ALTER TABLE administrateurs ADD COLUMN permissions").
		WillReturnError(&mysql.MySQLError{Number: ErrCodeDupFieldName})
	mock.MatchExpectationsInOrder(false)
	for _, role := range []string{"super_admin", "admin", "employe"} {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE administrateurs SET permissions = CAST(? AS JSON) WHERE role = ? AND permissions IS NULL")).
			WithArgs(sqlmock.AnyArg(), role).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, db.RunPermissionsMigration(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInspectStore(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM information_schema.COLUMNS").
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT"}).
			AddRow("products", "id", "int", "NO", "").
			AddRow("products", "is_preorder", "tinyint(1)", "NO", "1").
			AddRow("store_orders", "date_livraison_estimee", "date", "YES", ""))

	cols, err := db.InspectStore(context.Background())
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, "is_preorder", cols[1].Column)
	assert.False(t, cols[1].Nullable)
	assert.True(t, cols[2].Nullable)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}
