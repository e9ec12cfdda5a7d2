package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
)

// Querier is satisfied by *sql.DB, *database.DB and *sql.Tx so that
// repository methods can join a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Repositories struct {
	Clients      *ClientRepository
	Admins       *AdminRepository
	Services     *ServiceRepository
	Reservations *ReservationRepository
	Products     *ProductRepository
	Orders       *StoreOrderRepository
	Memberships  *MembershipRepository
	Referrals    *ReferralRepository
	JotForm      *JotFormRepository
	Stats        *StatsRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Clients:      NewClientRepository(db),
		Admins:       NewAdminRepository(db),
		Services:     NewServiceRepository(db),
		Reservations: NewReservationRepository(db),
		Products:     NewProductRepository(db),
		Orders:       NewStoreOrderRepository(db),
		Memberships:  NewMembershipRepository(db),
		Referrals:    NewReferralRepository(db),
		JotForm:      NewJotFormRepository(db),
		Stats:        NewStatsRepository(db),
	}
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// paginate clamps page and size and returns the OFFSET.
func paginate(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize, (page - 1) * pageSize
}
