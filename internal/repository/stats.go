package repository

import (
	"context"
	"fmt"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

type StatsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Dashboard aggregates the admin counters. Dates are YYYY-MM-DD; monthEnd is exclusive.
func (r *StatsRepository) Dashboard(ctx context.Context, today, monthStart, monthEnd string) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{ReservationsByStatus: map[string]int{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(date_reservation = ? AND statut IN ('en_attente', 'confirmee')), 0),
			COALESCE(SUM(date_reservation > ? AND statut IN ('en_attente', 'confirmee')), 0)
		FROM reservations`, today, today).Scan(&stats.ReservationsToday, &stats.ReservationsUpcoming)
	if err != nil {
		return nil, fmt.Errorf("reservation counters: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT statut, COUNT(*) FROM reservations GROUP BY statut`)
	if err != nil {
		return nil, fmt.Errorf("reservations by status: %w", err)
	}
	for rows.Next() {
		var statut string
		var n int
		if err := rows.Scan(&statut, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ReservationsByStatus[statut] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(prix_final), 0)
		FROM reservations
		WHERE statut IN ('confirmee', 'terminee') AND date_reservation >= ? AND date_reservation < ?`,
		monthStart, monthEnd).Scan(&stats.RevenueMonth)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE actif = TRUE`).Scan(&stats.ClientsCount); err != nil {
		return nil, fmt.Errorf("clients count: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM store_orders WHERE statut = 'pending'`).Scan(&stats.PendingStoreOrders); err != nil {
		return nil, fmt.Errorf("pending orders: %w", err)
	}

	top, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.nom, COUNT(*) AS n
		FROM reservation_items ri
		JOIN services s ON s.id = ri.service_id
		JOIN reservations r ON r.id = ri.reservation_id
		WHERE r.statut <> 'annulee'
		GROUP BY s.id, s.nom
		ORDER BY n DESC
		LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("top services: %w", err)
	}
	defer top.Close()

	stats.TopServices = []models.ServiceCount{}
	for top.Next() {
		var sc models.ServiceCount
		if err := top.Scan(&sc.ServiceID, &sc.Nom, &sc.Count); err != nil {
			return nil, err
		}
		stats.TopServices = append(stats.TopServices, sc)
	}
	return stats, top.Err()
}
