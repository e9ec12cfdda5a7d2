package service

import (
	"context"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/availability"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/cache"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/search"
)

// Deps are the shared collaborators of every service. Cache and Search may be nil.
type Deps struct {
	DB        *database.DB
	Repos     *repository.Repositories
	Publisher messaging.Publisher
	Cache     *cache.Cache
	Search    *search.ProductIndex
	Tokens    *auth.TokenManager
	JotForm   FormFetcher
	FormID    string
	FormTTL   time.Duration
	Hours     availability.Hours
}

type Services struct {
	Reservations *ReservationService
	Catalog      *CatalogService
	Auth         *AuthService
	Clients      *ClientService
	Store        *StoreService
	Memberships  *MembershipService
	Referrals    *ReferralService
	JotForm      *JotFormService
	Stats        *StatsService
}

func NewServices(d Deps) *Services {
	if d.Publisher == nil {
		d.Publisher = messaging.NopPublisher{}
	}
	if d.JotForm == nil {
		d.JotForm = external.NewJotFormClient(external.JotFormConfig{})
	}

	return &Services{
		Reservations: NewReservationService(d.DB, d.Repos, d.Publisher, d.Hours),
		Catalog:      NewCatalogService(d.Repos.Services, d.Cache),
		Auth:         NewAuthService(d.Repos.Clients, d.Repos.Admins, d.Tokens, d.Publisher),
		Clients:      NewClientService(d.Repos.Clients),
		Store:        NewStoreService(d.DB, d.Repos.Products, d.Repos.Orders, d.Repos.Clients, d.Search, d.Publisher),
		Memberships:  NewMembershipService(d.Repos.Memberships, d.Cache),
		Referrals:    NewReferralService(d.Repos.Referrals, d.Repos.Clients),
		JotForm:      NewJotFormService(d.Repos.JotForm, d.Repos.Reservations, d.JotForm, d.FormID, d.FormTTL),
		Stats:        NewStatsService(d.Repos.Stats),
	}
}

// publish logs but never fails the calling operation.
func publish(ctx context.Context, p messaging.Publisher, subject string, data any) {
	if err := p.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"subject", subject)
	}
}

func pageOf[T any](items []T, total, page, pageSize int) *models.Page[T] {
	if items == nil {
		items = []T{}
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return &models.Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
}
