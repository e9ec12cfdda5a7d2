package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/metrics"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/pricing"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/search"

	"github.com/google/uuid"
)

const defaultDeliveryDays = 14

var orderStatuses = map[string]bool{
	models.OrderPending:   true,
	models.OrderConfirmed: true,
	models.OrderShipped:   true,
	models.OrderDelivered: true,
	models.OrderCancelled: true,
}

// StoreService runs the pre-order store. Index is optional; without it
// product search runs on MySQL.
type StoreService struct {
	db        *database.DB
	products  *repository.ProductRepository
	orders    *repository.StoreOrderRepository
	clients   *repository.ClientRepository
	index     *search.ProductIndex
	publisher messaging.Publisher
	now       func() time.Time
}

func NewStoreService(db *database.DB, products *repository.ProductRepository, orders *repository.StoreOrderRepository, clients *repository.ClientRepository, index *search.ProductIndex, publisher messaging.Publisher) *StoreService {
	return &StoreService{
		db:        db,
		products:  products,
		orders:    orders,
		clients:   clients,
		index:     index,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *StoreService) ListProducts(ctx context.Context, f models.ProductFilter) (*models.Page[models.Product], error) {
	f.Query = strings.TrimSpace(f.Query)

	if s.index != nil {
		page, err := s.searchProducts(ctx, f)
		if err == nil {
			return page, nil
		}
		logger.WithContext(ctx).Warn("Product search failed, falling back to MySQL", "error", err)
	}

	list, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return pageOf(list, total, f.Page, f.PageSize), nil
}

// searchProducts resolves the index hits against MySQL, keeping relevance order.
func (s *StoreService) searchProducts(ctx context.Context, f models.ProductFilter) (*models.Page[models.Product], error) {
	ids, total, err := s.index.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	byID, err := s.products.GetByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	list := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && p.Actif {
			list = append(list, p)
		}
	}
	return pageOf(list, total, f.Page, f.PageSize), nil
}

func (s *StoreService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil || !p.Actif {
		return nil, apperrors.NotFound("product")
	}
	return p, nil
}

func (s *StoreService) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	list, err := s.products.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if list == nil {
		list = []models.ProductCategory{}
	}
	return list, nil
}

// mergeOrderItems validates quantities and folds repeated products into one line.
func mergeOrderItems(items []models.OrderItemRequest) ([]models.OrderItemRequest, error) {
	if len(items) == 0 {
		return nil, apperrors.Invalid("an order needs at least one item")
	}
	merged := make([]models.OrderItemRequest, 0, len(items))
	index := map[int64]int{}
	for _, it := range items {
		if it.ProductID <= 0 {
			return nil, apperrors.Invalid("product_id is required")
		}
		if it.Quantite < 1 {
			return nil, apperrors.Invalid("quantite must be at least 1")
		}
		if i, ok := index[it.ProductID]; ok {
			merged[i].Quantite += it.Quantite
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// NewOrderNumber builds a human friendly unique order reference.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return "CMD-" + now.Format("20060102") + "-" + suffix
}

// PlaceOrder records a pre-order. There is no stock: the delivery estimate
// is today plus the longest delivery delay of the ordered products.
func (s *StoreService) PlaceOrder(ctx context.Context, req *models.CreateOrderRequest, clientID *int64) (*models.StoreOrder, error) {
	items, err := mergeOrderItems(req.Items)
	if err != nil {
		return nil, err
	}

	order := &models.StoreOrder{
		ClientID:         clientID,
		ClientNom:        strings.TrimSpace(req.ClientNom),
		ClientEmail:      normalizeEmail(req.ClientEmail),
		ClientTelephone:  req.ClientTelephone,
		AdresseLivraison: req.AdresseLivraison,
		Notes:            req.Notes,
		Statut:           models.OrderPending,
	}
	if clientID != nil {
		client, err := s.clients.GetByID(ctx, *clientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return nil, apperrors.ErrUnauthorized
		}
		if order.ClientNom == "" {
			order.ClientNom = strings.TrimSpace(client.Prenom + " " + client.Nom)
		}
		if order.ClientEmail == "" {
			order.ClientEmail = client.Email
		}
		if order.ClientTelephone == nil {
			order.ClientTelephone = client.Telephone
		}
	}
	if order.ClientNom == "" {
		return nil, apperrors.Invalid("client_nom is required")
	}
	if order.ClientEmail == "" {
		return nil, apperrors.Invalid("client_email is required")
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		byID, err := s.products.GetByIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}

		maxDays := 0
		var totalCents int64
		lines := make([]models.StoreOrderItem, 0, len(items))
		for _, it := range items {
			p, ok := byID[it.ProductID]
			if !ok {
				return apperrors.NotFound(fmt.Sprintf("product %d", it.ProductID))
			}
			if !p.Actif {
				return apperrors.Invalid(fmt.Sprintf("product %q is no longer available", p.Nom))
			}
			days := p.EstimatedDeliveryDays
			if days <= 0 {
				days = defaultDeliveryDays
			}
			if days > maxDays {
				maxDays = days
			}

			subtotal := pricing.LineTotal(p.Prix, it.Quantite)
			totalCents += pricing.ToCents(subtotal)
			lines = append(lines, models.StoreOrderItem{
				ProductID:    p.ID,
				ProductNom:   p.Nom,
				Quantite:     it.Quantite,
				PrixUnitaire: p.Prix,
				SousTotal:    subtotal,
			})
		}

		delivery := s.now().AddDate(0, 0, maxDays).Format(dateLayout)
		order.NumeroCommande = NewOrderNumber(s.now())
		order.Total = pricing.FromCents(totalCents)
		order.DateLivraisonEstimee = &delivery

		if err := s.orders.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := s.orders.InsertItem(ctx, tx, &lines[i]); err != nil {
				return fmt.Errorf("failed to add order item: %w", err)
			}
		}
		order.Items = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StoreOrders.Inc()
	logger.WithContext(ctx).Info("Store order placed",
		"order_id", order.ID,
		"numero_commande", order.NumeroCommande,
		"total", order.Total)
	publish(ctx, s.publisher, models.EventStoreOrderCreated, models.StoreOrderCreatedEvent{
		OrderID:              order.ID,
		NumeroCommande:       order.NumeroCommande,
		ClientEmail:          order.ClientEmail,
		ClientNom:            order.ClientNom,
		Total:                order.Total,
		DateLivraisonEstimee: *order.DateLivraisonEstimee,
		Timestamp:            time.Now(),
	})

	return order, nil
}

func (s *StoreService) ListClientOrders(ctx context.Context, clientID int64) ([]models.StoreOrder, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client")
	}
	orders, err := s.orders.ListByClient(ctx, clientID, client.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.StoreOrder{}
	}
	return orders, nil
}

// ListAllProducts is the admin view, inactive products included.
func (s *StoreService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	list, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if list == nil {
		list = []models.Product{}
	}
	return list, nil
}

func applyProductRequest(p *models.Product, req *models.ProductRequest) error {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return apperrors.Invalid("nom is required")
	}
	if req.Prix < 0 {
		return apperrors.Invalid("prix cannot be negative")
	}
	if req.EstimatedDeliveryDays < 0 {
		return apperrors.Invalid("estimated_delivery_days cannot be negative")
	}
	p.Nom = nom
	p.Description = req.Description
	p.Prix = req.Prix
	p.CategorieID = req.CategorieID
	p.ImageURL = req.ImageURL
	p.IsPreorder = true
	p.EstimatedDeliveryDays = req.EstimatedDeliveryDays
	if p.EstimatedDeliveryDays == 0 {
		p.EstimatedDeliveryDays = defaultDeliveryDays
	}
	p.Actif = models.BoolOr(req.Actif, p.ID == 0 || p.Actif)
	return nil
}

func (s *StoreService) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	p := &models.Product{}
	if err := applyProductRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, p); err != nil {
		if database.IsMissingReference(err) {
			return nil, apperrors.Invalid("unknown categorie_id")
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.reindexOne(ctx, p.ID)
}

func (s *StoreService) UpdateProduct(ctx context.Context, id int64, req *models.ProductRequest) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, apperrors.NotFound("product")
	}
	if err := applyProductRequest(p, req); err != nil {
		return nil, err
	}
	if _, err := s.products.Update(ctx, p); err != nil {
		if database.IsMissingReference(err) {
			return nil, apperrors.Invalid("unknown categorie_id")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.reindexOne(ctx, id)
}

// DeleteProduct hides a product from the store. Existing orders keep it.
func (s *StoreService) DeleteProduct(ctx context.Context, id int64) error {
	ok, err := s.products.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !ok {
		return apperrors.NotFound("product")
	}
	if s.index != nil {
		if err := s.index.DeleteProduct(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("Failed to remove product from index", "error", err, "product_id", id)
		}
	}
	return nil
}

// reindexOne reloads the product (to get its category name) and pushes it to the index.
func (s *StoreService) reindexOne(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	if p == nil {
		return nil, apperrors.NotFound("product")
	}
	if s.index != nil {
		if err := s.index.IndexProduct(ctx, p); err != nil {
			logger.WithContext(ctx).Warn("Failed to index product", "error", err, "product_id", id)
		}
	}
	return p, nil
}

// Reindex rebuilds the search index from MySQL.
func (s *StoreService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, apperrors.Conflict("search index is not configured")
	}
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}
	return s.index.BulkIndex(ctx, products)
}

func (s *StoreService) CreateCategory(ctx context.Context, req *models.ProductCategoryRequest) (*models.ProductCategory, error) {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return nil, apperrors.Invalid("nom is required")
	}
	c := &models.ProductCategory{
		Nom:         nom,
		Description: req.Description,
		Actif:       models.BoolOr(req.Actif, true),
	}
	if err := s.products.CreateCategory(ctx, c); err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, apperrors.Conflict("a category with this name already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (s *StoreService) ListOrders(ctx context.Context, f models.OrderFilter) (*models.Page[models.StoreOrder], error) {
	if f.Statut != "" && !orderStatuses[f.Statut] {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown statut %q", f.Statut))
	}
	list, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return pageOf(list, total, f.Page, f.PageSize), nil
}

func (s *StoreService) UpdateOrderStatus(ctx context.Context, id int64, statut string) (*models.StoreOrder, error) {
	if !orderStatuses[statut] {
		return nil, apperrors.Invalid(fmt.Sprintf("unknown statut %q", statut))
	}
	ok, err := s.orders.UpdateStatus(ctx, id, statut)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("order")
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	if order == nil {
		return nil, apperrors.NotFound("order")
	}
	return order, nil
}
