package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/cache"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/i18n"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
)

const (
	servicesCachePrefix   = "services:"
	categoriesCacheKey    = "categories"
	membershipCachePrefix = "memberships:"
)

type CatalogService struct {
	services *repository.ServiceRepository
	cache    *cache.Cache
}

func NewCatalogService(services *repository.ServiceRepository, c *cache.Cache) *CatalogService {
	return &CatalogService{services: services, cache: c}
}

// LocalizeService renders a service in lang, falling back to the base columns.
func LocalizeService(ts repository.TranslatedService, lang string) models.LocalizedService {
	return models.LocalizedService{
		ID:           ts.ID,
		Nom:          i18n.Fallback(ts.TrNom, ts.Nom),
		Description:  i18n.FallbackPtr(ts.TrDescription, ts.Description),
		Prix:         ts.Prix,
		Duree:        ts.Duree,
		CategorieID:  ts.CategorieID,
		CategorieNom: ts.CategorieNom,
		Populaire:    ts.Populaire,
		Language:     lang,
	}
}

func servicesCacheKey(lang string, categoryID *int64) string {
	if categoryID == nil {
		return servicesCachePrefix + lang + ":all"
	}
	return fmt.Sprintf("%s%s:%d", servicesCachePrefix, lang, *categoryID)
}

// ListServices returns the active services in the requested language.
func (s *CatalogService) ListServices(ctx context.Context, lang string, categoryID *int64) ([]models.LocalizedService, error) {
	lang = i18n.NormalizeLang(lang)
	key := servicesCacheKey(lang, categoryID)

	var cached []models.LocalizedService
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		logger.WithContext(ctx).Warn("Catalog cache read failed", "error", err, "key", key)
	} else if hit {
		return cached, nil
	}

	rows, err := s.services.ListTranslated(ctx, lang, categoryID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	list := make([]models.LocalizedService, 0, len(rows))
	for _, ts := range rows {
		list = append(list, LocalizeService(ts, lang))
	}

	if err := s.cache.SetJSON(ctx, key, list); err != nil {
		logger.WithContext(ctx).Warn("Catalog cache write failed", "error", err, "key", key)
	}
	return list, nil
}

func (s *CatalogService) GetService(ctx context.Context, id int64, lang string) (*models.LocalizedService, error) {
	lang = i18n.NormalizeLang(lang)
	ts, err := s.services.GetTranslated(ctx, id, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if ts == nil || !ts.Actif {
		return nil, apperrors.NotFound("service")
	}
	out := LocalizeService(*ts, lang)
	return &out, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	var cached []models.ServiceCategory
	if hit, err := s.cache.GetJSON(ctx, categoriesCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	list, err := s.services.ListCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if list == nil {
		list = []models.ServiceCategory{}
	}
	if err := s.cache.SetJSON(ctx, categoriesCacheKey, list); err != nil {
		logger.WithContext(ctx).Warn("Catalog cache write failed", "error", err, "key", categoriesCacheKey)
	}
	return list, nil
}

// ListAllServices is the admin view, inactive services included.
func (s *CatalogService) ListAllServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.services.ListTranslated(ctx, i18n.DefaultLanguage, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	list := make([]models.Service, 0, len(rows))
	for _, ts := range rows {
		list = append(list, ts.Service)
	}
	return list, nil
}

func (s *CatalogService) CreateService(ctx context.Context, req *models.ServiceRequest) (*models.Service, error) {
	svc := &models.Service{}
	if err := applyServiceRequest(svc, req); err != nil {
		return nil, err
	}
	if err := s.services.Create(ctx, svc); err != nil {
		if database.IsMissingReference(err) {
			return nil, apperrors.Invalid("unknown categorie_id")
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	s.invalidate(ctx)
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, id int64, req *models.ServiceRequest) (*models.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil {
		return nil, apperrors.NotFound("service")
	}
	if err := applyServiceRequest(svc, req); err != nil {
		return nil, err
	}

	if _, err := s.services.Update(ctx, svc); err != nil {
		if database.IsMissingReference(err) {
			return nil, apperrors.Invalid("unknown categorie_id")
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	s.invalidate(ctx)
	return svc, nil
}

// DeleteService hides the service. Past reservations keep pointing at it.
func (s *CatalogService) DeleteService(ctx context.Context, id int64) error {
	ok, err := s.services.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if !ok {
		return apperrors.NotFound("service")
	}
	s.invalidate(ctx)
	return nil
}

func applyServiceRequest(svc *models.Service, req *models.ServiceRequest) error {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return apperrors.Invalid("nom is required")
	}
	if req.Prix < 0 {
		return apperrors.Invalid("prix cannot be negative")
	}
	if req.Duree <= 0 {
		return apperrors.Invalid("duree must be positive")
	}
	svc.Nom = nom
	svc.Description = req.Description
	svc.Prix = req.Prix
	svc.Duree = req.Duree
	svc.CategorieID = req.CategorieID
	svc.Populaire = models.BoolOr(req.Populaire, svc.Populaire)
	svc.Actif = models.BoolOr(req.Actif, svc.ID == 0 || svc.Actif)
	return nil
}

func (s *CatalogService) ListTranslations(ctx context.Context, serviceID int64) ([]models.ServiceTranslation, error) {
	list, err := s.services.ListTranslations(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	if list == nil {
		list = []models.ServiceTranslation{}
	}
	return list, nil
}

func (s *CatalogService) UpsertTranslation(ctx context.Context, serviceID int64, lang string, req *models.TranslationRequest) (*models.ServiceTranslation, error) {
	lang = strings.ToLower(lang)
	if !i18n.IsSupported(lang) {
		return nil, apperrors.Invalid(fmt.Sprintf("unsupported language %q", lang))
	}
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil {
		return nil, apperrors.NotFound("service")
	}

	t := &models.ServiceTranslation{
		ServiceID:    serviceID,
		LanguageCode: lang,
		Nom:          req.Nom,
		Description:  req.Description,
	}
	if err := s.services.UpsertTranslation(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save translation: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *CatalogService) DeleteTranslation(ctx context.Context, serviceID int64, lang string) error {
	ok, err := s.services.DeleteTranslation(ctx, serviceID, strings.ToLower(lang))
	if err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	if !ok {
		return apperrors.NotFound("translation")
	}
	s.invalidate(ctx)
	return nil
}

// ListAllCategories is the admin view, inactive categories included.
func (s *CatalogService) ListAllCategories(ctx context.Context) ([]models.ServiceCategory, error) {
	list, err := s.services.ListCategories(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if list == nil {
		list = []models.ServiceCategory{}
	}
	return list, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.ServiceCategory, error) {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return nil, apperrors.Invalid("nom is required")
	}
	c := &models.ServiceCategory{
		Nom:            nom,
		Description:    req.Description,
		CouleurTheme:   req.CouleurTheme,
		OrdreAffichage: req.OrdreAffichage,
		Actif:          models.BoolOr(req.Actif, true),
	}
	if err := s.services.CreateCategory(ctx, c); err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, apperrors.Conflict("a category with this name already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req *models.CategoryRequest) (*models.ServiceCategory, error) {
	c, err := s.services.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("category")
	}
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return nil, apperrors.Invalid("nom is required")
	}

	c.Nom = nom
	c.Description = req.Description
	c.CouleurTheme = req.CouleurTheme
	c.OrdreAffichage = req.OrdreAffichage
	c.Actif = models.BoolOr(req.Actif, c.Actif)

	if _, err := s.services.UpdateCategory(ctx, c); err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, apperrors.Conflict("a category with this name already exists")
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	ok, err := s.services.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !ok {
		return apperrors.NotFound("category")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, servicesCachePrefix); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate services cache", "error", err)
	}
	if err := s.cache.DeletePrefix(ctx, categoriesCacheKey); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate categories cache", "error", err)
	}
}
