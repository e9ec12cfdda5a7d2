package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/cache"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/i18n"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
)

type MembershipService struct {
	memberships *repository.MembershipRepository
	cache       *cache.Cache
}

func NewMembershipService(memberships *repository.MembershipRepository, c *cache.Cache) *MembershipService {
	return &MembershipService{memberships: memberships, cache: c}
}

func LocalizeMembership(tm repository.TranslatedMembership, lang string) models.LocalizedMembership {
	return models.LocalizedMembership{
		ID:              tm.ID,
		Nom:             i18n.Fallback(tm.TrNom, tm.Nom),
		Description:     i18n.FallbackPtr(tm.TrDescription, tm.Description),
		PrixMensuel:     tm.PrixMensuel,
		Prix3Mois:       tm.Prix3Mois,
		ServicesParMois: tm.ServicesParMois,
		Avantages:       i18n.FallbackPtr(tm.TrAvantages, tm.Avantages),
		Language:        lang,
	}
}

// List returns the active plans in the requested language.
func (s *MembershipService) List(ctx context.Context, lang string) ([]models.LocalizedMembership, error) {
	lang = i18n.NormalizeLang(lang)
	key := membershipCachePrefix + lang

	var cached []models.LocalizedMembership
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.memberships.ListTranslated(ctx, lang, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	list := make([]models.LocalizedMembership, 0, len(rows))
	for _, tm := range rows {
		list = append(list, LocalizeMembership(tm, lang))
	}

	if err := s.cache.SetJSON(ctx, key, list); err != nil {
		logger.WithContext(ctx).Warn("Membership cache write failed", "error", err, "key", key)
	}
	return list, nil
}

func (s *MembershipService) ListAll(ctx context.Context) ([]models.Membership, error) {
	rows, err := s.memberships.ListTranslated(ctx, i18n.DefaultLanguage, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	list := make([]models.Membership, 0, len(rows))
	for _, tm := range rows {
		list = append(list, tm.Membership)
	}
	return list, nil
}

func applyMembershipRequest(m *models.Membership, req *models.MembershipRequest) error {
	nom := strings.TrimSpace(req.Nom)
	if nom == "" {
		return apperrors.Invalid("nom is required")
	}
	if req.PrixMensuel < 0 || (req.Prix3Mois != nil && *req.Prix3Mois < 0) {
		return apperrors.Invalid("prices cannot be negative")
	}
	if req.ServicesParMois < 0 {
		return apperrors.Invalid("services_par_mois cannot be negative")
	}
	m.Nom = nom
	m.Description = req.Description
	m.PrixMensuel = req.PrixMensuel
	m.Prix3Mois = req.Prix3Mois
	m.ServicesParMois = req.ServicesParMois
	m.Avantages = req.Avantages
	m.Actif = models.BoolOr(req.Actif, m.ID == 0 || m.Actif)
	return nil
}

func (s *MembershipService) Create(ctx context.Context, req *models.MembershipRequest) (*models.Membership, error) {
	m := &models.Membership{}
	if err := applyMembershipRequest(m, req); err != nil {
		return nil, err
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *MembershipService) Update(ctx context.Context, id int64, req *models.MembershipRequest) (*models.Membership, error) {
	m, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil {
		return nil, apperrors.NotFound("membership")
	}
	if err := applyMembershipRequest(m, req); err != nil {
		return nil, err
	}
	if _, err := s.memberships.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}
	s.invalidate(ctx)
	return m, nil
}

// Delete removes the plan and, through the foreign key, its translations.
func (s *MembershipService) Delete(ctx context.Context, id int64) error {
	ok, err := s.memberships.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if !ok {
		return apperrors.NotFound("membership")
	}
	s.invalidate(ctx)
	return nil
}

func (s *MembershipService) ListTranslations(ctx context.Context, id int64) ([]models.MembershipTranslation, error) {
	m, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil {
		return nil, apperrors.NotFound("membership")
	}
	list, err := s.memberships.ListTranslations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list translations: %w", err)
	}
	return list, nil
}

func (s *MembershipService) UpsertTranslation(ctx context.Context, id int64, lang string, req *models.TranslationRequest) (*models.MembershipTranslation, error) {
	lang = strings.ToLower(lang)
	if !i18n.IsSupported(lang) {
		return nil, apperrors.Invalid(fmt.Sprintf("unsupported language %q", lang))
	}
	m, err := s.memberships.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if m == nil {
		return nil, apperrors.NotFound("membership")
	}

	t := &models.MembershipTranslation{
		MembershipID: id,
		LanguageCode: lang,
		Nom:          req.Nom,
		Description:  req.Description,
		Avantages:    req.Avantages,
	}
	if err := s.memberships.UpsertTranslation(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save translation: %w", err)
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *MembershipService) DeleteTranslation(ctx context.Context, id int64, lang string) error {
	ok, err := s.memberships.DeleteTranslation(ctx, id, strings.ToLower(lang))
	if err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	if !ok {
		return apperrors.NotFound("translation")
	}
	s.invalidate(ctx)
	return nil
}

func (s *MembershipService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, membershipCachePrefix); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate membership cache", "error", err)
	}
}
