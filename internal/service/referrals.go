package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultReferralDiscount = 10
	codeAttempts            = 3
)

type ReferralService struct {
	referrals *repository.ReferralRepository
	clients   *repository.ClientRepository
	now       func() time.Time
}

func NewReferralService(referrals *repository.ReferralRepository, clients *repository.ClientRepository) *ReferralService {
	return &ReferralService{referrals: referrals, clients: clients, now: time.Now}
}

// checkReferral returns a validation error when code cannot be redeemed by clientID at now.
func checkReferral(code *models.ReferralCode, clientID *int64, now time.Time) error {
	if code == nil {
		return apperrors.Invalid("referral code does not exist")
	}
	if !code.IsActive {
		return apperrors.Invalid("referral code is no longer active")
	}
	if code.ExpiresAt != nil && !now.Before(*code.ExpiresAt) {
		return apperrors.Invalid("referral code has expired")
	}
	if code.MaxUses != nil && code.CurrentUses >= *code.MaxUses {
		return apperrors.Invalid("referral code has reached its usage limit")
	}
	if clientID != nil && code.OwnerClientID != nil && *clientID == *code.OwnerClientID {
		return apperrors.Invalid("you cannot use your own referral code")
	}
	return nil
}

// Validate checks a code before booking. Redemption itself happens when the reservation is created.
func (s *ReferralService) Validate(ctx context.Context, code string, clientID *int64) (*models.ValidateReferralResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperrors.Invalid("code is required")
	}
	rc, err := s.referrals.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if rc == nil {
		return nil, apperrors.NotFound("referral code")
	}
	if err := checkReferral(rc, clientID, s.now()); err != nil {
		return nil, err
	}
	return &models.ValidateReferralResponse{
		Valid:              true,
		Code:               rc.Code,
		DiscountPercentage: rc.DiscountPercentage,
	}, nil
}

// GenerateCode derives a readable code from a first name plus a random suffix.
func GenerateCode(prenom string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(prenom) {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == 5 {
			break
		}
	}
	if b.Len() == 0 {
		b.WriteString("ZEN")
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:5])
	return b.String() + suffix
}

// GetOrCreateOwn returns the client's code, creating one on first request.
func (s *ReferralService) GetOrCreateOwn(ctx context.Context, clientID int64) (*models.ReferralCode, error) {
	existing, err := s.referrals.GetByOwner(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client")
	}

	code := &models.ReferralCode{
		OwnerClientID:      &clientID,
		DiscountPercentage: defaultReferralDiscount,
		IsActive:           true,
	}
	if err := s.insertWithFreshCode(ctx, code, client.Prenom); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *ReferralService) insertWithFreshCode(ctx context.Context, code *models.ReferralCode, seed string) error {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code.Code = GenerateCode(seed)
		err := s.referrals.Create(ctx, code)
		if err == nil {
			return nil
		}
		if !database.IsDuplicateEntry(err) {
			return fmt.Errorf("failed to create referral code: %w", err)
		}
	}
	return fmt.Errorf("failed to generate a unique referral code after %d attempts", codeAttempts)
}

func (s *ReferralService) List(ctx context.Context) ([]models.ReferralCode, error) {
	list, err := s.referrals.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referral codes: %w", err)
	}
	if list == nil {
		list = []models.ReferralCode{}
	}
	return list, nil
}

func (s *ReferralService) Create(ctx context.Context, req *models.CreateReferralRequest) (*models.ReferralCode, error) {
	if req.DiscountPercentage <= 0 || req.DiscountPercentage > 100 {
		return nil, apperrors.Invalid("discount_percentage must be between 0 and 100")
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, apperrors.Invalid("max_uses must be at least 1")
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, apperrors.Invalid("expires_at must be in the future")
	}

	code := &models.ReferralCode{
		OwnerClientID:      req.OwnerClientID,
		DiscountPercentage: req.DiscountPercentage,
		MaxUses:            req.MaxUses,
		ExpiresAt:          req.ExpiresAt,
		IsActive:           true,
	}

	custom := strings.ToUpper(strings.TrimSpace(req.Code))
	if custom == "" {
		if err := s.insertWithFreshCode(ctx, code, "ZEN"); err != nil {
			return nil, err
		}
		return code, nil
	}

	code.Code = custom
	if err := s.referrals.Create(ctx, code); err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, apperrors.Conflict("this referral code already exists")
		}
		if database.IsMissingReference(err) {
			return nil, apperrors.Invalid("unknown owner_client_id")
		}
		return nil, fmt.Errorf("failed to create referral code: %w", err)
	}
	return code, nil
}

func (s *ReferralService) Deactivate(ctx context.Context, id int64) error {
	ok, err := s.referrals.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate referral code: %w", err)
	}
	if !ok {
		return apperrors.NotFound("referral code")
	}
	return nil
}

func (s *ReferralService) Usages(ctx context.Context, id int64) ([]models.ReferralUsage, error) {
	code, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral code: %w", err)
	}
	if code == nil {
		return nil, apperrors.NotFound("referral code")
	}
	list, err := s.referrals.ListUsages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list usages: %w", err)
	}
	if list == nil {
		list = []models.ReferralUsage{}
	}
	return list, nil
}
