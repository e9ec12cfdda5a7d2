package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/i18n"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)

type AuthService struct {
	clients   *repository.ClientRepository
	admins    *repository.AdminRepository
	tokens    *auth.TokenManager
	publisher messaging.Publisher
}

func NewAuthService(clients *repository.ClientRepository, admins *repository.AdminRepository, tokens *auth.TokenManager, publisher messaging.Publisher) *AuthService {
	return &AuthService{
		clients:   clients,
		admins:    admins,
		tokens:    tokens,
		publisher: publisher,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified client account and publishes client.registered
// so the consumers send the verification link.
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if len(req.MotDePasse) < 8 {
		return nil, apperrors.Invalid("mot_de_passe must be at least 8 characters")
	}

	existing, err := s.clients.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("an account already exists for this email")
	}

	hash, err := HashPassword(req.MotDePasse)
	if err != nil {
		return nil, err
	}
	token := strings.ReplaceAll(uuid.New().String(), "-", "")

	lang := i18n.DefaultLanguage
	if req.LanguePreferee != "" {
		lang = i18n.NormalizeLang(req.LanguePreferee)
	}

	client := &models.Client{
		Nom:               strings.TrimSpace(req.Nom),
		Prenom:            strings.TrimSpace(req.Prenom),
		Email:             email,
		Telephone:         req.Telephone,
		MotDePasse:        &hash,
		TokenVerification: &token,
		LanguePreferee:    lang,
		Actif:             true,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if database.IsDuplicateEntry(err) {
			return nil, apperrors.Conflict("an account already exists for this email")
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.WithContext(ctx).Info("Client registered", "client_id", client.ID)
	publish(ctx, s.publisher, models.EventClientRegistered, models.ClientRegisteredEvent{
		ClientID:          client.ID,
		Email:             client.Email,
		Prenom:            client.Prenom,
		TokenVerification: token,
		Timestamp:         time.Now(),
	})

	signed, expiresAt, err := s.tokens.IssueClient(client.ID, client.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{Token: signed, ExpiresAt: expiresAt, Client: client}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.Invalid("token is required")
	}
	client, err := s.clients.GetByVerificationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to look up token: %w", err)
	}
	if client == nil {
		return apperrors.Invalid("verification link is invalid or already used")
	}
	if err := s.clients.MarkVerified(ctx, client.ID); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	client, err := s.clients.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil || client.MotDePasse == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*client.MotDePasse), []byte(req.MotDePasse)); err != nil {
		return nil, errInvalidCredentials
	}
	if !client.Actif {
		return nil, fmt.Errorf("%w: account is disabled", apperrors.ErrForbidden)
	}

	signed, expiresAt, err := s.tokens.IssueClient(client.ID, client.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{Token: signed, ExpiresAt: expiresAt, Client: client}, nil
}

func (s *AuthService) AdminLogin(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}
	if admin == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.MotDePasse), []byte(req.MotDePasse)); err != nil {
		return nil, errInvalidCredentials
	}
	if !admin.Actif {
		return nil, fmt.Errorf("%w: account is disabled", apperrors.ErrForbidden)
	}

	signed, expiresAt, err := s.tokens.IssueAdmin(admin.ID, admin.Email, admin.Role, admin.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	logger.WithContext(ctx).Info("Admin logged in", "admin_id", admin.ID, "role", admin.Role)
	return &models.AuthResponse{Token: signed, ExpiresAt: expiresAt, Admin: admin}, nil
}

func (s *AuthService) Profile(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client")
	}
	return client, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, clientID int64, req *models.UpdateProfileRequest) (*models.Client, error) {
	client, err := s.Profile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(client, req); err != nil {
		return nil, err
	}
	if err := s.clients.UpdateProfile(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return client, nil
}

// applyProfile copies the non-nil fields of req onto c.
func applyProfile(c *models.Client, req *models.UpdateProfileRequest) error {
	if req.Nom != nil {
		nom := strings.TrimSpace(*req.Nom)
		if nom == "" {
			return apperrors.Invalid("nom cannot be empty")
		}
		c.Nom = nom
	}
	if req.Prenom != nil {
		prenom := strings.TrimSpace(*req.Prenom)
		if prenom == "" {
			return apperrors.Invalid("prenom cannot be empty")
		}
		c.Prenom = prenom
	}
	if req.Telephone != nil {
		c.Telephone = req.Telephone
	}
	if req.DateNaissance != nil {
		if *req.DateNaissance == "" {
			c.DateNaissance = nil
		} else {
			if _, err := time.Parse(dateLayout, *req.DateNaissance); err != nil {
				return apperrors.Invalid("date_naissance must be YYYY-MM-DD")
			}
			c.DateNaissance = req.DateNaissance
		}
	}
	if req.Adresse != nil {
		c.Adresse = req.Adresse
	}
	if req.LanguePreferee != nil {
		if !i18n.IsSupported(*req.LanguePreferee) {
			return apperrors.Invalid(fmt.Sprintf("unsupported language %q", *req.LanguePreferee))
		}
		c.LanguePreferee = strings.ToLower(*req.LanguePreferee)
	}
	return nil
}
