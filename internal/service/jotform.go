package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/jotform"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"

	"github.com/google/uuid"
)

const defaultFormTTL = 10 * time.Minute

// FormFetcher downloads the static HTML of a JotForm form.
type FormFetcher interface {
	FetchForm(ctx context.Context, formID string) ([]byte, error)
}

type cachedForm struct {
	form      *jotform.Form
	html      string
	fetchedAt time.Time
}

// JotFormService bridges the waiver form: it serves the parsed form and
// stores submitted answers next to the reservation they belong to.
type JotFormService struct {
	submissions  *repository.JotFormRepository
	reservations *repository.ReservationRepository
	fetcher      FormFetcher
	formID       string
	ttl          time.Duration
	now          func() time.Time

	mu     sync.Mutex
	cached *cachedForm
}

func NewJotFormService(submissions *repository.JotFormRepository, reservations *repository.ReservationRepository, fetcher FormFetcher, formID string, ttl time.Duration) *JotFormService {
	if ttl <= 0 {
		ttl = defaultFormTTL
	}
	return &JotFormService{
		submissions:  submissions,
		reservations: reservations,
		fetcher:      fetcher,
		formID:       formID,
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *JotFormService) load(ctx context.Context) (*cachedForm, error) {
	if s.formID == "" {
		return nil, fmt.Errorf("%w: waiver form is not configured", apperrors.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.cached.fetchedAt) < s.ttl {
		return s.cached, nil
	}

	raw, err := s.fetcher.FetchForm(ctx, s.formID)
	if err != nil {
		if s.cached != nil {
			logger.WithContext(ctx).Warn("JotForm fetch failed, serving stale form", "error", err)
			return s.cached, nil
		}
		return nil, fmt.Errorf("failed to fetch waiver form: %w", err)
	}

	form, err := jotform.ParseForm(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse waiver form: %w", err)
	}
	if form.ID == "" {
		form.ID = s.formID
	}
	html, err := jotform.StripBranding(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to clean waiver form: %w", err)
	}

	s.cached = &cachedForm{form: form, html: html, fetchedAt: s.now()}
	logger.WithContext(ctx).Info("Loaded waiver form", "form_id", form.ID, "fields", len(form.Fields))
	return s.cached, nil
}

// Form returns the field metadata of the waiver form.
func (s *JotFormService) Form(ctx context.Context) (*jotform.Form, error) {
	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.form, nil
}

// FormHTML returns the form markup without JotForm branding and scripts.
func (s *JotFormService) FormHTML(ctx context.Context) (string, error) {
	c, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return c.html, nil
}

// Submit stores the answers under a new submission id. The submission is
// linked to a reservation given explicitly or found through the session id.
func (s *JotFormService) Submit(ctx context.Context, req *models.JotFormSubmissionRequest) (*models.JotFormSubmission, error) {
	if len(req.Answers) == 0 {
		return nil, apperrors.Invalid("answers are required")
	}
	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, apperrors.Invalid("answers must be a JSON object")
	}

	sub := &models.JotFormSubmission{
		SubmissionID: uuid.New().String(),
		FormID:       s.formID,
		Answers:      answers,
	}
	if session := strings.TrimSpace(req.SessionID); session != "" {
		sub.SessionID = &session
	}

	if req.ReservationID != nil {
		res, err := s.reservations.GetByID(ctx, *req.ReservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get reservation: %w", err)
		}
		if res == nil {
			return nil, apperrors.NotFound("reservation")
		}
		sub.ReservationID = &res.ID
	} else if sub.SessionID != nil {
		res, err := s.reservations.FindBySessionID(ctx, s.reservations.DB(), *sub.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up session: %w", err)
		}
		if res != nil {
			sub.ReservationID = &res.ID
		}
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	logger.WithContext(ctx).Info("Waiver submission stored",
		"submission_id", sub.SubmissionID,
		"linked", sub.ReservationID != nil)
	return sub, nil
}

func (s *JotFormService) Get(ctx context.Context, submissionID string) (*models.JotFormSubmission, error) {
	sub, err := s.submissions.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NotFound("submission")
	}
	return sub, nil
}

func (s *JotFormService) Link(ctx context.Context, submissionID string, reservationID int64) (*models.JotFormSubmission, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, apperrors.NotFound("reservation")
	}

	ok, err := s.submissions.LinkReservation(ctx, submissionID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to link submission: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("submission")
	}
	return s.Get(ctx, submissionID)
}
