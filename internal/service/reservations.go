package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/availability"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	apperrors "github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/errors"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/metrics"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/pricing"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
)

const dateLayout = "2006-01-02"

// allowedTransitions lists the statuses reachable from each status. Terminal statuses are absent.
var allowedTransitions = map[string][]string{
	models.StatutEnAttente: {models.StatutConfirmee, models.StatutAnnulee},
	models.StatutConfirmee: {models.StatutTerminee, models.StatutAnnulee, models.StatutNoShow},
}

type ReservationService struct {
	db           *database.DB
	reservations *repository.ReservationRepository
	services     *repository.ServiceRepository
	clients      *repository.ClientRepository
	referrals    *repository.ReferralRepository
	jotform      *repository.JotFormRepository
	publisher    messaging.Publisher
	hours        availability.Hours
	now          func() time.Time
}

func NewReservationService(db *database.DB, repos *repository.Repositories, publisher messaging.Publisher, hours availability.Hours) *ReservationService {
	return &ReservationService{
		db:           db,
		reservations: repos.Reservations,
		services:     repos.Services,
		clients:      repos.Clients,
		referrals:    repos.Referrals,
		jotform:      repos.JotForm,
		publisher:    publisher,
		hours:        hours,
		now:          time.Now,
	}
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func validateServiceIDs(ids []int64) error {
	if len(ids) == 0 {
		return apperrors.Invalid("at least one service is required")
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return apperrors.Invalid(fmt.Sprintf("invalid service id %d", id))
		}
		if seen[id] {
			return apperrors.Invalid(fmt.Sprintf("service %d is listed twice", id))
		}
		seen[id] = true
	}
	return nil
}

func parseSlot(date, heureDebut string) (availability.Clock, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, apperrors.Invalid("date_reservation must be YYYY-MM-DD")
	}
	start, err := availability.ParseClock(heureDebut)
	if err != nil {
		return 0, apperrors.Invalid("heure_debut must be HH:MM")
	}
	return start, nil
}

// orderedServices resolves ids keeping the requested order. Unknown or inactive services fail.
func (s *ReservationService) orderedServices(ctx context.Context, q repository.Querier, ids []int64) ([]models.Service, error) {
	byID, err := s.services.GetByIDs(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	list := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFound(fmt.Sprintf("service %d", id))
		}
		if !svc.Actif {
			return nil, apperrors.Invalid(fmt.Sprintf("service %d is not available for booking", id))
		}
		list = append(list, svc)
	}
	return list, nil
}

// evaluate runs the interval check of a candidate slot against the bookings of its day.
func (s *ReservationService) evaluate(start availability.Clock, durations []int, slots []models.SlotBooking) (*models.AvailabilityResponse, error) {
	ranges := make([]availability.TimeRange, 0, len(slots))
	for _, slot := range slots {
		r, err := slotRange(slot)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	res, err := availability.Check(start, durations, ranges, s.hours)
	if errors.Is(err, availability.ErrPastMidnight) {
		return nil, apperrors.Invalid("the reservation would end after midnight")
	}
	if err != nil {
		return nil, apperrors.Invalid(err.Error())
	}

	out := &models.AvailabilityResponse{
		Available:     res.Available,
		HeureFin:      res.HeureFin,
		TotalDuration: res.TotalDuration,
		Reason:        res.Reason,
	}
	if len(res.Conflicts) > 0 {
		end, _ := availability.ParseClock(res.HeureFin)
		candidate := availability.TimeRange{Start: start, End: end}
		for i, slot := range slots {
			if availability.Overlaps(candidate, ranges[i]) {
				out.Conflicts = append(out.Conflicts, slot)
			}
		}
	}
	return out, nil
}

func slotRange(slot models.SlotBooking) (availability.TimeRange, error) {
	start, err := availability.ParseClock(slot.HeureDebut)
	if err != nil {
		return availability.TimeRange{}, fmt.Errorf("reservation %d has a bad heure_debut: %w", slot.ID, err)
	}
	end, err := availability.ParseClock(slot.HeureFin)
	if err != nil {
		return availability.TimeRange{}, fmt.Errorf("reservation %d has a bad heure_fin: %w", slot.ID, err)
	}
	return availability.TimeRange{Start: start, End: end}, nil
}

func durationsOf(services []models.Service) []int {
	d := make([]int, len(services))
	for i, svc := range services {
		d[i] = svc.Duree
	}
	return d
}

// CheckAvailability answers whether the requested services fit at the given date and time.
func (s *ReservationService) CheckAvailability(ctx context.Context, req *models.CheckAvailabilityRequest) (*models.AvailabilityResponse, error) {
	ids := req.Services()
	if err := validateServiceIDs(ids); err != nil {
		return nil, err
	}
	start, err := parseSlot(req.DateReservation, req.HeureDebut)
	if err != nil {
		return nil, err
	}

	services, err := s.orderedServices(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	slots, err := s.reservations.ListBlockingOnDate(ctx, s.db, req.DateReservation, req.ExcludeReservationID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	resp, err := s.evaluate(start, durationsOf(services), slots)
	if err != nil {
		return nil, err
	}

	metrics.AvailabilityChecks.WithLabelValues(metrics.AvailabilityResult(resp.Available)).Inc()
	return resp, nil
}

// Create books the requested services for a guest or a logged-in client.
func (s *ReservationService) Create(ctx context.Context, req *models.CreateReservationRequest, clientID *int64) (*models.Reservation, error) {
	ids := req.Services()
	if err := validateServiceIDs(ids); err != nil {
		return nil, err
	}
	start, err := parseSlot(req.DateReservation, req.HeureDebut)
	if err != nil {
		return nil, err
	}
	if req.DateReservation < s.now().Format(dateLayout) {
		return nil, apperrors.Invalid("date_reservation is in the past")
	}

	res := &models.Reservation{
		ClientID:        clientID,
		DateReservation: req.DateReservation,
		HeureDebut:      start.String(),
		Statut:          models.StatutEnAttente,
		ClientNom:       strings.TrimSpace(req.ClientNom),
		ClientPrenom:    strings.TrimSpace(req.ClientPrenom),
		ClientEmail:     strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientTelephone: strings.TrimSpace(req.ClientTelephone),
		Notes:           req.Notes,
	}
	if req.SessionID != "" {
		res.SessionID = &req.SessionID
	}
	if err := s.fillContact(ctx, res); err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		services, err := s.orderedServices(ctx, tx, ids)
		if err != nil {
			return err
		}

		// Lock the day so two bookings cannot take the same slot
		slots, err := s.reservations.ListBlockingOnDate(ctx, tx, req.DateReservation, nil, true)
		if err != nil {
			return fmt.Errorf("failed to load reservations: %w", err)
		}
		check, err := s.evaluate(start, durationsOf(services), slots)
		if err != nil {
			return err
		}
		if !check.Available {
			return apperrors.Unavailable(check.Reason)
		}

		var code *models.ReferralCode
		if c := strings.TrimSpace(req.ReferralCode); c != "" {
			code, err = s.referrals.GetByCodeForUpdate(ctx, tx, strings.ToUpper(c))
			if err != nil {
				return fmt.Errorf("failed to load referral code: %w", err)
			}
			if err := checkReferral(code, clientID, s.now()); err != nil {
				return err
			}
			res.ReductionPourcentage = code.DiscountPercentage
			res.ReferralCodeID = &code.ID
		}

		prices := make([]float64, len(services))
		for i, svc := range services {
			prices[i] = svc.Prix
		}
		totals, err := pricing.Compute(prices, res.ReductionPourcentage)
		if err != nil {
			return apperrors.Invalid(err.Error())
		}

		res.HeureFin = check.HeureFin
		res.PrixServices = totals.PrixServices
		res.PrixFinal = totals.PrixFinal
		res.ServiceID = &services[0].ID

		if err := s.reservations.Create(ctx, tx, res); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		for i, svc := range services {
			item := &models.ReservationItem{
				ReservationID: res.ID,
				ServiceID:     svc.ID,
				ItemType:      models.ItemTypeAddon,
				Prix:          svc.Prix,
			}
			if i == 0 {
				item.ItemType = models.ItemTypeMain
			}
			if err := s.reservations.InsertItem(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to add service %d: %w", svc.ID, err)
			}
		}

		if code != nil {
			usage := &models.ReferralUsage{
				ReferralCodeID: code.ID,
				UsedByClientID: clientID,
				ReservationID:  &res.ID,
				DiscountAmount: totals.Reduction,
			}
			if err := s.referrals.Redeem(ctx, tx, usage); err != nil {
				return fmt.Errorf("failed to redeem referral code: %w", err)
			}
		}

		if res.SessionID != nil {
			if _, err := s.jotform.LinkSession(ctx, tx, *res.SessionID, res.ID); err != nil {
				return fmt.Errorf("failed to link waiver: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.reservations.GetByID(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reservation: %w", err)
	}

	metrics.ReservationsCreated.Inc()
	logger.WithContext(ctx).Info("Reservation created",
		"reservation_id", created.ID,
		"date", created.DateReservation,
		"heure_debut", created.HeureDebut,
		"services", len(created.Items))
	publish(ctx, s.publisher, models.EventReservationCreated, models.NewReservationEvent(created))

	return created, nil
}

// fillContact completes the contact fields from the client account, or checks a guest gave enough.
func (s *ReservationService) fillContact(ctx context.Context, res *models.Reservation) error {
	if res.ClientID != nil {
		client, err := s.clients.GetByID(ctx, *res.ClientID)
		if err != nil {
			return fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return apperrors.ErrUnauthorized
		}
		if res.ClientNom == "" {
			res.ClientNom = client.Nom
		}
		if res.ClientPrenom == "" {
			res.ClientPrenom = client.Prenom
		}
		if res.ClientEmail == "" {
			res.ClientEmail = client.Email
		}
		if res.ClientTelephone == "" && client.Telephone != nil {
			res.ClientTelephone = *client.Telephone
		}
		return nil
	}

	if res.ClientNom == "" {
		return apperrors.Invalid("client_nom is required")
	}
	if res.ClientEmail == "" && res.ClientTelephone == "" {
		return apperrors.Invalid("client_email or client_telephone is required")
	}
	return nil
}

// Get returns a reservation to a caller allowed to see it. Others get a not found.
func (s *ReservationService) Get(ctx context.Context, id int64, access models.ReservationAccess) (*models.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil || !access.Allows(res) {
		return nil, apperrors.NotFound("reservation")
	}
	return res, nil
}

func (s *ReservationService) ListForClient(ctx context.Context, clientID int64) ([]models.Reservation, error) {
	list, err := s.reservations.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	if list == nil {
		list = []models.Reservation{}
	}
	return list, nil
}

// Cancel lets a client cancel one of their upcoming reservations.
func (s *ReservationService) Cancel(ctx context.Context, id, clientID int64) (*models.Reservation, error) {
	var res *models.Reservation
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = s.reservations.GetForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to lock reservation: %w", err)
		}
		if res == nil || res.ClientID == nil || *res.ClientID != clientID {
			return apperrors.NotFound("reservation")
		}
		if res.Statut == models.StatutAnnulee {
			return apperrors.Conflict("reservation is already cancelled")
		}
		if !CanTransition(res.Statut, models.StatutAnnulee) {
			return apperrors.Conflict(fmt.Sprintf("a %s reservation cannot be cancelled", res.Statut))
		}
		if s.hasStarted(res) {
			return apperrors.Invalid("past reservations cannot be cancelled")
		}
		return s.setStatus(ctx, tx, res, models.StatutAnnulee)
	})
	if err != nil {
		return nil, err
	}

	previous := res.Statut
	res.Statut = models.StatutAnnulee
	metrics.ReservationsCancelled.Inc()

	event := models.NewReservationEvent(res)
	event.PreviousStatut = previous
	publish(ctx, s.publisher, models.EventReservationCancelled, event)

	return res, nil
}

func (s *ReservationService) hasStarted(res *models.Reservation) bool {
	startsAt, err := time.ParseInLocation(dateLayout+" 15:04", res.DateReservation+" "+res.HeureDebut, time.Local)
	if err != nil {
		return false
	}
	return !startsAt.After(s.now())
}

// AddService appends a service to a reservation and rewrites its end time and price.
func (s *ReservationService) AddService(ctx context.Context, id int64, access models.ReservationAccess, req *models.AddServiceRequest) (*models.Reservation, error) {
	itemType := req.ItemType
	if itemType == "" {
		itemType = models.ItemTypeAddon
	}
	if itemType != models.ItemTypeMain && itemType != models.ItemTypeAddon {
		return nil, apperrors.Invalid("item_type must be main or addon")
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := s.lockMutable(ctx, tx, id, access)
		if err != nil {
			return err
		}

		for _, it := range res.Items {
			if it.ServiceID == req.ServiceID {
				return apperrors.Conflict("service is already part of the reservation")
			}
			if itemType == models.ItemTypeMain && it.ItemType == models.ItemTypeMain {
				return apperrors.Conflict("the reservation already has a main service")
			}
		}

		services, err := s.orderedServices(ctx, tx, []int64{req.ServiceID})
		if err != nil {
			return err
		}
		svc := services[0]

		durations := make([]int, 0, len(res.Items)+1)
		for _, it := range res.Items {
			durations = append(durations, it.Duree)
		}
		durations = append(durations, svc.Duree)

		// The longer slot must still fit around the other bookings of the day
		start, err := availability.ParseClock(res.HeureDebut)
		if err != nil {
			return fmt.Errorf("reservation %d has a bad heure_debut: %w", res.ID, err)
		}
		slots, err := s.reservations.ListBlockingOnDate(ctx, tx, res.DateReservation, &res.ID, true)
		if err != nil {
			return fmt.Errorf("failed to load reservations: %w", err)
		}
		check, err := s.evaluate(start, durations, slots)
		if err != nil {
			return err
		}
		if !check.Available {
			return apperrors.Unavailable(check.Reason)
		}

		// A legacy booking keeps its service as the main item
		for i := range res.Items {
			if res.Items[i].ID != 0 {
				continue
			}
			if err := s.reservations.InsertItem(ctx, tx, &res.Items[i]); err != nil {
				return fmt.Errorf("failed to convert legacy service: %w", err)
			}
		}

		item := models.ReservationItem{
			ReservationID: res.ID,
			ServiceID:     svc.ID,
			ServiceNom:    svc.Nom,
			ItemType:      itemType,
			Prix:          svc.Prix,
			Duree:         svc.Duree,
			Notes:         req.Notes,
		}
		if err := s.reservations.InsertItem(ctx, tx, &item); err != nil {
			return fmt.Errorf("failed to add service: %w", err)
		}
		res.Items = append(res.Items, item)

		return s.rewriteAggregates(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndPublish(ctx, id)
}

// RemoveService drops a service from a reservation. The last one cannot be removed.
func (s *ReservationService) RemoveService(ctx context.Context, id, serviceID int64, access models.ReservationAccess) (*models.Reservation, error) {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := s.lockMutable(ctx, tx, id, access)
		if err != nil {
			return err
		}

		idx := -1
		for i, it := range res.Items {
			if it.ServiceID == serviceID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.NotFound("service on this reservation")
		}
		if len(res.Items) == 1 {
			return apperrors.Invalid("cannot remove the last service of a reservation")
		}

		deleted, err := s.reservations.DeleteItem(ctx, tx, id, serviceID)
		if err != nil {
			return fmt.Errorf("failed to remove service: %w", err)
		}
		if !deleted {
			return apperrors.NotFound("service on this reservation")
		}

		res.Items = append(res.Items[:idx], res.Items[idx+1:]...)
		return s.rewriteAggregates(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}

	return s.reloadAndPublish(ctx, id)
}

func (s *ReservationService) lockMutable(ctx context.Context, tx *sql.Tx, id int64, access models.ReservationAccess) (*models.Reservation, error) {
	res, err := s.reservations.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock reservation: %w", err)
	}
	if res == nil || !access.Allows(res) {
		return nil, apperrors.NotFound("reservation")
	}
	if !res.IsMutable() {
		return nil, apperrors.Conflict(fmt.Sprintf("a %s reservation cannot be modified", res.Statut))
	}
	return res, nil
}

// rewriteAggregates recomputes heure_fin and prices from the current items and stores them.
func (s *ReservationService) rewriteAggregates(ctx context.Context, tx *sql.Tx, res *models.Reservation) error {
	start, err := availability.ParseClock(res.HeureDebut)
	if err != nil {
		return fmt.Errorf("reservation %d has a bad heure_debut: %w", res.ID, err)
	}

	durations := make([]int, len(res.Items))
	prices := make([]float64, len(res.Items))
	for i, it := range res.Items {
		durations[i] = it.Duree
		prices[i] = it.Prix
	}

	end, err := availability.EndOf(start, availability.SumDurations(durations))
	if err != nil {
		return apperrors.Invalid("the reservation would end after midnight")
	}
	totals, err := pricing.Compute(prices, res.ReductionPourcentage)
	if err != nil {
		return fmt.Errorf("failed to price reservation: %w", err)
	}

	res.HeureFin = end.String()
	res.PrixServices = totals.PrixServices
	res.PrixFinal = totals.PrixFinal
	res.ServiceID = &res.Items[0].ServiceID
	for _, it := range res.Items {
		if it.ItemType == models.ItemTypeMain {
			res.ServiceID = &it.ServiceID
			break
		}
	}

	if err := s.reservations.UpdateAggregates(ctx, tx, res); err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if res.ReferralCodeID != nil {
		if err := s.referrals.UpdateUsageDiscount(ctx, tx, res.ID, totals.Reduction); err != nil {
			return fmt.Errorf("failed to update referral discount: %w", err)
		}
	}
	return nil
}

func (s *ReservationService) reloadAndPublish(ctx context.Context, id int64) (*models.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reservation: %w", err)
	}
	if res == nil {
		return nil, apperrors.NotFound("reservation")
	}

	publish(ctx, s.publisher, models.EventReservationUpdated, models.NewReservationEvent(res))
	return res, nil
}

func (s *ReservationService) List(ctx context.Context, f models.ReservationFilter) (*models.Page[models.Reservation], error) {
	if f.Date != "" {
		if _, err := time.Parse(dateLayout, f.Date); err != nil {
			return nil, apperrors.Invalid("date must be YYYY-MM-DD")
		}
	}
	list, total, err := s.reservations.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return pageOf(list, total, f.Page, f.PageSize), nil
}

// UpdateStatus moves a reservation along the status workflow.
func (s *ReservationService) UpdateStatus(ctx context.Context, id int64, statut string) (*models.Reservation, error) {
	switch statut {
	case models.StatutEnAttente, models.StatutConfirmee, models.StatutAnnulee, models.StatutTerminee, models.StatutNoShow:
	default:
		return nil, apperrors.Invalid(fmt.Sprintf("unknown statut %q", statut))
	}

	var (
		res     *models.Reservation
		changed bool
	)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = s.reservations.GetForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to lock reservation: %w", err)
		}
		if res == nil {
			return apperrors.NotFound("reservation")
		}
		if res.Statut == statut {
			return nil
		}
		if !CanTransition(res.Statut, statut) {
			return apperrors.Conflict(fmt.Sprintf("cannot move a reservation from %s to %s", res.Statut, statut))
		}
		changed = true
		return s.setStatus(ctx, tx, res, statut)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return res, nil
	}

	previous := res.Statut
	res.Statut = statut

	event := models.NewReservationEvent(res)
	event.PreviousStatut = previous
	subject := models.EventReservationStatusChanged
	if statut == models.StatutAnnulee {
		metrics.ReservationsCancelled.Inc()
		subject = models.EventReservationCancelled
	}
	publish(ctx, s.publisher, subject, event)

	return res, nil
}

// setStatus writes the new status inside tx. A cancelled booking gives its referral use back.
func (s *ReservationService) setStatus(ctx context.Context, tx *sql.Tx, res *models.Reservation, statut string) error {
	if err := s.reservations.UpdateStatus(ctx, tx, res.ID, statut); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if statut != models.StatutAnnulee || res.ReferralCodeID == nil {
		return nil
	}
	if err := s.referrals.Release(ctx, tx, res.ID); err != nil {
		return fmt.Errorf("failed to release referral code: %w", err)
	}
	return nil
}

// CompleteEnded marks confirmed reservations whose end has passed as terminee.
func (s *ReservationService) CompleteEnded(ctx context.Context, batchSize int) (int, error) {
	ended, err := s.reservations.ListEndedConfirmed(ctx, s.now(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list ended reservations: %w", err)
	}

	completed := 0
	for i := range ended {
		res := &ended[i]
		ok, err := s.reservations.UpdateStatusFrom(ctx, s.db, res.ID, models.StatutConfirmee, models.StatutTerminee)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to complete reservation",
				"error", err,
				"reservation_id", res.ID)
			continue
		}
		if !ok {
			// changed by someone else since it was listed
			continue
		}
		completed++
		metrics.ReservationsCompleted.Inc()

		event := models.NewReservationEvent(res)
		event.PreviousStatut = res.Statut
		event.Statut = models.StatutTerminee
		publish(ctx, s.publisher, models.EventReservationStatusChanged, event)
	}
	return completed, nil
}
