// Package validation runs an end-to-end smoke scenario against a running API.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/availability"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const (
	daysAhead    = 30
	firstHour    = 9
	lastHour     = 17
	botEmail     = "validation@zenshe.test"
	priceEpsilon = 0.005
)

// guestQuery proves ownership of the guest booking made with botEmail
var guestQuery = "?email=" + url.QueryEscape(botEmail)

// APIValidator exercises the multi-service reservation flow
type APIValidator struct {
	baseURL    string
	adminToken string
	client     *http.Client
}

func NewAPIValidator(baseURL string) *APIValidator {
	return &APIValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithAdminToken lets the validator cancel the reservation it created.
func (v *APIValidator) WithAdminToken(token string) *APIValidator {
	v.adminToken = token
	return v
}

// ValidateAll: create -> add service -> check aggregates -> remove -> check restored -> availability conflict.
func (v *APIValidator) ValidateAll(ctx context.Context) error {
	slog.Info("Starting API validation", "base_url", v.baseURL)

	first, second, err := v.pickServices(ctx)
	if err != nil {
		return fmt.Errorf("services: %w", err)
	}

	date, start, err := v.findFreeSlot(ctx, first, second)
	if err != nil {
		return fmt.Errorf("availability: %w", err)
	}

	res, err := v.createReservation(ctx, first, date, start)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	slog.Info("Reservation created", "id", res.ID, "date", date, "heure_debut", start)
	defer v.cleanup(ctx, res.ID)

	if err := expectAggregates(res, start, first); err != nil {
		return fmt.Errorf("after create: %w", err)
	}

	res, err = v.addService(ctx, res.ID, second.ID)
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}
	if err := expectAggregates(res, start, first, second); err != nil {
		return fmt.Errorf("after add: %w", err)
	}

	res, err = v.removeService(ctx, res.ID, second.ID)
	if err != nil {
		return fmt.Errorf("remove service: %w", err)
	}
	if err := expectAggregates(res, start, first); err != nil {
		return fmt.Errorf("after remove: %w", err)
	}

	avail, err := v.checkAvailability(ctx, []int64{first.ID}, date, start)
	if err != nil {
		return fmt.Errorf("availability conflict: %w", err)
	}
	if avail.Available {
		return fmt.Errorf("availability conflict: slot %s %s still reported available", date, start)
	}

	slog.Info("API validation passed", "reservation_id", res.ID)
	return nil
}

func (v *APIValidator) pickServices(ctx context.Context) (models.LocalizedService, models.LocalizedService, error) {
	var list []models.LocalizedService
	if err := v.do(ctx, http.MethodGet, "/api/services", nil, http.StatusOK, &list); err != nil {
		return models.LocalizedService{}, models.LocalizedService{}, err
	}
	if len(list) < 2 {
		return models.LocalizedService{}, models.LocalizedService{}, fmt.Errorf("need at least 2 active services, got %d", len(list))
	}
	return list[0], list[1], nil
}

// findFreeSlot looks for a start time that fits both services, so that adding the second cannot conflict.
func (v *APIValidator) findFreeSlot(ctx context.Context, first, second models.LocalizedService) (string, string, error) {
	for day := daysAhead; day < daysAhead+7; day++ {
		date := time.Now().AddDate(0, 0, day).Format("2006-01-02")
		for hour := firstHour; hour <= lastHour; hour++ {
			start := fmt.Sprintf("%02d:00", hour)
			resp, err := v.checkAvailability(ctx, []int64{first.ID, second.ID}, date, start)
			if err != nil {
				return "", "", err
			}
			if resp.Available {
				return date, start, nil
			}
		}
	}
	return "", "", fmt.Errorf("no free slot in the next %d days", daysAhead+7)
}

func (v *APIValidator) checkAvailability(ctx context.Context, ids []int64, date, start string) (*models.AvailabilityResponse, error) {
	var resp models.AvailabilityResponse
	err := v.do(ctx, http.MethodPost, "/api/reservations/check-availability", models.CheckAvailabilityRequest{
		ServiceIDs:      ids,
		DateReservation: date,
		HeureDebut:      start,
	}, http.StatusOK, &resp)
	return &resp, err
}

func (v *APIValidator) createReservation(ctx context.Context, svc models.LocalizedService, date, start string) (*models.Reservation, error) {
	var res models.Reservation
	err := v.do(ctx, http.MethodPost, "/api/reservations", models.CreateReservationRequest{
		ServiceIDs:      []int64{svc.ID},
		DateReservation: date,
		HeureDebut:      start,
		ClientNom:       "Validation",
		ClientPrenom:    "Bot",
		ClientEmail:     botEmail,
	}, http.StatusCreated, &res)
	return &res, err
}

func (v *APIValidator) addService(ctx context.Context, id, serviceID int64) (*models.Reservation, error) {
	var res models.Reservation
	path := "/api/reservations/" + strconv.FormatInt(id, 10) + "/services" + guestQuery
	err := v.do(ctx, http.MethodPost, path,
		models.AddServiceRequest{ServiceID: serviceID, ItemType: models.ItemTypeAddon}, http.StatusOK, &res)
	return &res, err
}

func (v *APIValidator) removeService(ctx context.Context, id, serviceID int64) (*models.Reservation, error) {
	var res models.Reservation
	path := fmt.Sprintf("/api/reservations/%d/services/%d", id, serviceID) + guestQuery
	err := v.do(ctx, http.MethodDelete, path, nil, http.StatusOK, &res)
	return &res, err
}

func (v *APIValidator) cleanup(ctx context.Context, id int64) {
	if v.adminToken == "" {
		slog.Info("No admin token, leaving validation reservation in place", "id", id)
		return
	}
	path := fmt.Sprintf("/api/admin/reservations/%d/status", id)
	if err := v.do(ctx, http.MethodPatch, path, models.UpdateStatusRequest{Statut: models.StatutAnnulee}, http.StatusOK, nil); err != nil {
		slog.Warn("Failed to cancel validation reservation", "id", id, "error", err)
	}
}

// expectAggregates checks the item count, heure_fin and prix_services against the given services.
func expectAggregates(res *models.Reservation, start string, services ...models.LocalizedService) error {
	if len(res.Items) != len(services) {
		return fmt.Errorf("expected %d items, got %d", len(services), len(res.Items))
	}

	total := 0.0
	durations := make([]int, 0, len(services))
	for _, s := range services {
		total += s.Prix
		durations = append(durations, s.Duree)
	}
	if math.Abs(res.PrixServices-total) > priceEpsilon {
		return fmt.Errorf("expected prix_services %.2f, got %.2f", total, res.PrixServices)
	}

	begin, err := availability.ParseClock(start)
	if err != nil {
		return err
	}
	end, err := availability.EndOf(begin, availability.SumDurations(durations))
	if err != nil {
		return err
	}
	if got, err := availability.ParseClock(res.HeureFin); err != nil || got != end {
		return fmt.Errorf("expected heure_fin %s, got %s", end, res.HeureFin)
	}
	return nil
}

func (v *APIValidator) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if v.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+v.adminToken)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s %s: expected %d, got %d: %s", method, path, wantStatus, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}
