package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool accepts true/false as JSON booleans, strings or numbers (admin forms send "1"/"on")
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on", "oui":
		*fb = true
	case "false", "0", "no", "off", "non", "":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// BoolOr returns the value or def when unset
func BoolOr(fb *FlexibleBool, def bool) bool {
	if fb == nil {
		return def
	}
	return fb.Bool()
}

// Page is a paginated list
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// CheckAvailabilityRequest - payload of POST /api/reservations/check-availability
type CheckAvailabilityRequest struct {
	ServiceIDs           []int64 `json:"service_ids"`
	ServiceID            *int64  `json:"service_id"`
	DateReservation      string  `json:"date_reservation" binding:"required"`
	HeureDebut           string  `json:"heure_debut" binding:"required"`
	ExcludeReservationID *int64  `json:"exclude_reservation_id"`
}

// Services returns the requested ids, accepting the legacy single service_id
func (r *CheckAvailabilityRequest) Services() []int64 {
	if len(r.ServiceIDs) > 0 {
		return r.ServiceIDs
	}
	if r.ServiceID != nil {
		return []int64{*r.ServiceID}
	}
	return nil
}

type AvailabilityResponse struct {
	Available     bool          `json:"available"`
	HeureFin      string        `json:"heure_fin"`
	TotalDuration int           `json:"total_duration"`
	Conflicts     []SlotBooking `json:"conflicts,omitempty"`
	Reason        string        `json:"reason,omitempty"`
}

// CreateReservationRequest - guest or logged-in booking
type CreateReservationRequest struct {
	ServiceIDs      []int64 `json:"service_ids"`
	ServiceID       *int64  `json:"service_id"`
	DateReservation string  `json:"date_reservation" binding:"required"`
	HeureDebut      string  `json:"heure_debut" binding:"required"`
	ClientNom       string  `json:"client_nom"`
	ClientPrenom    string  `json:"client_prenom"`
	ClientEmail     string  `json:"client_email"`
	ClientTelephone string  `json:"client_telephone"`
	Notes           *string `json:"notes"`
	ReferralCode    string  `json:"referral_code"`
	SessionID       string  `json:"session_id"`
}

func (r *CreateReservationRequest) Services() []int64 {
	if len(r.ServiceIDs) > 0 {
		return r.ServiceIDs
	}
	if r.ServiceID != nil {
		return []int64{*r.ServiceID}
	}
	return nil
}

type AddServiceRequest struct {
	ServiceID int64   `json:"service_id" binding:"required"`
	ItemType  string  `json:"item_type"`
	Notes     *string `json:"notes"`
}

type UpdateStatusRequest struct {
	Statut string `json:"statut" binding:"required"`
}

type ReservationFilter struct {
	Date     string
	Statut   string
	ClientID *int64
	Page     int
	PageSize int
}

type SignupRequest struct {
	Nom            string  `json:"nom" binding:"required"`
	Prenom         string  `json:"prenom" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Telephone      *string `json:"telephone"`
	MotDePasse     string  `json:"mot_de_passe" binding:"required,min=8"`
	LanguePreferee string  `json:"langue_preferee"`
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	MotDePasse string `json:"mot_de_passe" binding:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Client    *Client   `json:"client,omitempty"`
	Admin     *Admin    `json:"admin,omitempty"`
}

// UpdateProfileRequest - nil fields are left untouched
type UpdateProfileRequest struct {
	Nom            *string `json:"nom"`
	Prenom         *string `json:"prenom"`
	Telephone      *string `json:"telephone"`
	DateNaissance  *string `json:"date_naissance"`
	Adresse        *string `json:"adresse"`
	LanguePreferee *string `json:"langue_preferee"`
}

type ClientFilter struct {
	Search   string
	Actif    *bool
	Page     int
	PageSize int
}

// LocalizedService - service as displayed in the requested language
type LocalizedService struct {
	ID           int64   `json:"id"`
	Nom          string  `json:"nom"`
	Description  *string `json:"description"`
	Prix         float64 `json:"prix"`
	Duree        int     `json:"duree"`
	CategorieID  *int64  `json:"categorie_id"`
	CategorieNom *string `json:"categorie_nom,omitempty"`
	Populaire    bool    `json:"populaire"`
	Language     string  `json:"language"`
}

type ServiceRequest struct {
	Nom         string        `json:"nom" binding:"required"`
	Description *string       `json:"description"`
	Prix        float64       `json:"prix" binding:"gte=0"`
	Duree       int           `json:"duree" binding:"required,gt=0"`
	CategorieID *int64        `json:"categorie_id"`
	Populaire   *FlexibleBool `json:"populaire"`
	Actif       *FlexibleBool `json:"actif"`
}

type CategoryRequest struct {
	Nom            string        `json:"nom" binding:"required"`
	Description    *string       `json:"description"`
	CouleurTheme   *string       `json:"couleur_theme"`
	OrdreAffichage int           `json:"ordre_affichage"`
	Actif          *FlexibleBool `json:"actif"`
}

type TranslationRequest struct {
	Nom         *string `json:"nom"`
	Description *string `json:"description"`
	Avantages   *string `json:"avantages"`
}

type LocalizedMembership struct {
	ID              int64    `json:"id"`
	Nom             string   `json:"nom"`
	Description     *string  `json:"description"`
	PrixMensuel     float64  `json:"prix_mensuel"`
	Prix3Mois       *float64 `json:"prix_3_mois"`
	ServicesParMois int      `json:"services_par_mois"`
	Avantages       *string  `json:"avantages"`
	Language        string   `json:"language"`
}

type MembershipRequest struct {
	Nom             string        `json:"nom" binding:"required"`
	Description     *string       `json:"description"`
	PrixMensuel     float64       `json:"prix_mensuel" binding:"gte=0"`
	Prix3Mois       *float64      `json:"prix_3_mois"`
	ServicesParMois int           `json:"services_par_mois"`
	Avantages       *string       `json:"avantages"`
	Actif           *FlexibleBool `json:"actif"`
}

type ValidateReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

type ValidateReferralResponse struct {
	Valid              bool    `json:"valid"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
	Message            string  `json:"message,omitempty"`
}

type CreateReferralRequest struct {
	Code               string     `json:"code"`
	OwnerClientID      *int64     `json:"owner_client_id"`
	DiscountPercentage float64    `json:"discount_percentage" binding:"required,gt=0,lte=100"`
	MaxUses            *int       `json:"max_uses"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

type ProductFilter struct {
	Query       string
	CategorieID *int64
	Page        int
	PageSize    int
}

type ProductRequest struct {
	Nom                   string        `json:"nom" binding:"required"`
	Description           *string       `json:"description"`
	Prix                  float64       `json:"prix" binding:"gte=0"`
	CategorieID           *int64        `json:"categorie_id"`
	ImageURL              *string       `json:"image_url"`
	EstimatedDeliveryDays int           `json:"estimated_delivery_days"`
	Actif                 *FlexibleBool `json:"actif"`
}

type ProductCategoryRequest struct {
	Nom         string        `json:"nom" binding:"required"`
	Description *string       `json:"description"`
	Actif       *FlexibleBool `json:"actif"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantite  int   `json:"quantite"`
}

// CreateOrderRequest - pre-order placed from the store
type CreateOrderRequest struct {
	ClientNom        string             `json:"client_nom"`
	ClientEmail      string             `json:"client_email"`
	ClientTelephone  *string            `json:"client_telephone"`
	AdresseLivraison *string            `json:"adresse_livraison"`
	Notes            *string            `json:"notes"`
	Items            []OrderItemRequest `json:"items"`
}

type OrderFilter struct {
	Statut   string
	Page     int
	PageSize int
}

type JotFormSubmissionRequest struct {
	SessionID     string         `json:"session_id"`
	ReservationID *int64         `json:"reservation_id"`
	Answers       map[string]any `json:"answers" binding:"required"`
}

type LinkSubmissionRequest struct {
	ReservationID int64 `json:"reservation_id" binding:"required"`
}

// DashboardStats - admin dashboard counters
type DashboardStats struct {
	ReservationsToday    int            `json:"reservations_today"`
	ReservationsUpcoming int            `json:"reservations_upcoming"`
	ReservationsByStatus map[string]int `json:"reservations_by_status"`
	RevenueMonth         float64        `json:"revenue_month"`
	ClientsCount         int            `json:"clients_count"`
	PendingStoreOrders   int            `json:"pending_store_orders"`
	TopServices          []ServiceCount `json:"top_services"`
}

type ServiceCount struct {
	ServiceID int64  `json:"service_id"`
	Nom       string `json:"nom"`
	Count     int    `json:"count"`
}
