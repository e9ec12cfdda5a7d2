package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Reservation statuses
const (
	StatutEnAttente = "en_attente"
	StatutConfirmee = "confirmee"
	StatutAnnulee   = "annulee"
	StatutTerminee  = "terminee"
	StatutNoShow    = "no_show"
)

// Reservation item types
const (
	ItemTypeMain  = "main"
	ItemTypeAddon = "addon"
)

// Store order statuses
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Admin roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEmploye    = "employe"
)

// BlockingStatuses are the reservation statuses that occupy a time slot.
var BlockingStatuses = []string{StatutEnAttente, StatutConfirmee}

// Client represents a spa customer account
type Client struct {
	ID                int64     `json:"id" db:"id"`
	Nom               string    `json:"nom" db:"nom"`
	Prenom            string    `json:"prenom" db:"prenom"`
	Email             string    `json:"email" db:"email"`
	Telephone         *string   `json:"telephone" db:"telephone"`
	MotDePasse        *string   `json:"-" db:"mot_de_passe"`
	EmailVerifie      bool      `json:"email_verifie" db:"email_verifie"`
	TokenVerification *string   `json:"-" db:"token_verification"`
	DateNaissance     *string   `json:"date_naissance" db:"date_naissance"`
	Adresse           *string   `json:"adresse" db:"adresse"`
	LanguePreferee    string    `json:"langue_preferee" db:"langue_preferee"`
	Actif             bool      `json:"actif" db:"actif"`
	DateCreation      time.Time `json:"date_creation" db:"date_creation"`
	DateModification  time.Time `json:"date_modification" db:"date_modification"`
}

// Admin represents a back-office user
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Nom          string    `json:"nom" db:"nom"`
	Email        string    `json:"email" db:"email"`
	MotDePasse   string    `json:"-" db:"mot_de_passe"`
	Role         string    `json:"role" db:"role"`
	Permissions  []string  `json:"permissions" db:"permissions"`
	Actif        bool      `json:"actif" db:"actif"`
	DateCreation time.Time `json:"date_creation" db:"date_creation"`
}

// HasPermission reports whether the admin may use the given area.
func (a *Admin) HasPermission(perm string) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range a.Permissions {
		if p == "*" || p == perm {
			return true
		}
	}
	return false
}

// ServiceCategory groups services on the public menu
type ServiceCategory struct {
	ID             int64   `json:"id" db:"id"`
	Nom            string  `json:"nom" db:"nom"`
	Description    *string `json:"description" db:"description"`
	CouleurTheme   *string `json:"couleur_theme" db:"couleur_theme"`
	OrdreAffichage int     `json:"ordre_affichage" db:"ordre_affichage"`
	Actif          bool    `json:"actif" db:"actif"`
}

// Service is a bookable treatment
type Service struct {
	ID           int64     `json:"id" db:"id"`
	Nom          string    `json:"nom" db:"nom"`
	Description  *string   `json:"description" db:"description"`
	Prix         float64   `json:"prix" db:"prix"`
	Duree        int       `json:"duree" db:"duree"`
	CategorieID  *int64    `json:"categorie_id" db:"categorie_id"`
	CategorieNom *string   `json:"categorie_nom,omitempty" db:"categorie_nom"`
	Populaire    bool      `json:"populaire" db:"populaire"`
	Actif        bool      `json:"actif" db:"actif"`
	DateCreation time.Time `json:"date_creation" db:"date_creation"`
}

type ServiceTranslation struct {
	ServiceID    int64   `json:"service_id" db:"service_id"`
	LanguageCode string  `json:"language_code" db:"language_code"`
	Nom          *string `json:"nom" db:"nom"`
	Description  *string `json:"description" db:"description"`
}

// Reservation is a booked slot. ServiceID is only set on legacy single-service rows.
type Reservation struct {
	ID                   int64             `json:"id" db:"id"`
	ClientID             *int64            `json:"client_id" db:"client_id"`
	ServiceID            *int64            `json:"service_id,omitempty" db:"service_id"`
	DateReservation      string            `json:"date_reservation" db:"date_reservation"`
	HeureDebut           string            `json:"heure_debut" db:"heure_debut"`
	HeureFin             string            `json:"heure_fin" db:"heure_fin"`
	Statut               string            `json:"statut" db:"statut"`
	PrixServices         float64           `json:"prix_services" db:"prix_services"`
	ReductionPourcentage float64           `json:"reduction_pourcentage" db:"reduction_pourcentage"`
	PrixFinal            float64           `json:"prix_final" db:"prix_final"`
	ReferralCodeID       *int64            `json:"referral_code_id,omitempty" db:"referral_code_id"`
	ClientNom            string            `json:"client_nom" db:"client_nom"`
	ClientPrenom         string            `json:"client_prenom" db:"client_prenom"`
	ClientEmail          string            `json:"client_email" db:"client_email"`
	ClientTelephone      string            `json:"client_telephone" db:"client_telephone"`
	Notes                *string           `json:"notes" db:"notes"`
	SessionID            *string           `json:"session_id,omitempty" db:"session_id"`
	DateCreation         time.Time         `json:"date_creation" db:"date_creation"`
	DateModification     time.Time         `json:"date_modification" db:"date_modification"`
	Items                []ReservationItem `json:"items"` // Not from DB, filled separately
}

// ReservationAccess is what a public caller presents for a reservation.
// Client bookings need the owner's token. Guest bookings need the session id
// they were made with or their contact email.
type ReservationAccess struct {
	ClientID  *int64
	SessionID string
	Email     string
}

func (a ReservationAccess) Allows(r *Reservation) bool {
	if r.ClientID != nil {
		return a.ClientID != nil && *a.ClientID == *r.ClientID
	}
	if a.SessionID != "" && r.SessionID != nil && *r.SessionID == a.SessionID {
		return true
	}
	email := strings.TrimSpace(a.Email)
	return email != "" && r.ClientEmail != "" && strings.EqualFold(email, r.ClientEmail)
}

// IsMutable reports whether services may still be added or removed.
func (r *Reservation) IsMutable() bool {
	switch r.Statut {
	case StatutAnnulee, StatutTerminee, StatutNoShow:
		return false
	}
	return true
}

// ReservationItem is one service inside a multi-service reservation
type ReservationItem struct {
	ID            int64     `json:"id" db:"id"`
	ReservationID int64     `json:"reservation_id" db:"reservation_id"`
	ServiceID     int64     `json:"service_id" db:"service_id"`
	ServiceNom    string    `json:"service_nom" db:"service_nom"`
	ItemType      string    `json:"item_type" db:"item_type"`
	Prix          float64   `json:"prix" db:"prix"`
	Duree         int       `json:"duree" db:"duree"`
	Notes         *string   `json:"notes" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SlotBooking is the time window of a reservation already on the calendar
type SlotBooking struct {
	ID         int64  `json:"id"`
	HeureDebut string `json:"heure_debut"`
	HeureFin   string `json:"heure_fin"`
	Statut     string `json:"statut"`
}

type ProductCategory struct {
	ID          int64   `json:"id" db:"id"`
	Nom         string  `json:"nom" db:"nom"`
	Description *string `json:"description" db:"description"`
	Actif       bool    `json:"actif" db:"actif"`
}

// Product is a store item. The store only takes pre-orders.
type Product struct {
	ID                    int64     `json:"id" db:"id"`
	Nom                   string    `json:"nom" db:"nom"`
	Description           *string   `json:"description" db:"description"`
	Prix                  float64   `json:"prix" db:"prix"`
	CategorieID           *int64    `json:"categorie_id" db:"categorie_id"`
	CategorieNom          *string   `json:"categorie_nom,omitempty" db:"categorie_nom"`
	ImageURL              *string   `json:"image_url" db:"image_url"`
	IsPreorder            bool      `json:"is_preorder" db:"is_preorder"`
	EstimatedDeliveryDays int       `json:"estimated_delivery_days" db:"estimated_delivery_days"`
	Actif                 bool      `json:"actif" db:"actif"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

type StoreOrder struct {
	ID                   int64            `json:"id" db:"id"`
	NumeroCommande       string           `json:"numero_commande" db:"numero_commande"`
	ClientID             *int64           `json:"client_id" db:"client_id"`
	ClientNom            string           `json:"client_nom" db:"client_nom"`
	ClientEmail          string           `json:"client_email" db:"client_email"`
	ClientTelephone      *string          `json:"client_telephone" db:"client_telephone"`
	AdresseLivraison     *string          `json:"adresse_livraison" db:"adresse_livraison"`
	Statut               string           `json:"statut" db:"statut"`
	Total                float64          `json:"total" db:"total"`
	DateLivraisonEstimee *string          `json:"date_livraison_estimee" db:"date_livraison_estimee"`
	Notes                *string          `json:"notes" db:"notes"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
	Items                []StoreOrderItem `json:"items,omitempty"` // Not from DB, filled separately
}

type StoreOrderItem struct {
	ID           int64   `json:"id" db:"id"`
	OrderID      int64   `json:"order_id" db:"order_id"`
	ProductID    int64   `json:"product_id" db:"product_id"`
	ProductNom   string  `json:"product_nom" db:"product_nom"`
	Quantite     int     `json:"quantite" db:"quantite"`
	PrixUnitaire float64 `json:"prix_unitaire" db:"prix_unitaire"`
	SousTotal    float64 `json:"sous_total" db:"sous_total"`
}

// Membership is a monthly subscription plan
type Membership struct {
	ID              int64     `json:"id" db:"id"`
	Nom             string    `json:"nom" db:"nom"`
	Description     *string   `json:"description" db:"description"`
	PrixMensuel     float64   `json:"prix_mensuel" db:"prix_mensuel"`
	Prix3Mois       *float64  `json:"prix_3_mois" db:"prix_3_mois"`
	ServicesParMois int       `json:"services_par_mois" db:"services_par_mois"`
	Avantages       *string   `json:"avantages" db:"avantages"`
	Actif           bool      `json:"actif" db:"actif"`
	DateCreation    time.Time `json:"date_creation" db:"date_creation"`
}

type MembershipTranslation struct {
	MembershipID int64   `json:"membership_id" db:"membership_id"`
	LanguageCode string  `json:"language_code" db:"language_code"`
	Nom          *string `json:"nom" db:"nom"`
	Description  *string `json:"description" db:"description"`
	Avantages    *string `json:"avantages" db:"avantages"`
}

type ReferralCode struct {
	ID                 int64      `json:"id" db:"id"`
	Code               string     `json:"code" db:"code"`
	OwnerClientID      *int64     `json:"owner_client_id" db:"owner_client_id"`
	DiscountPercentage float64    `json:"discount_percentage" db:"discount_percentage"`
	MaxUses            *int       `json:"max_uses" db:"max_uses"`
	CurrentUses        int        `json:"current_uses" db:"current_uses"`
	ExpiresAt          *time.Time `json:"expires_at" db:"expires_at"`
	IsActive           bool       `json:"is_active" db:"is_active"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

type ReferralUsage struct {
	ID             int64     `json:"id" db:"id"`
	ReferralCodeID int64     `json:"referral_code_id" db:"referral_code_id"`
	UsedByClientID *int64    `json:"used_by_client_id" db:"used_by_client_id"`
	ReservationID  *int64    `json:"reservation_id" db:"reservation_id"`
	DiscountAmount float64   `json:"discount_amount" db:"discount_amount"`
	UsedAt         time.Time `json:"used_at" db:"used_at"`
}

// JotFormSubmission stores waiver answers keyed by JotForm field id
type JotFormSubmission struct {
	ID            int64           `json:"id" db:"id"`
	SubmissionID  string          `json:"submission_id" db:"submission_id"`
	FormID        string          `json:"form_id" db:"form_id"`
	SessionID     *string         `json:"session_id" db:"session_id"`
	ReservationID *int64          `json:"reservation_id" db:"reservation_id"`
	Answers       json.RawMessage `json:"answers" db:"answers"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
