package models

import (
	"strings"
	"time"
)

// NATS subjects
const (
	EventReservationCreated       = "reservation.created"
	EventReservationUpdated       = "reservation.updated"
	EventReservationCancelled     = "reservation.cancelled"
	EventReservationStatusChanged = "reservation.status_changed"
	EventClientRegistered         = "client.registered"
	EventStoreOrderCreated        = "store.order_created"
)

// ReservationEvent is published on every reservation lifecycle subject
type ReservationEvent struct {
	ReservationID   int64     `json:"reservation_id"`
	ClientID        *int64    `json:"client_id"`
	ClientEmail     string    `json:"client_email"`
	ClientNom       string    `json:"client_nom"`
	DateReservation string    `json:"date_reservation"`
	HeureDebut      string    `json:"heure_debut"`
	HeureFin        string    `json:"heure_fin"`
	Services        []string  `json:"services"`
	PrixFinal       float64   `json:"prix_final"`
	Statut          string    `json:"statut"`
	PreviousStatut  string    `json:"previous_statut,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ClientRegisteredEvent carries the link the verification email points to
type ClientRegisteredEvent struct {
	ClientID          int64     `json:"client_id"`
	Email             string    `json:"email"`
	Prenom            string    `json:"prenom"`
	TokenVerification string    `json:"token_verification"`
	Timestamp         time.Time `json:"timestamp"`
}

type StoreOrderCreatedEvent struct {
	OrderID              int64     `json:"order_id"`
	NumeroCommande       string    `json:"numero_commande"`
	ClientEmail          string    `json:"client_email"`
	ClientNom            string    `json:"client_nom"`
	Total                float64   `json:"total"`
	DateLivraisonEstimee string    `json:"date_livraison_estimee"`
	Timestamp            time.Time `json:"timestamp"`
}

// NewReservationEvent builds the event payload from a loaded reservation
func NewReservationEvent(r *Reservation) ReservationEvent {
	names := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		names = append(names, it.ServiceNom)
	}
	return ReservationEvent{
		ReservationID:   r.ID,
		ClientID:        r.ClientID,
		ClientEmail:     r.ClientEmail,
		ClientNom:       strings.TrimSpace(r.ClientPrenom + " " + r.ClientNom),
		DateReservation: r.DateReservation,
		HeureDebut:      r.HeureDebut,
		HeureFin:        r.HeureFin,
		Services:        names,
		PrixFinal:       r.PrixFinal,
		Statut:          r.Statut,
		Timestamp:       time.Now(),
	}
}
