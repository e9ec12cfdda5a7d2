package consumers

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
)

const (
	templateReservationCreated = "reservation_created"
	templateReservationStatus  = "reservation_status"
	templateVerification       = "verification"
	templateOrderConfirmation  = "order_confirmation"
)

var statusLabels = map[string]string{
	models.StatutEnAttente: "en attente de confirmation",
	models.StatutConfirmee: "confirmée",
	models.StatutAnnulee:   "annulée",
	models.StatutTerminee:  "terminée",
	models.StatutNoShow:    "marquée absente",
}

func statusLabel(statut string) string {
	if l, ok := statusLabels[statut]; ok {
		return l
	}
	return statut
}

var templates = template.Must(template.New("emails").Funcs(template.FuncMap{
	"status": statusLabel,
	"price":  func(v float64) string { return fmt.Sprintf("%.2f DT", v) },
	"join":   strings.Join,
}).Parse(`
{{define "reservation_created"}}<p>Bonjour {{.ClientNom}},</p>
<p>Nous avons bien reçu votre réservation du <strong>{{.DateReservation}}</strong> de {{.HeureDebut}} à {{.HeureFin}}.</p>
<p>Soins : {{join .Services ", "}}<br>Total : {{price .PrixFinal}}</p>
<p>Statut : {{status .Statut}}.</p>
<p>À bientôt chez ZenShe Spa.</p>{{end}}

{{define "reservation_status"}}<p>Bonjour {{.ClientNom}},</p>
<p>Votre réservation du <strong>{{.DateReservation}}</strong> à {{.HeureDebut}} est désormais {{status .Statut}}.</p>
{{if eq .Statut "annulee"}}<p>N'hésitez pas à réserver un nouveau créneau sur notre site.</p>{{end}}
<p>L'équipe ZenShe Spa</p>{{end}}

{{define "verification"}}<p>Bonjour {{.Prenom}},</p>
<p>Merci pour votre inscription. Confirmez votre adresse email en cliquant sur le lien ci-dessous :</p>
<p><a href="{{.Link}}">Vérifier mon email</a></p>{{end}}

{{define "order_confirmation"}}<p>Bonjour {{.ClientNom}},</p>
<p>Votre précommande <strong>{{.NumeroCommande}}</strong> est enregistrée.</p>
<p>Total : {{price .Total}}<br>Livraison estimée : {{.DateLivraisonEstimee}}</p>
<p>L'équipe ZenShe Spa</p>{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func reservationCreatedEmail(ev *models.ReservationEvent) (external.Email, error) {
	body, err := render(templateReservationCreated, ev)
	if err != nil {
		return external.Email{}, err
	}
	return external.Email{
		To:          []external.Contact{{Email: ev.ClientEmail, Name: ev.ClientNom}},
		Subject:     "Votre réservation ZenShe Spa du " + ev.DateReservation,
		HTMLContent: body,
		Tags:        []string{templateReservationCreated},
	}, nil
}

func reservationStatusEmail(ev *models.ReservationEvent) (external.Email, error) {
	body, err := render(templateReservationStatus, ev)
	if err != nil {
		return external.Email{}, err
	}
	return external.Email{
		To:          []external.Contact{{Email: ev.ClientEmail, Name: ev.ClientNom}},
		Subject:     "Réservation " + statusLabel(ev.Statut),
		HTMLContent: body,
		Tags:        []string{templateReservationStatus, ev.Statut},
	}, nil
}

func verificationEmail(ev *models.ClientRegisteredEvent, publicURL string) (external.Email, error) {
	link := strings.TrimRight(publicURL, "/") + "/api/auth/verify-email?token=" + ev.TokenVerification
	body, err := render(templateVerification, struct {
		Prenom string
		Link   string
	}{ev.Prenom, link})
	if err != nil {
		return external.Email{}, err
	}
	return external.Email{
		To:          []external.Contact{{Email: ev.Email, Name: ev.Prenom}},
		Subject:     "Confirmez votre adresse email",
		HTMLContent: body,
		Tags:        []string{templateVerification},
	}, nil
}

func orderConfirmationEmail(ev *models.StoreOrderCreatedEvent) (external.Email, error) {
	body, err := render(templateOrderConfirmation, ev)
	if err != nil {
		return external.Email{}, err
	}
	return external.Email{
		To:          []external.Contact{{Email: ev.ClientEmail, Name: ev.ClientNom}},
		Subject:     "Précommande " + ev.NumeroCommande,
		HTMLContent: body,
		Tags:        []string{templateOrderConfirmation},
	}, nil
}
