package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/config"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/models"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/service"
)

var (
	dryRun        = flag.Bool("dry-run", false, "Show what would be inserted without making changes")
	adminEmail    = flag.String("admin-email", "admin@zenshe-spa.com", "Email of the seeded super admin")
	adminPassword = flag.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Password of the seeded super admin (skipped when empty)")
)

type demoService struct {
	nom, description string
	prix             float64
	duree            int
	populaire        bool
	translations     map[string][2]string
}

type demoCategory struct {
	nom, couleur string
	services     []demoService
}

var catalog = []demoCategory{
	{nom: "Hammam", couleur: "#8fb9a8", services: []demoService{
		{nom: "Hammam traditionnel", description: "Bain de vapeur et savon noir", prix: 35, duree: 45, populaire: true,
			translations: map[string][2]string{"en": {"Traditional hammam", "Steam bath with black soap"}, "ar": {"حمام تقليدي", "حمام بخار مع الصابون الأسود"}}},
		{nom: "Gommage au kessa", description: "Exfoliation complète du corps", prix: 25, duree: 30,
			translations: map[string][2]string{"en": {"Kessa scrub", "Full body exfoliation"}}},
	}},
	{nom: "Massages", couleur: "#d4a373", services: []demoService{
		{nom: "Massage relaxant", description: "Massage aux huiles essentielles", prix: 60, duree: 60, populaire: true,
			translations: map[string][2]string{"en": {"Relaxing massage", "Essential oil massage"}}},
		{nom: "Massage aux pierres chaudes", description: "Pierres volcaniques chauffées", prix: 80, duree: 75},
	}},
	{nom: "Soins du visage", couleur: "#e9c46a", services: []demoService{
		{nom: "Soin hydratant", description: "Nettoyage et masque hydratant", prix: 45, duree: 50,
			translations: map[string][2]string{"en": {"Hydrating facial", "Cleansing and hydrating mask"}}},
	}},
}

type demoProduct struct {
	nom, description string
	prix             float64
	deliveryDays     int
}

var store = map[string][]demoProduct{
	"Huiles": {
		{nom: "Huile d'argan bio", description: "Flacon 100 ml", prix: 38, deliveryDays: 7},
		{nom: "Huile de massage relaxante", description: "Lavande et amande douce", prix: 29, deliveryDays: 10},
	},
	"Accessoires": {
		{nom: "Gant kessa", description: "Gant d'exfoliation traditionnel", prix: 8, deliveryDays: 5},
		{nom: "Fouta en coton", description: "Tissage artisanal", prix: 22, deliveryDays: 14},
	},
}

type demoMembership struct {
	nom             string
	prixMensuel     float64
	prix3Mois       float64
	servicesParMois int
	avantages       string
}

var memberships = []demoMembership{
	{nom: "Zen", prixMensuel: 90, prix3Mois: 250, servicesParMois: 2, avantages: "10% sur la boutique"},
	{nom: "Sérénité", prixMensuel: 160, prix3Mois: 450, servicesParMois: 4, avantages: "Accès prioritaire et 15% sur la boutique"},
}

type Seeder struct {
	repos *repository.Repositories
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting demo catalog seed...", "dry_run", *dryRun)

	if *dryRun {
		printPlan()
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	s := &Seeder{repos: repository.NewRepositories(db)}
	if err := s.Seed(context.Background()); err != nil {
		logger.Fatal("Failed to seed catalog", "error", err)
	}

	slog.Info("Seed completed successfully!")
}

func printPlan() {
	for _, c := range catalog {
		fmt.Printf("category %q: %d services\n", c.nom, len(c.services))
	}
	for cat, products := range store {
		fmt.Printf("store category %q: %d products\n", cat, len(products))
	}
	fmt.Printf("memberships: %d\n", len(memberships))
	if *adminPassword != "" {
		fmt.Printf("super admin: %s\n", *adminEmail)
	}
}

// Seed inserts the demo data. Each part is skipped when its tables already hold rows.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedServices(ctx); err != nil {
		return fmt.Errorf("services: %w", err)
	}
	if err := s.seedStore(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := s.seedMemberships(ctx); err != nil {
		return fmt.Errorf("memberships: %w", err)
	}
	if err := s.seedAdmin(ctx); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	return nil
}

func (s *Seeder) seedServices(ctx context.Context) error {
	existing, err := s.repos.Services.ListCategories(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("Service categories already present, skipping", "count", len(existing))
		return nil
	}

	for i, c := range catalog {
		couleur := c.couleur
		cat := &models.ServiceCategory{Nom: c.nom, CouleurTheme: &couleur, OrdreAffichage: i + 1, Actif: true}
		if err := s.repos.Services.CreateCategory(ctx, cat); err != nil {
			return err
		}

		for _, d := range c.services {
			desc := d.description
			svc := &models.Service{
				Nom:         d.nom,
				Description: &desc,
				Prix:        d.prix,
				Duree:       d.duree,
				CategorieID: &cat.ID,
				Populaire:   d.populaire,
				Actif:       true,
			}
			if err := s.repos.Services.Create(ctx, svc); err != nil {
				return err
			}
			for lang, tr := range d.translations {
				nom, description := tr[0], tr[1]
				if err := s.repos.Services.UpsertTranslation(ctx, &models.ServiceTranslation{
					ServiceID:    svc.ID,
					LanguageCode: lang,
					Nom:          &nom,
					Description:  &description,
				}); err != nil {
					return err
				}
			}
		}
		slog.Info("Seeded service category", "category", c.nom, "services", len(c.services))
	}
	return nil
}

func (s *Seeder) seedStore(ctx context.Context) error {
	existing, err := s.repos.Products.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("Store categories already present, skipping", "count", len(existing))
		return nil
	}

	for name, products := range store {
		cat := &models.ProductCategory{Nom: name, Actif: true}
		if err := s.repos.Products.CreateCategory(ctx, cat); err != nil {
			return err
		}
		for _, d := range products {
			desc := d.description
			if err := s.repos.Products.Create(ctx, &models.Product{
				Nom:                   d.nom,
				Description:           &desc,
				Prix:                  d.prix,
				CategorieID:           &cat.ID,
				IsPreorder:            true,
				EstimatedDeliveryDays: d.deliveryDays,
				Actif:                 true,
			}); err != nil {
				return err
			}
		}
		slog.Info("Seeded store category", "category", name, "products", len(products))
	}
	return nil
}

func (s *Seeder) seedMemberships(ctx context.Context) error {
	existing, err := s.repos.Memberships.ListTranslated(ctx, "fr", false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("Memberships already present, skipping", "count", len(existing))
		return nil
	}

	for _, d := range memberships {
		prix3Mois, avantages := d.prix3Mois, d.avantages
		if err := s.repos.Memberships.Create(ctx, &models.Membership{
			Nom:             d.nom,
			PrixMensuel:     d.prixMensuel,
			Prix3Mois:       &prix3Mois,
			ServicesParMois: d.servicesParMois,
			Avantages:       &avantages,
			Actif:           true,
		}); err != nil {
			return err
		}
	}
	slog.Info("Seeded memberships", "count", len(memberships))
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	if *adminPassword == "" {
		slog.Info("No admin password given, skipping super admin")
		return nil
	}
	existing, err := s.repos.Admins.GetByEmail(ctx, *adminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("Super admin already present, skipping", "email", *adminEmail)
		return nil
	}

	hash, err := service.HashPassword(*adminPassword)
	if err != nil {
		return err
	}
	admin := &models.Admin{
		Nom:         "Administrateur",
		Email:       *adminEmail,
		MotDePasse:  hash,
		Role:        models.RoleSuperAdmin,
		Permissions: []string{"*"},
		Actif:       true,
	}
	if err := s.repos.Admins.Create(ctx, admin); err != nil {
		return err
	}
	slog.Info("Seeded super admin", "email", *adminEmail, "id", admin.ID)
	return nil
}
