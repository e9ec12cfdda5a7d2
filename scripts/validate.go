package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/validation"
)

func main() {
	var baseURL, adminToken string
	flag.StringVar(&baseURL, "url", "http://localhost:5000", "Base URL for API validation")
	flag.StringVar(&adminToken, "admin-token", os.Getenv("VALIDATION_ADMIN_TOKEN"), "Admin JWT used to cancel the test reservation")
	flag.Parse()

	slog.Info("Starting API validation", "url", baseURL)

	validator := validation.NewAPIValidator(baseURL).WithAdminToken(adminToken)
	if err := validator.ValidateAll(context.Background()); err != nil {
		slog.Error("Validation failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Validation passed")
}
