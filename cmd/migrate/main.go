package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/config"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
)

const usage = `usage: migrate <command>

commands:
  up           create missing tables
  preorder     convert the store to pre-orders (drops stock_quantity)
  permissions  add admin permissions and fill role defaults
  inspect      print the columns of the store tables`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, db, os.Args[1]); err != nil {
		logger.Fatal("Migration failed", "command", os.Args[1], "error", err)
	}
}

func run(ctx context.Context, db *database.DB, command string) error {
	switch command {
	case "up":
		return db.RunMigrations()
	case "preorder":
		return db.RunPreorderMigration(ctx)
	case "permissions":
		return db.RunPermissionsMigration(ctx)
	case "inspect":
		columns, err := db.InspectStore(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TABLE\tCOLUMN\tTYPE\tNULLABLE\tDEFAULT")
		for _, c := range columns {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", c.Table, c.Column, c.Type, c.Nullable, c.Default)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}
