package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"cheflink/internal/config"
	"cheflink/internal/database"
	"cheflink/internal/logger"
	"cheflink/internal/migrations"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.New(cfg.LogLevel, "console", os.Stderr)

	// Initialize database
	db, err := database.Initialize(database.Options{URL: cfg.DatabaseURL(), LogLevel: logger.GormLevel(cfg.LogLevel)})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	runErr := initSchema(db, os.Stdout)
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("database initialization failed")
	}

	fmt.Println("Database initialization completed successfully!")
}

// initSchema creates or updates the orders table, keeping existing rows, and
// prints the resulting columns.
func initSchema(db *gorm.DB, out io.Writer) error {
	if err := migrations.RunMigrations(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	columns, err := migrations.DescribeOrders(db)
	if err != nil {
		return fmt.Errorf("inspect orders table: %w", err)
	}
	return renderColumns(out, columns)
}

func renderColumns(out io.Writer, columns []migrations.Column) error {
	table := tablewriter.NewWriter(out)
	table.Header("Column", "Type", "Nullable", "Primary Key")
	for _, col := range columns {
		if err := table.Append([]string{col.Name, col.Type, col.Nullable, strconv.FormatBool(col.Primary)}); err != nil {
			return fmt.Errorf("render schema: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	return nil
}
