package migrations

import (
	"cheflink/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Column describes one column of the orders table as the database reports it.
type Column struct {
	Name     string
	Type     string
	Nullable string
	Primary  bool
}

// RunMigrations creates or updates the orders table. It never drops data.
func RunMigrations(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return err
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// DescribeOrders lists the columns of the orders table.
func DescribeOrders(db *gorm.DB) ([]Column, error) {
	types, err := db.Migrator().ColumnTypes(&models.Order{})
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(types))
	for _, ct := range types {
		col := Column{Name: ct.Name(), Type: ct.DatabaseTypeName(), Nullable: "unknown"}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = "NO"
			if nullable {
				col.Nullable = "YES"
			}
		}
		if primary, ok := ct.PrimaryKey(); ok {
			col.Primary = primary
		}
		columns = append(columns, col)
	}
	return columns, nil
}
