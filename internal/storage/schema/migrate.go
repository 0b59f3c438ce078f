package schema

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DefaultAirports = []Airport{
	{Code: "HAN", Name: "Noi Bai International Airport", City: "Ha Noi", Country: "Viet Nam"},
	{Code: "SGN", Name: "Tan Son Nhat International Airport", City: "Ho Chi Minh City", Country: "Viet Nam"},
	{Code: "DAD", Name: "Da Nang International Airport", City: "Da Nang", Country: "Viet Nam"},
	{Code: "CXR", Name: "Cam Ranh International Airport", City: "Nha Trang", Country: "Viet Nam"},
	{Code: "PQC", Name: "Phu Quoc International Airport", City: "Phu Quoc", Country: "Viet Nam"},
	{Code: "NRT", Name: "Narita International Airport", City: "Tokyo", Country: "Japan"},
	{Code: "ICN", Name: "Incheon International Airport", City: "Seoul", Country: "South Korea"},
	{Code: "BKK", Name: "Suvarnabhumi Airport", City: "Bangkok", Country: "Thailand"},
	{Code: "SIN", Name: "Singapore Changi Airport", City: "Singapore", Country: "Singapore"},
}

var DefaultTicketTypes = []TicketType{
	{Name: "Economy"},
	{Name: "Premium Economy"},
	{Name: "Business"},
	{Name: "First"},
}

// Open connects gorm to the database described by dsn.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Printf("schema migrated: %d tables", len(Models()))
	return nil
}

// Seed inserts the reference airports and ticket types. Rows that already
// exist are left untouched, so it can run on every deploy.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		airports := append([]Airport(nil), DefaultAirports...)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&airports).Error; err != nil {
			return fmt.Errorf("seed airports: %w", err)
		}

		types := append([]TicketType(nil), DefaultTicketTypes...)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error; err != nil {
			return fmt.Errorf("seed ticket types: %w", err)
		}

		log.Printf("seeded %d airports and %d ticket types", len(airports), len(types))
		return nil
	})
}
