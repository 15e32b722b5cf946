package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/resolver"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/matchpulse/betengine/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}

func runMigrations(db *database.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.TeamIntelligence{},
		&models.TeamClass{},
		&models.TeamMomentum{},
		&models.TeamNameMapping{},
		&models.TacticalCell{},
		&models.RefereeProfile{},
		&models.HeadToHead{},
		&models.MarketProfile{},
		&models.MarketTrap{},
		&models.RealityCheck{},
		&models.SharpMoneyRecord{},
		&models.OddsQuote{},
		&models.BetSnapshot{},
		&models.ModelVote{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}
	return nil
}

func dropTables(db *database.DB) error {
	// children before parents
	tables := []interface{}{
		&models.ModelVote{},
		&models.BetSnapshot{},
		&models.OddsQuote{},
		&models.SharpMoneyRecord{},
		&models.RealityCheck{},
		&models.MarketTrap{},
		&models.MarketProfile{},
		&models.HeadToHead{},
		&models.RefereeProfile{},
		&models.TacticalCell{},
		&models.TeamNameMapping{},
		&models.TeamMomentum{},
		&models.TeamClass{},
		&models.TeamIntelligence{},
	}
	for _, t := range tables {
		if err := db.Migrator().DropTable(t); err != nil {
			return err
		}
	}
	return nil
}

// seedData installs the neutral tactical cell every thin lookup falls
// back to, plus the shortform name mappings the resolver starts from.
func seedData(db *database.DB) error {
	neutral := models.NeutralTacticalCell()
	err := db.Where("style_a = ? AND style_b = ?", neutral.StyleA, neutral.StyleB).
		FirstOrCreate(neutral).Error
	if err != nil {
		return fmt.Errorf("seeding neutral tactical cell: %w", err)
	}

	mappings := []models.TeamNameMapping{
		{SourceName: "Spurs", CanonicalName: "Tottenham Hotspur", IsVerified: true},
		{SourceName: "Man Utd", CanonicalName: "Manchester United", IsVerified: true},
		{SourceName: "Man United", CanonicalName: "Manchester United", IsVerified: true},
		{SourceName: "Man City", CanonicalName: "Manchester City", IsVerified: true},
		{SourceName: "Wolves", CanonicalName: "Wolverhampton Wanderers", IsVerified: true},
		{SourceName: "Newcastle", CanonicalName: "Newcastle United", IsVerified: true},
		{SourceName: "Inter", CanonicalName: "Inter Milan", IsVerified: true},
		{SourceName: "Atletico", CanonicalName: "Atletico Madrid", IsVerified: true},
		{SourceName: "PSG", CanonicalName: "Paris Saint-Germain", IsVerified: true},
		{SourceName: "Gladbach", CanonicalName: "Borussia Monchengladbach", IsVerified: true},
		{SourceName: "Leeds", CanonicalName: "Leeds United", IsVerified: true},
		{SourceName: "West Ham", CanonicalName: "West Ham United", IsVerified: true},
	}
	for i := range mappings {
		mappings[i].NormalizedName = resolver.Normalize(mappings[i].SourceName)
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&mappings[i]).Error
		if err != nil {
			return fmt.Errorf("seeding name mapping %q: %w", mappings[i].SourceName, err)
		}
	}
	return nil
}
