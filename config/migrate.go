package config

import (
	"log/slog"

	"campus_essentials/models"

	"gorm.io/gorm"
)

func schema() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.Conversation{},
		&models.ConversationMember{},
		&models.Message{},
		&models.Order{},
	}
}

func Migrate(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(schema()...); err != nil {
		log.Error("failed to migrate database schema", "err", err)
		return err
	}

	log.Info("database migrations completed")

	// Categories are reference data; keep them present on every boot.
	return SeedCategories(db, log)
}

func ResetAndMigrate(db *gorm.DB, log *slog.Logger) error {
	tables := schema()

	if err := db.Migrator().DropTable(tables...); err != nil {
		log.Error("failed to drop tables", "err", err)
		return err
	}

	log.Info("all tables dropped")

	if err := db.AutoMigrate(tables...); err != nil {
		log.Error("failed to auto migrate", "err", err)
		return err
	}

	if err := SeedCategories(db, log); err != nil {
		return err
	}

	log.Info("database reset and migration completed")
	return nil
}
