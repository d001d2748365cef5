package db

import (
	"context"
	"fmt"
	"time"
	"yatube/internal/config"
	"yatube/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects to Postgres, migrates the schema and seeds default groups.
func Init(cfg *config.Config) error {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if !cfg.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	zap.L().Info("Database connection established")

	if err := Migrate(conn); err != nil {
		return err
	}
	DB = conn
	return nil
}

// Migrate creates or updates every table and seeds the initial groups.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	zap.L().Info("Database migration completed")

	return seedGroups(conn)
}

func seedGroups(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Group{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.L().Debug("Groups already seeded, skipping")
		return nil
	}

	groups := []models.Group{
		{Title: "Лев Толстой – зеркало русской революции", Slug: "leo", Description: "Группа, посвящённая творчеству Льва Толстого"},
		{Title: "Путешествия", Slug: "travel", Description: "Заметки и фотографии из поездок"},
		{Title: "Кошки", Slug: "cats", Description: "Всё о котиках"},
	}

	for _, group := range groups {
		if err := conn.Create(&group).Error; err != nil {
			zap.L().Warn("Failed to create group", zap.String("slug", group.Slug), zap.Error(err))
		}
	}
	zap.L().Info("Initial groups created successfully")
	return nil
}
