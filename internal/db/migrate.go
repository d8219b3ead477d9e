package db

import (
	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/pkg/logger"
	"github.com/kasbino/kasbino-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Category{},
		&model.Business{},
		&model.BusinessImage{},
		&model.BusinessService{},
		&model.BusinessHours{},
		&model.BusinessRating{},
		&model.Conversation{},
		&model.Message{},
		&model.ContactMessage{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Database migrations completed", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedCategories inserts the default category set once.
func seedCategories() error {
	var count int64
	if err := DB.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names := []string{
		"رستوران و کافه",
		"فروشگاه",
		"خدمات خودرو",
		"آرایشی و بهداشتی",
		"پزشکی و سلامت",
		"آموزش",
		"خدمات ساختمانی",
		"املاک",
		"ورزش و تفریح",
		"خدمات دیجیتال",
	}

	for _, name := range names {
		category := model.Category{Name: name, Slug: util.Slugify(name)}
		if err := DB.Create(&category).Error; err != nil {
			return err
		}
	}

	logger.Info("Seeded default categories", map[string]interface{}{
		"count": len(names),
	})
	return nil
}
