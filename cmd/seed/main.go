package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/config"
	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/internal/db"
	"github.com/kasbino/kasbino-backend/pkg/util"
)

// Imports a business directory from an XLSX export.
// Expected columns: name, category, city, district, address, phone, description.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	businessRepo := repository.NewBusinessRepository(db.GetDB())

	owner, err := importOwner(db.GetDB())
	if err != nil {
		log.Fatal("Failed to prepare import owner:", err)
	}

	categories, err := categoriesBySlug(repository.NewCategoryRepository(db.GetDB()))
	if err != nil {
		log.Fatal("Failed to load categories:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	businesses, skipped, err := readBusinessesFromXLSX(filePath, owner.ID, categories)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total businesses to import: %d (skipped %d rows)\n", len(businesses), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := businessRepo.BulkCreate(businesses, batchSize); err != nil {
		log.Fatal("Failed to bulk create businesses:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total businesses imported: %d\n", len(businesses))
}

// importOwner returns the system account that owns imported rows.
func importOwner(gdb *gorm.DB) (*model.User, error) {
	var owner model.User
	err := gdb.Where("username = ?", "kasbino-import").First(&owner).Error
	if err == nil {
		return &owner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := util.HashPassword("import-" + util.Slugify(os.Getenv("JWT_SECRET")))
	if err != nil {
		return nil, err
	}

	owner = model.User{
		Username:     "kasbino-import",
		Email:        "import@kasbino.ir",
		PasswordHash: hash,
		Name:         "واردات داده",
		Role:         model.RoleAdmin,
	}
	if err := gdb.Create(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

func categoriesBySlug(categoryRepo repository.CategoryRepository) (map[string]uint, error) {
	categories, err := categoryRepo.FindAll()
	if err != nil {
		return nil, err
	}

	index := make(map[string]uint, len(categories))
	for _, c := range categories {
		index[c.Slug] = c.ID
		index[c.Name] = c.ID
	}
	return index, nil
}

func readBusinessesFromXLSX(filePath string, ownerID uint, categories map[string]uint) ([]model.Business, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var businesses []model.Business
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 3 {
			skipped++
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		categoryName := strings.TrimSpace(cell(row, 1))
		city := strings.TrimSpace(cell(row, 2))
		district := strings.TrimSpace(cell(row, 3))
		address := strings.TrimSpace(cell(row, 4))
		phone := strings.TrimSpace(cell(row, 5))
		description := strings.TrimSpace(cell(row, 6))

		if name == "" || city == "" {
			skipped++
			continue
		}

		// drop duplicate (name, city) rows within the file
		dedupeKey := name + "|" + city
		if seen[dedupeKey] {
			skipped++
			continue
		}
		seen[dedupeKey] = true

		business := model.Business{
			OwnerID:     ownerID,
			Name:        name,
			City:        city,
			District:    district,
			Address:     address,
			Phone:       phone,
			Description: description,
			IsApproved:  true, // imported listings are pre-vetted
		}
		if categoryID, ok := categories[categoryName]; ok {
			business.CategoryID = &categoryID
		}

		businesses = append(businesses, business)
	}

	return businesses, skipped, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
