package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/internal/db"
)

func setupBusinessServiceTest(t *testing.T) (*gorm.DB, BusinessService, *model.User, *model.Category) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	owner := &model.User{
		Username:     "owner",
		Email:        "owner@example.com",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(owner).Error)

	category := &model.Category{Name: "رستوران و کافه", Slug: "رستوران-و-کافه"}
	require.NoError(t, testDB.Create(category).Error)

	svc := NewBusinessService(
		repository.NewBusinessRepository(testDB),
		repository.NewCategoryRepository(testDB),
		repository.NewRatingRepository(testDB),
	)
	return testDB, svc, owner, category
}

func TestBusinessService_Create(t *testing.T) {
	testDB, svc, owner, category := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	business, err := svc.Create(owner.ID, CreateBusinessInput{
		Name:        "Cafe Roma",
		CategoryID:  &category.ID,
		Description: "کافه دنج",
		City:        "تهران",
		ImageURLs:   []string{"https://files.example.com/1.jpg", "https://files.example.com/2.jpg"},
		Services:    []BusinessServiceInput{{Name: "اسپرسو", Icon: "coffee"}},
		Hours: []BusinessHoursInput{
			{Days: "شنبه تا چهارشنبه", StartTime: "08:00", EndTime: "22:00"},
			{Days: "جمعه", IsClosed: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "cafe-roma", business.Slug)
	assert.False(t, business.IsApproved)

	var saved model.Business
	require.NoError(t, testDB.
		Preload("Images").Preload("Services").Preload("Hours").
		First(&saved, business.ID).Error)
	assert.Len(t, saved.Images, 2)
	assert.Len(t, saved.Services, 1)
	assert.Len(t, saved.Hours, 2)
}

func TestBusinessService_Create_SlugCollision(t *testing.T) {
	testDB, svc, owner, _ := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	first, err := svc.Create(owner.ID, CreateBusinessInput{Name: "Cafe Roma", City: "تهران"})
	require.NoError(t, err)
	second, err := svc.Create(owner.ID, CreateBusinessInput{Name: "Cafe Roma", City: "شیراز"})
	require.NoError(t, err)

	assert.Equal(t, "cafe-roma", first.Slug)
	assert.Equal(t, "cafe-roma-1", second.Slug)
}

func TestBusinessService_Create_UnknownCategory(t *testing.T) {
	testDB, svc, owner, _ := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	missing := uint(9999)
	_, err := svc.Create(owner.ID, CreateBusinessInput{Name: "Cafe Roma", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestBusinessService_List_AllSentinel(t *testing.T) {
	testDB, svc, owner, _ := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	for _, b := range []model.Business{
		{OwnerID: owner.ID, Name: "Cafe Roma", Slug: "cafe-roma", City: "تهران", IsApproved: true},
		{OwnerID: owner.ID, Name: "Cafe Vienna", Slug: "cafe-vienna", City: "شیراز", IsApproved: true},
		{OwnerID: owner.ID, Name: "Hidden", Slug: "hidden", City: "تهران", IsApproved: false},
	} {
		business := b
		require.NoError(t, testDB.Create(&business).Error)
	}

	tests := []struct {
		name   string
		cities []string
		want   int
	}{
		{"no filter", nil, 2},
		{"single city", []string{"تهران"}, 1},
		{"all clears the filter", []string{"all"}, 2},
		{"all wins over concrete values", []string{"تهران", "all"}, 2},
		{"empty values ignored", []string{""}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			businesses, err := svc.List(nil, tt.cities, "")
			require.NoError(t, err)
			assert.Len(t, businesses, tt.want)
		})
	}
}

func TestBusinessService_GetDetail_Visibility(t *testing.T) {
	testDB, svc, owner, _ := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	pending := &model.Business{
		OwnerID: owner.ID,
		Name:    "Pending",
		Slug:    "pending",
		City:    "تهران",
	}
	require.NoError(t, testDB.Create(pending).Error)

	ctx := context.Background()

	// invisible to anonymous and other users
	_, err := svc.GetDetail(ctx, "pending", 0)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	_, err = svc.GetDetail(ctx, "pending", owner.ID+1)
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	// the owner still sees it
	detail, err := svc.GetDetail(ctx, "pending", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, detail.Business.ID)
}

func TestBusinessService_GetDetail_Similar(t *testing.T) {
	testDB, svc, owner, category := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	for _, b := range []model.Business{
		{OwnerID: owner.ID, Name: "Cafe Roma", Slug: "cafe-roma", CategoryID: &category.ID, City: "تهران", IsApproved: true, Views: 10},
		{OwnerID: owner.ID, Name: "Cafe Vienna", Slug: "cafe-vienna", CategoryID: &category.ID, City: "تهران", IsApproved: true, Views: 50},
		{OwnerID: owner.ID, Name: "Cafe Prague", Slug: "cafe-prague", CategoryID: &category.ID, City: "تهران", IsApproved: true, Views: 5},
	} {
		business := b
		require.NoError(t, testDB.Create(&business).Error)
	}

	detail, err := svc.GetDetail(context.Background(), "cafe-roma", 0)
	require.NoError(t, err)
	require.Len(t, detail.Similar, 2)
	assert.Equal(t, "cafe-vienna", detail.Similar[0].Slug)
	assert.Equal(t, "cafe-prague", detail.Similar[1].Slug)

	require.NotNil(t, detail.Stats)
	assert.Equal(t, int64(0), detail.Stats.Count)
}

func TestBusinessService_GetDetail_RecentRatings(t *testing.T) {
	testDB, svc, owner, _ := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	business := &model.Business{
		OwnerID:    owner.ID,
		Name:       "Cafe Roma",
		Slug:       "cafe-roma",
		City:       "تهران",
		IsApproved: true,
	}
	require.NoError(t, testDB.Create(business).Error)

	base := time.Now().Add(-time.Hour)
	var raters []*model.User
	for i := 0; i < 5; i++ {
		rater := &model.User{
			Username:     fmt.Sprintf("rater%d", i),
			Email:        fmt.Sprintf("rater%d@example.com", i),
			PasswordHash: "hashed",
			Role:         model.RoleUser,
		}
		require.NoError(t, testDB.Create(rater).Error)
		raters = append(raters, rater)
	}

	// four approved ratings at increasing timestamps plus one pending
	for i := 0; i < 4; i++ {
		rating := &model.BusinessRating{
			BusinessID: business.ID,
			UserID:     raters[i].ID,
			Rating:     4,
			IsApproved: true,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, testDB.Create(rating).Error)
	}
	pending := &model.BusinessRating{
		BusinessID: business.ID,
		UserID:     raters[4].ID,
		Rating:     1,
		CreatedAt:  base.Add(time.Hour),
	}
	require.NoError(t, testDB.Create(pending).Error)

	detail, err := svc.GetDetail(context.Background(), "cafe-roma", 0)
	require.NoError(t, err)
	require.Len(t, detail.Ratings, 3)
	assert.Equal(t, raters[3].ID, detail.Ratings[0].UserID)
	assert.Equal(t, raters[1].ID, detail.Ratings[2].UserID)
	assert.False(t, detail.UserHasReviewed)

	// the pending author still counts as having reviewed
	detail, err = svc.GetDetail(context.Background(), "cafe-roma", raters[4].ID)
	require.NoError(t, err)
	assert.True(t, detail.UserHasReviewed)
}

func TestBusinessService_MyBusinesses(t *testing.T) {
	testDB, svc, owner, _ := setupBusinessServiceTest(t)
	defer db.CleanupTestDB(testDB)

	other := &model.User{
		Username:     "other",
		Email:        "other@example.com",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(other).Error)

	for _, b := range []model.Business{
		{OwnerID: owner.ID, Name: "Mine Approved", Slug: "mine-approved", City: "تهران", IsApproved: true},
		{OwnerID: owner.ID, Name: "Mine Pending", Slug: "mine-pending", City: "تهران"},
		{OwnerID: other.ID, Name: "Theirs", Slug: "theirs", City: "تهران", IsApproved: true},
	} {
		business := b
		require.NoError(t, testDB.Create(&business).Error)
	}

	mine, err := svc.MyBusinesses(owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
