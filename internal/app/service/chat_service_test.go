package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kasbino/kasbino-backend/internal/app/model"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/internal/db"
	"github.com/kasbino/kasbino-backend/internal/websocket"
)

type chatTestFixture struct {
	db       *gorm.DB
	svc      ChatService
	owner    *model.User
	visitor  *model.User
	stranger *model.User
	business *model.Business
}

func setupChatServiceTest(t *testing.T) *chatTestFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	owner := &model.User{
		Username:     "owner",
		Email:        "owner@example.com",
		PasswordHash: "hashed",
		Name:         "علی",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(owner).Error)

	visitor := &model.User{
		Username:     "visitor",
		Email:        "visitor@example.com",
		PasswordHash: "hashed",
		Name:         "مریم",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(visitor).Error)

	stranger := &model.User{
		Username:     "stranger",
		Email:        "stranger@example.com",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(stranger).Error)

	business := &model.Business{
		OwnerID:    owner.ID,
		Name:       "Cafe Roma",
		Slug:       "cafe-roma",
		City:       "تهران",
		IsApproved: true,
	}
	require.NoError(t, testDB.Create(business).Error)

	svc := NewChatService(
		repository.NewChatRepository(testDB),
		repository.NewBusinessRepository(testDB),
		repository.NewUserRepository(testDB),
		websocket.NewHub(),
	)
	return &chatTestFixture{
		db:       testDB,
		svc:      svc,
		owner:    owner,
		visitor:  visitor,
		stranger: stranger,
		business: business,
	}
}

func TestChatService_OpenConversation(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)
	assert.Equal(t, f.business.ID, conversation.BusinessID)
	assert.Equal(t, f.visitor.ID, conversation.UserID)

	// opening again returns the same thread
	again, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)
	assert.Equal(t, conversation.ID, again.ID)
}

func TestChatService_OpenConversation_OwnBusiness(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	_, err := f.svc.OpenConversation(f.owner.ID, "cafe-roma")
	assert.ErrorIs(t, err, ErrChatWithOwnBusiness)
}

func TestChatService_OpenConversation_UnknownBusiness(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	_, err := f.svc.OpenConversation(f.visitor.ID, "missing")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestChatService_SendMessage(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)

	view, err := f.svc.SendMessage(f.visitor.ID, conversation.ID, "سلام", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), view.Seq)
	assert.Equal(t, "سلام", view.Content)
	assert.Nil(t, view.FileURL)
	assert.Nil(t, view.FileType)
	assert.Equal(t, "visitor", view.Sender)
	assert.Equal(t, "Cafe Roma", view.BusinessName)
	assert.Equal(t, "cafe-roma", view.BusinessSlug)
	assert.True(t, view.IsSent)
	assert.Len(t, view.CreatedAt, 5) // HH:MM

	// the owner replies and sequence keeps growing
	reply, err := f.svc.SendMessage(f.owner.ID, conversation.ID, "بفرمایید", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), reply.Seq)
	assert.Equal(t, "owner", reply.Sender)
}

func TestChatService_SendMessage_ThirdPartyDenied(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)

	_, err = f.svc.SendMessage(f.stranger.ID, conversation.ID, "سلام", nil)
	assert.ErrorIs(t, err, ErrConversationAccess)
}

func TestChatService_SendMessage_Empty(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)

	_, err = f.svc.SendMessage(f.visitor.ID, conversation.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChatService_SendMessage_Attachments(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)

	tests := []struct {
		name        string
		contentType string
		size        int64
		wantType    string
		wantErr     error
	}{
		{"jpeg image", "image/jpeg", 1024, "image", nil},
		{"mp4 video", "video/mp4", 1024, "video", nil},
		{"pdf document", "application/pdf", 1024, "application", nil},
		{"missing content type", "", 1024, "file", nil},
		{"audio rejected", "audio/mpeg", 1024, "", ErrInvalidAttachment},
		{"text rejected", "text/plain", 1024, "", ErrInvalidAttachment},
		{"too large", "image/png", maxAttachmentSize + 1, "", ErrAttachmentTooLarge},
		{"at the limit", "image/png", maxAttachmentSize, "image", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.svc.SendMessage(f.visitor.ID, conversation.ID, "", &AttachmentInput{
				FileURL:     "https://files.example.com/a",
				FileName:    "a",
				ContentType: tt.contentType,
				Size:        tt.size,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, view.FileType)
			assert.Equal(t, tt.wantType, *view.FileType)
			require.NotNil(t, view.FileURL)
			assert.Equal(t, "https://files.example.com/a", *view.FileURL)
		})
	}
}

func TestChatService_GetMessages(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)

	for _, content := range []string{"اول", "دوم", "سوم"} {
		_, err := f.svc.SendMessage(f.visitor.ID, conversation.ID, content, nil)
		require.NoError(t, err)
	}

	views, err := f.svc.GetMessages(f.owner.ID, conversation.ID, 0)
	require.NoError(t, err)
	require.Len(t, views, 3)
	for i, view := range views {
		assert.Equal(t, uint64(i+1), view.Seq)
		assert.False(t, view.IsSent)
	}

	// only messages past the cursor come back
	tail, err := f.svc.GetMessages(f.owner.ID, conversation.ID, 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "سوم", tail[0].Content)

	_, err = f.svc.GetMessages(f.stranger.ID, conversation.ID, 0)
	assert.ErrorIs(t, err, ErrConversationAccess)
}

func TestChatService_ListConversations(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(f.visitor.ID, conversation.ID, "سلام", nil)
	require.NoError(t, err)

	forOwner, err := f.svc.ListConversations(f.owner.ID)
	require.NoError(t, err)
	require.Len(t, forOwner, 1)
	assert.Equal(t, "cafe-roma", forOwner[0].BusinessSlug)
	assert.Equal(t, int64(1), forOwner[0].UnreadCount)

	forVisitor, err := f.svc.ListConversations(f.visitor.ID)
	require.NoError(t, err)
	require.Len(t, forVisitor, 1)
	assert.Equal(t, int64(0), forVisitor[0].UnreadCount)

	forStranger, err := f.svc.ListConversations(f.stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, forStranger)
}

func TestChatService_CanAccess(t *testing.T) {
	f := setupChatServiceTest(t)
	defer db.CleanupTestDB(f.db)

	conversation, err := f.svc.OpenConversation(f.visitor.ID, "cafe-roma")
	require.NoError(t, err)

	for _, tt := range []struct {
		name   string
		userID uint
		want   bool
	}{
		{"visitor", f.visitor.ID, true},
		{"owner", f.owner.ID, true},
		{"stranger", f.stranger.ID, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.svc.CanAccess(tt.userID, conversation.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
