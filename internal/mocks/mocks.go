package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
)

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStoreMock) ByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserStoreMock) ByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserStoreMock) RecordLogin(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ListingStoreMock struct {
	mock.Mock
}

func (m *ListingStoreMock) CreateProperty(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ListingStoreMock) UpdateProperty(ctx context.Context, p *models.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ListingStoreMock) PropertyByID(ctx context.Context, id uint) (*models.Property, error) {
	args := m.Called(ctx, id)
	var p *models.Property
	if val := args.Get(0); val != nil {
		p = val.(*models.Property)
	}
	return p, args.Error(1)
}

func (m *ListingStoreMock) ListProperties(ctx context.Context, f database.PropertyFilters) (*database.PropertyPage, error) {
	args := m.Called(ctx, f)
	var page *database.PropertyPage
	if val := args.Get(0); val != nil {
		page = val.(*database.PropertyPage)
	}
	return page, args.Error(1)
}

func (m *ListingStoreMock) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *ListingStoreMock) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *ListingStoreMock) VehicleByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	var v *models.Vehicle
	if val := args.Get(0); val != nil {
		v = val.(*models.Vehicle)
	}
	return v, args.Error(1)
}

func (m *ListingStoreMock) ListVehicles(ctx context.Context, f database.VehicleFilters) (*database.VehiclePage, error) {
	args := m.Called(ctx, f)
	var page *database.VehiclePage
	if val := args.Get(0); val != nil {
		page = val.(*database.VehiclePage)
	}
	return page, args.Error(1)
}

func (m *ListingStoreMock) Resolve(ctx context.Context, ref models.ListingRef) (models.Listing, error) {
	args := m.Called(ctx, ref)
	var l models.Listing
	if val := args.Get(0); val != nil {
		l = val.(models.Listing)
	}
	return l, args.Error(1)
}

func (m *ListingStoreMock) TransitionStatus(ctx context.Context, l models.Listing, to models.ListingStatus) error {
	args := m.Called(ctx, l, to)
	return args.Error(0)
}

func (m *ListingStoreMock) SoftRemove(ctx context.Context, l models.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *ListingStoreMock) ActiveListings(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	var list []models.Listing
	if val := args.Get(0); val != nil {
		list = val.([]models.Listing)
	}
	return list, args.Error(1)
}

func (m *ListingStoreMock) ExpireStaleDrafts(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type ConversationStoreMock struct {
	mock.Mock
}

func (m *ConversationStoreMock) ByID(ctx context.Context, id string) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	var conv *models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(*models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationStoreMock) FindByTriple(ctx context.Context, buyerID, sellerID uint, ref models.ListingRef) (*models.Conversation, error) {
	args := m.Called(ctx, buyerID, sellerID, ref)
	var conv *models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(*models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationStoreMock) Create(ctx context.Context, c *models.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ConversationStoreMock) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *ConversationStoreMock) AppendMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *ConversationStoreMock) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *ConversationStoreMock) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msg *models.Message
	if val := args.Get(0); val != nil {
		msg = val.(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *ConversationStoreMock) MarkRead(ctx context.Context, conversationID string, viewerID uint) (int64, error) {
	args := m.Called(ctx, conversationID, viewerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConversationStoreMock) UnreadInConversation(ctx context.Context, conversationID string, viewerID uint) (int64, error) {
	args := m.Called(ctx, conversationID, viewerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConversationStoreMock) TotalUnread(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ConversationStoreMock) CountMessagesSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type NotificationStoreMock struct {
	mock.Mock
}

func (m *NotificationStoreMock) UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

func (m *NotificationStoreMock) PreferenceFor(ctx context.Context, userID uint) (*models.NotificationPreference, error) {
	args := m.Called(ctx, userID)
	var pref *models.NotificationPreference
	if val := args.Get(0); val != nil {
		pref = val.(*models.NotificationPreference)
	}
	return pref, args.Error(1)
}

func (m *NotificationStoreMock) Enqueue(ctx context.Context, item *models.NotificationQueue) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *NotificationStoreMock) NextPending(ctx context.Context, limit int) ([]models.NotificationQueue, error) {
	args := m.Called(ctx, limit)
	var items []models.NotificationQueue
	if val := args.Get(0); val != nil {
		items = val.([]models.NotificationQueue)
	}
	return items, args.Error(1)
}

func (m *NotificationStoreMock) Save(ctx context.Context, item *models.NotificationQueue) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *NotificationStoreMock) QueueStats(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	var stats map[string]int64
	if val := args.Get(0); val != nil {
		stats = val.(map[string]int64)
	}
	return stats, args.Error(1)
}

type ImageStoreMock struct {
	mock.Mock
}

func (m *ImageStoreMock) Add(ctx context.Context, img *models.ListingImage) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

func (m *ImageStoreMock) ByID(ctx context.Context, id uint) (*models.ListingImage, error) {
	args := m.Called(ctx, id)
	var img *models.ListingImage
	if val := args.Get(0); val != nil {
		img = val.(*models.ListingImage)
	}
	return img, args.Error(1)
}

func (m *ImageStoreMock) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ImageStoreMock) ListForListing(ctx context.Context, ref models.ListingRef) ([]models.ListingImage, error) {
	args := m.Called(ctx, ref)
	var imgs []models.ListingImage
	if val := args.Get(0); val != nil {
		imgs = val.([]models.ListingImage)
	}
	return imgs, args.Error(1)
}

func (m *ImageStoreMock) CountForListing(ctx context.Context, ref models.ListingRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

type FavoriteStoreMock struct {
	mock.Mock
}

func (m *FavoriteStoreMock) Add(ctx context.Context, userID uint, ref models.ListingRef) (*models.Favorite, error) {
	args := m.Called(ctx, userID, ref)
	var fav *models.Favorite
	if val := args.Get(0); val != nil {
		fav = val.(*models.Favorite)
	}
	return fav, args.Error(1)
}

func (m *FavoriteStoreMock) Remove(ctx context.Context, userID uint, ref models.ListingRef) error {
	args := m.Called(ctx, userID, ref)
	return args.Error(0)
}

func (m *FavoriteStoreMock) ListForUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	args := m.Called(ctx, userID)
	var favs []models.Favorite
	if val := args.Get(0); val != nil {
		favs = val.([]models.Favorite)
	}
	return favs, args.Error(1)
}

func (m *FavoriteStoreMock) UsersForListing(ctx context.Context, ref models.ListingRef) ([]uint, error) {
	args := m.Called(ctx, ref)
	var ids []uint
	if val := args.Get(0); val != nil {
		ids = val.([]uint)
	}
	return ids, args.Error(1)
}
