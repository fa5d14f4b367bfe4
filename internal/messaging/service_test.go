package messaging

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/mocks"
	"marketplace-portal/internal/models"
)

func newTestService() (*Service, *mocks.ConversationStoreMock, *mocks.ListingStoreMock, *mocks.UserStoreMock, *mocks.NotificationStoreMock) {
	convs := new(mocks.ConversationStoreMock)
	listings := new(mocks.ListingStoreMock)
	users := new(mocks.UserStoreMock)
	notifs := new(mocks.NotificationStoreMock)
	return NewService(convs, listings, users, notifs), convs, listings, users, notifs
}

func propertyRef(id uint) models.ListingRef {
	return models.ListingRef{PropertyID: &id}
}

func TestStartConversationCreatesThread(t *testing.T) {
	svc, convs, listings, users, notifs := newTestService()
	ref := propertyRef(10)

	users.On("ByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil).Once()
	listings.On("Resolve", mock.Anything, ref).
		Return(&models.Property{ID: 10, OwnerID: 2, Status: models.StatusActive}, nil).Once()
	convs.On("FindByTriple", mock.Anything, uint(1), uint(2), mock.Anything).
		Return(nil, database.ErrNotFound).Once()
	convs.On("Create", mock.Anything, mock.AnythingOfType("*models.Conversation")).Return(nil).Once()
	convs.On("AppendMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil).Once()
	notifs.On("PreferenceFor", mock.Anything, uint(2)).
		Return(&models.NotificationPreference{UserID: 2, OnMessage: true}, nil).Once()
	notifs.On("Enqueue", mock.Anything, mock.AnythingOfType("*models.NotificationQueue")).Return(nil).Once()

	conv, msg, err := svc.StartConversation(context.Background(), 1, 2, ref, "  Is this still available?  ")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.NotNil(t, msg)

	assert.Equal(t, uint(1), conv.BuyerID)
	assert.Equal(t, uint(2), conv.SellerID)
	assert.Equal(t, conv.ID, msg.ConversationID)
	assert.Equal(t, uint(1), msg.SenderID)
	assert.Equal(t, "Is this still available?", msg.Content)

	convs.AssertExpectations(t)
	listings.AssertExpectations(t)
	users.AssertExpectations(t)
	notifs.AssertExpectations(t)
}

func TestStartConversationReusesExistingThread(t *testing.T) {
	svc, convs, listings, users, notifs := newTestService()
	ref := propertyRef(10)
	existing := models.NewConversation(1, 2, ref)

	users.On("ByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil).Once()
	listings.On("Resolve", mock.Anything, ref).
		Return(&models.Property{ID: 10, OwnerID: 2, Status: models.StatusActive}, nil).Once()
	convs.On("FindByTriple", mock.Anything, uint(1), uint(2), mock.Anything).Return(existing, nil).Once()
	convs.On("AppendMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil).Once()
	notifs.On("PreferenceFor", mock.Anything, uint(2)).
		Return(&models.NotificationPreference{UserID: 2, OnMessage: true}, nil).Once()
	notifs.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()

	conv, msg, err := svc.StartConversation(context.Background(), 1, 2, ref, "still there?")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, conv.ID)
	assert.Equal(t, existing.ID, msg.ConversationID)

	convs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	convs.AssertExpectations(t)
}

func TestStartConversationLostInsertRace(t *testing.T) {
	svc, convs, listings, users, notifs := newTestService()
	ref := propertyRef(10)
	winner := models.NewConversation(1, 2, ref)

	users.On("ByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil).Once()
	listings.On("Resolve", mock.Anything, ref).
		Return(&models.Property{ID: 10, OwnerID: 2, Status: models.StatusActive}, nil).Once()
	convs.On("FindByTriple", mock.Anything, uint(1), uint(2), mock.Anything).
		Return(nil, database.ErrNotFound).Once()
	convs.On("Create", mock.Anything, mock.Anything).Return(database.ErrConflict).Once()
	convs.On("FindByTriple", mock.Anything, uint(1), uint(2), mock.Anything).Return(winner, nil).Once()
	convs.On("AppendMessage", mock.Anything, mock.Anything).Return(nil).Once()
	notifs.On("PreferenceFor", mock.Anything, uint(2)).
		Return(&models.NotificationPreference{UserID: 2, OnMessage: true}, nil).Once()
	notifs.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()

	conv, _, err := svc.StartConversation(context.Background(), 1, 2, ref, "hello")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, conv.ID)
	convs.AssertExpectations(t)
}

func TestStartConversationRejectsSelfContact(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, _, err := svc.StartConversation(context.Background(), 5, 5, propertyRef(10), "hi")
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestStartConversationRejectsEmptyContent(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	var vErr *models.ValidationError
	_, _, err := svc.StartConversation(context.Background(), 1, 2, propertyRef(10), "   ")
	require.ErrorAs(t, err, &vErr)

	_, _, err = svc.StartConversation(context.Background(), 1, 2, propertyRef(10), strings.Repeat("x", maxContentLength+1))
	require.ErrorAs(t, err, &vErr)
}

func TestStartConversationRejectsAmbiguousRef(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	pid, vid := uint(1), uint(2)

	var vErr *models.ValidationError
	_, _, err := svc.StartConversation(context.Background(), 1, 2, models.ListingRef{PropertyID: &pid, VehicleID: &vid}, "hi")
	require.ErrorAs(t, err, &vErr)

	_, _, err = svc.StartConversation(context.Background(), 1, 2, models.ListingRef{}, "hi")
	require.ErrorAs(t, err, &vErr)
}

func TestStartConversationUnknownListing(t *testing.T) {
	svc, _, listings, users, _ := newTestService()
	ref := propertyRef(99)

	users.On("ByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil).Once()
	listings.On("Resolve", mock.Anything, ref).Return(nil, database.ErrNotFound).Once()

	_, _, err := svc.StartConversation(context.Background(), 1, 2, ref, "hi")
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestSendNonParticipantForbidden(t *testing.T) {
	svc, convs, _, _, _ := newTestService()
	conv := models.NewConversation(1, 2, propertyRef(10))

	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()

	_, err := svc.Send(context.Background(), conv.ID, 3, "let me in")
	require.ErrorIs(t, err, models.ErrForbidden)
	convs.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
}

func TestSendSkipsNotificationWhenMuted(t *testing.T) {
	svc, convs, _, _, notifs := newTestService()
	conv := models.NewConversation(1, 2, propertyRef(10))

	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()
	convs.On("AppendMessage", mock.Anything, mock.Anything).Return(nil).Once()
	notifs.On("PreferenceFor", mock.Anything, uint(1)).
		Return(&models.NotificationPreference{UserID: 1, OnMessage: false}, nil).Once()

	msg, err := svc.Send(context.Background(), conv.ID, 2, "reply")
	require.NoError(t, err)
	assert.Equal(t, uint(2), msg.SenderID)
	notifs.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestDetailMarksRead(t *testing.T) {
	svc, convs, _, _, _ := newTestService()
	conv := models.NewConversation(1, 2, propertyRef(10))
	msgs := []models.Message{
		{ID: 1, ConversationID: conv.ID, SenderID: 1, Content: "hi", IsRead: true},
		{ID: 2, ConversationID: conv.ID, SenderID: 2, Content: "hello", IsRead: true},
	}

	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()
	convs.On("MarkRead", mock.Anything, conv.ID, uint(2)).Return(int64(1), nil).Once()
	convs.On("Messages", mock.Anything, conv.ID).Return(msgs, nil).Once()

	detail, err := svc.Detail(context.Background(), conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, detail.Conversation.ID)
	assert.Len(t, detail.Messages, 2)
	convs.AssertExpectations(t)
}

func TestDetailNonParticipantForbidden(t *testing.T) {
	svc, convs, _, _, _ := newTestService()
	conv := models.NewConversation(1, 2, propertyRef(10))

	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()

	_, err := svc.Detail(context.Background(), conv.ID, 9)
	require.ErrorIs(t, err, models.ErrForbidden)
	convs.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestListForUserAnnotatesSummaries(t *testing.T) {
	svc, convs, _, _, _ := newTestService()
	a := models.NewConversation(1, 2, propertyRef(10))
	b := models.NewConversation(1, 3, propertyRef(11))
	last := &models.Message{ID: 5, ConversationID: a.ID, SenderID: 2, Content: "latest"}

	convs.On("ListForUser", mock.Anything, uint(1)).Return([]models.Conversation{*a, *b}, nil).Once()
	convs.On("LastMessage", mock.Anything, a.ID).Return(last, nil).Once()
	convs.On("UnreadInConversation", mock.Anything, a.ID, uint(1)).Return(int64(2), nil).Once()
	convs.On("LastMessage", mock.Anything, b.ID).Return(nil, database.ErrNotFound).Once()
	convs.On("UnreadInConversation", mock.Anything, b.ID, uint(1)).Return(int64(0), nil).Once()

	summaries, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, last.ID, summaries[0].LastMessage.ID)
	assert.Equal(t, int64(2), summaries[0].UnreadCount)
	assert.Nil(t, summaries[1].LastMessage)
	assert.Equal(t, int64(0), summaries[1].UnreadCount)
}

func TestUnreadCount(t *testing.T) {
	svc, convs, _, _, _ := newTestService()

	convs.On("TotalUnread", mock.Anything, uint(7)).Return(int64(3), nil).Once()

	count, err := svc.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))

	long := strings.Repeat("a", 200)
	got := preview(long)
	assert.Len(t, got, 123)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestPreviewKeepsMultibyteRunesIntact(t *testing.T) {
	long := strings.Repeat("日本語テキスト", 40)
	got := preview(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 123)
}
