package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/auth"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/messaging"
	"marketplace-portal/internal/mocks"
	"marketplace-portal/internal/models"
)

func setupMessageRouter(svc *messaging.Service, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserID, userID)
		c.Next()
	})
	h := NewMessageHandler(svc)
	r.POST("/messages/conversations", h.StartConversation)
	r.GET("/messages/conversations", h.ListConversations)
	r.GET("/messages/conversations/:id", h.GetConversation)
	r.POST("/messages/conversations/:id/messages", h.SendMessage)
	r.GET("/messages/unread", h.UnreadCount)
	return r
}

func messageMocks() (*messaging.Service, *mocks.ConversationStoreMock, *mocks.ListingStoreMock, *mocks.UserStoreMock, *mocks.NotificationStoreMock) {
	convs := new(mocks.ConversationStoreMock)
	listings := new(mocks.ListingStoreMock)
	users := new(mocks.UserStoreMock)
	notifs := new(mocks.NotificationStoreMock)
	return messaging.NewService(convs, listings, users, notifs), convs, listings, users, notifs
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestStartConversationEndpoint(t *testing.T) {
	svc, convs, listings, users, notifs := messageMocks()
	router := setupMessageRouter(svc, 1)

	users.On("ByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil).Once()
	listings.On("Resolve", mock.Anything, mock.Anything).
		Return(&models.Property{ID: 10, OwnerID: 2, Status: models.StatusActive}, nil).Once()
	convs.On("FindByTriple", mock.Anything, uint(1), uint(2), mock.Anything).
		Return(nil, database.ErrNotFound).Once()
	convs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	convs.On("AppendMessage", mock.Anything, mock.Anything).Return(nil).Once()
	notifs.On("PreferenceFor", mock.Anything, uint(2)).
		Return(&models.NotificationPreference{UserID: 2, OnMessage: true}, nil).Once()
	notifs.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()

	body := bytes.NewBufferString(`{"seller_id":2,"property_id":10,"message":"Is this still available?"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, true, resp["success"])

	data := resp["data"].(map[string]any)
	conv := data["conversation"].(map[string]any)
	msg := data["message"].(map[string]any)
	assert.Equal(t, float64(1), conv["buyer_id"])
	assert.Equal(t, float64(2), conv["seller_id"])
	assert.Equal(t, conv["id"], msg["conversation_id"])
	assert.Equal(t, "Is this still available?", msg["content"])

	convs.AssertExpectations(t)
}

func TestStartConversationMissingBody(t *testing.T) {
	svc, _, _, _, _ := messageMocks()
	router := setupMessageRouter(svc, 1)

	req := httptest.NewRequest(http.MethodPost, "/messages/conversations", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, false, resp["success"])
}

func TestStartConversationSelfContactRejected(t *testing.T) {
	svc, _, _, _, _ := messageMocks()
	router := setupMessageRouter(svc, 2)

	body := bytes.NewBufferString(`{"seller_id":2,"property_id":10,"message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartConversationUnknownListing(t *testing.T) {
	svc, _, listings, users, _ := messageMocks()
	router := setupMessageRouter(svc, 1)

	users.On("ByID", mock.Anything, uint(2)).Return(&models.User{ID: 2}, nil).Once()
	listings.On("Resolve", mock.Anything, mock.Anything).Return(nil, database.ErrNotFound).Once()

	body := bytes.NewBufferString(`{"seller_id":2,"property_id":99,"message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

// A seller receives one message, sees unread_count 1 in the inbox, opens the
// thread, and the unread total drops to zero.
func TestSellerUnreadLifecycle(t *testing.T) {
	pid := uint(10)
	conv := models.NewConversation(1, 2, models.ListingRef{PropertyID: &pid})
	incoming := &models.Message{ID: 1, ConversationID: conv.ID, SenderID: 1, Content: "Is this still available?"}

	svc, convs, _, _, _ := messageMocks()
	router := setupMessageRouter(svc, 2)

	convs.On("ListForUser", mock.Anything, uint(2)).Return([]models.Conversation{*conv}, nil).Once()
	convs.On("LastMessage", mock.Anything, conv.ID).Return(incoming, nil).Once()
	convs.On("UnreadInConversation", mock.Anything, conv.ID, uint(2)).Return(int64(1), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	list := resp["data"].([]any)
	require.Len(t, list, 1)
	summary := list[0].(map[string]any)
	assert.Equal(t, float64(1), summary["unread_count"])
	assert.Equal(t, "Is this still available?", summary["last_message"].(map[string]any)["content"])

	// opening the thread marks the buyer's message read
	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()
	convs.On("MarkRead", mock.Anything, conv.ID, uint(2)).Return(int64(1), nil).Once()
	convs.On("Messages", mock.Anything, conv.ID).
		Return([]models.Message{{ID: 1, ConversationID: conv.ID, SenderID: 1, Content: "Is this still available?", IsRead: true}}, nil).Once()

	req = httptest.NewRequest(http.MethodGet, "/messages/conversations/"+conv.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	convs.On("TotalUnread", mock.Anything, uint(2)).Return(int64(0), nil).Once()

	req = httptest.NewRequest(http.MethodGet, "/messages/unread", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeEnvelope(t, rec)
	assert.Equal(t, float64(0), resp["data"].(map[string]any)["count"])

	convs.AssertExpectations(t)
}

func TestGetConversationForbiddenForOutsider(t *testing.T) {
	pid := uint(10)
	conv := models.NewConversation(1, 2, models.ListingRef{PropertyID: &pid})

	svc, convs, _, _, _ := messageMocks()
	router := setupMessageRouter(svc, 3)

	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/conversations/"+conv.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, false, resp["success"])
}

func TestGetConversationNotFound(t *testing.T) {
	svc, convs, _, _, _ := messageMocks()
	router := setupMessageRouter(svc, 1)

	convs.On("ByID", mock.Anything, "missing").Return(nil, database.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/messages/conversations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessageEndpoint(t *testing.T) {
	pid := uint(10)
	conv := models.NewConversation(1, 2, models.ListingRef{PropertyID: &pid})

	svc, convs, _, _, notifs := messageMocks()
	router := setupMessageRouter(svc, 2)

	convs.On("ByID", mock.Anything, conv.ID).Return(conv, nil).Once()
	convs.On("AppendMessage", mock.Anything, mock.Anything).Return(nil).Once()
	notifs.On("PreferenceFor", mock.Anything, uint(1)).
		Return(&models.NotificationPreference{UserID: 1, OnMessage: true}, nil).Once()
	notifs.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()

	body := bytes.NewBufferString(`{"content":"Yes, come see it tomorrow"}`)
	req := httptest.NewRequest(http.MethodPost, "/messages/conversations/"+conv.ID+"/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	msg := resp["data"].(map[string]any)
	assert.Equal(t, float64(2), msg["sender_id"])
	assert.Equal(t, "Yes, come see it tomorrow", msg["content"])
}
