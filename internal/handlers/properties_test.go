package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/auth"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/history"
	"marketplace-portal/internal/mocks"
	"marketplace-portal/internal/models"
)

type listingTestEnv struct {
	listings  *mocks.ListingStoreMock
	favorites *mocks.FavoriteStoreMock
	notifs    *mocks.NotificationStoreMock
	router    *gin.Engine
}

func setupPropertyRouter(userID uint, role models.UserRole) *listingTestEnv {
	env := &listingTestEnv{
		listings:  new(mocks.ListingStoreMock),
		favorites: new(mocks.FavoriteStoreMock),
		notifs:    new(mocks.NotificationStoreMock),
	}
	deps := ListingDeps{
		Listings:      env.listings,
		Favorites:     env.favorites,
		Notifications: env.notifs,
		History:       history.NewService(nil),
	}
	h := NewPropertyHandler(deps)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserID, userID)
		c.Set(auth.ContextRole, role)
		c.Next()
	})
	r.PATCH("/properties/:id/status", h.UpdateStatus)
	r.DELETE("/properties/:id", h.Delete)
	env.router = r
	return env
}

func patchStatus(env *listingTestEnv, id, status string) *httptest.ResponseRecorder {
	body := bytes.NewBufferString(`{"status":"` + status + `"}`)
	req := httptest.NewRequest(http.MethodPatch, "/properties/"+id+"/status", body)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStatusApplied(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusActive, Version: 3}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()
	env.listings.On("TransitionStatus", mock.Anything, property, models.StatusSold).Return(nil).Once()
	env.favorites.On("UsersForListing", mock.Anything, mock.Anything).Return([]uint{}, nil).Once()

	rec := patchStatus(env, "10", "SOLD")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "SOLD", resp["data"].(map[string]any)["status"])

	env.listings.AssertExpectations(t)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusSold}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()

	rec := patchStatus(env, "10", "ACTIVE")
	require.Equal(t, http.StatusForbidden, rec.Code)

	resp := decodeEnvelope(t, rec)
	assert.Equal(t, "status transition from SOLD to ACTIVE is not allowed", resp["message"])
	env.listings.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusSoldToInactive(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusSold}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()
	env.listings.On("TransitionStatus", mock.Anything, property, models.StatusInactive).Return(nil).Once()
	env.favorites.On("UsersForListing", mock.Anything, mock.Anything).Return([]uint{}, nil).Once()

	rec := patchStatus(env, "10", "INACTIVE")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatusNotOwner(t *testing.T) {
	env := setupPropertyRouter(2, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusActive}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()

	rec := patchStatus(env, "10", "SOLD")
	require.Equal(t, http.StatusForbidden, rec.Code)
	env.listings.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusAdminOverride(t *testing.T) {
	env := setupPropertyRouter(99, models.RoleAdmin)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusActive}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()
	env.listings.On("TransitionStatus", mock.Anything, property, models.StatusInactive).Return(nil).Once()
	env.favorites.On("UsersForListing", mock.Anything, mock.Anything).Return([]uint{}, nil).Once()

	rec := patchStatus(env, "10", "INACTIVE")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusActive}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()

	rec := patchStatus(env, "10", "PENDING")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusVersionConflict(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusActive, Version: 3}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()
	env.listings.On("TransitionStatus", mock.Anything, property, models.StatusSold).
		Return(database.ErrConflict).Once()

	rec := patchStatus(env, "10", "SOLD")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatusRemovedListingHidden(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	removedAt := time.Now()
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusInactive, RemovedAt: &removedAt}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()

	rec := patchStatus(env, "10", "ACTIVE")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProperty(t *testing.T) {
	env := setupPropertyRouter(1, models.RoleUser)
	property := &models.Property{ID: 10, OwnerID: 1, Status: models.StatusActive}

	env.listings.On("PropertyByID", mock.Anything, uint(10)).Return(property, nil).Once()
	env.listings.On("SoftRemove", mock.Anything, property).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/properties/10", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env.listings.AssertExpectations(t)
}
