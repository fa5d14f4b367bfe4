package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/config"
	"marketplace-portal/internal/mocks"
	"marketplace-portal/internal/models"
)

func setupImageListRouter(images *mocks.ImageStoreMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewImageHandler(images, new(mocks.ListingStoreMock), config.UploadConfig{})
	r := gin.New()
	r.GET("/images", h.List)
	return r
}

func TestListImagesForListing(t *testing.T) {
	images := new(mocks.ImageStoreMock)
	router := setupImageListRouter(images)

	pid := uint(7)
	images.On("ListForListing", mock.Anything, models.ListingRef{PropertyID: &pid}).
		Return([]models.ListingImage{
			{ID: 1, PropertyID: &pid, ContentType: "image/jpeg", Data: "c29tZWJ5dGVz", SortOrder: 0},
			{ID: 2, PropertyID: &pid, ContentType: "image/png", Data: "bW9yZWJ5dGVz", SortOrder: 1},
		}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/images?property_id=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(2), data["count"])

	// metadata only, payloads stripped
	for _, raw := range data["images"].([]any) {
		img := raw.(map[string]any)
		assert.Nil(t, img["data"])
	}
	images.AssertExpectations(t)
}

func TestListImagesRequiresSingleRef(t *testing.T) {
	images := new(mocks.ImageStoreMock)
	router := setupImageListRouter(images)

	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/images?property_id=1&vehicle_id=2", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	images.AssertNotCalled(t, "ListForListing", mock.Anything, mock.Anything)
}
