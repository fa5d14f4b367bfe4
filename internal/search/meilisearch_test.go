package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketplace-portal/internal/models"
)

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "property-7", DocumentID(models.ListingKindProperty, 7))
	assert.Equal(t, "vehicle-12", DocumentID(models.ListingKindVehicle, 12))
}

func TestBuildDocumentProperty(t *testing.T) {
	rooms := 3
	area := 72.5
	p := &models.Property{
		ID:          7,
		OwnerID:     2,
		Title:       "Sunny flat",
		ListingType: "rent",
		Price:       1200,
		Currency:    "EUR",
		City:        "Lisbon",
		Rooms:       &rooms,
		Area:        &area,
		Status:      models.StatusActive,
		CreatedAt:   time.Unix(1700000000, 0),
	}

	doc := BuildDocument(p)
	assert.Equal(t, "property-7", doc.ID)
	assert.Equal(t, "property", doc.Kind)
	assert.Equal(t, uint(7), doc.ListingID)
	assert.Equal(t, uint(2), doc.OwnerID)
	assert.Equal(t, "Sunny flat", doc.Title)
	assert.Equal(t, "ACTIVE", doc.Status)
	assert.Equal(t, float64(1200), doc.Price)
	assert.Equal(t, &rooms, doc.Rooms)
	assert.Equal(t, int64(1700000000), doc.CreatedAt)
	assert.Empty(t, doc.Make)
	assert.Nil(t, doc.Year)
}

func TestBuildDocumentVehicle(t *testing.T) {
	year := 2019
	mileage := 45000
	v := &models.Vehicle{
		ID:          12,
		OwnerID:     3,
		Title:       "Reliable sedan",
		ListingType: "sale",
		Price:       9500,
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        &year,
		Mileage:     &mileage,
		Status:      models.StatusActive,
	}

	doc := BuildDocument(v)
	assert.Equal(t, "vehicle-12", doc.ID)
	assert.Equal(t, "vehicle", doc.Kind)
	assert.Equal(t, "Toyota", doc.Make)
	assert.Equal(t, "Corolla", doc.Model)
	assert.Equal(t, &year, doc.Year)
	assert.Equal(t, &mileage, doc.Mileage)
	assert.Nil(t, doc.Rooms)
}
