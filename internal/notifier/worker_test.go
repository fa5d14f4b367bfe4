package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-portal/internal/events"
	"marketplace-portal/internal/mocks"
	"marketplace-portal/internal/models"
)

func TestProcessBatchDelivers(t *testing.T) {
	store := new(mocks.NotificationStoreMock)
	pub := new(mocks.PublisherMock)
	w := NewWorker(store, pub)

	item := models.NotificationQueue{
		ID:          1,
		RecipientID: 2,
		Type:        models.NotifyTypeMessage,
		Payload:     `{"conversation_id":"abc"}`,
		Status:      models.QueueStatusPending,
	}

	store.On("NextPending", mock.Anything, 10).Return([]models.NotificationQueue{item}, nil).Once()
	store.On("Save", mock.Anything, mock.AnythingOfType("*models.NotificationQueue")).Return(nil).Twice()
	pub.On("Publish", mock.Anything, "notifications."+models.NotifyTypeMessage, mock.AnythingOfType("events.Envelope")).
		Return(nil).Once()

	w.processNextBatch()

	saved := store.Calls[len(store.Calls)-1].Arguments.Get(1).(*models.NotificationQueue)
	assert.Equal(t, models.QueueStatusDone, saved.Status)
	assert.Equal(t, 1, saved.Attempts)
	assert.NotNil(t, saved.CompletedAt)
	assert.Nil(t, saved.NextRetryAt)

	env := pub.Calls[0].Arguments.Get(2).(events.Envelope)
	assert.Equal(t, uint(2), env.RecipientID)
	assert.Equal(t, models.NotifyTypeMessage, env.Type)

	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProcessBatchSchedulesRetry(t *testing.T) {
	store := new(mocks.NotificationStoreMock)
	pub := new(mocks.PublisherMock)
	w := NewWorker(store, pub)

	item := models.NotificationQueue{ID: 1, RecipientID: 2, Type: models.NotifyTypeMessage}

	store.On("NextPending", mock.Anything, 10).Return([]models.NotificationQueue{item}, nil).Once()
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	w.processNextBatch()

	saved := store.Calls[len(store.Calls)-1].Arguments.Get(1).(*models.NotificationQueue)
	assert.Equal(t, models.QueueStatusFailed, saved.Status)
	assert.Equal(t, 1, saved.Attempts)
	require.NotNil(t, saved.NextRetryAt)
	assert.NotEmpty(t, saved.LastError)
}

func TestProcessBatchPermanentFailure(t *testing.T) {
	store := new(mocks.NotificationStoreMock)
	pub := new(mocks.PublisherMock)
	w := NewWorker(store, pub)

	item := models.NotificationQueue{
		ID:          1,
		RecipientID: 2,
		Type:        models.NotifyTypeMessage,
		Status:      models.QueueStatusFailed,
		Attempts:    models.MaxDeliveryAttempts - 1,
	}

	store.On("NextPending", mock.Anything, 10).Return([]models.NotificationQueue{item}, nil).Once()
	store.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	w.processNextBatch()

	saved := store.Calls[len(store.Calls)-1].Arguments.Get(1).(*models.NotificationQueue)
	assert.Equal(t, models.QueueStatusPermanentFail, saved.Status)
	assert.Nil(t, saved.NextRetryAt)
	assert.NotNil(t, saved.CompletedAt)
}

func TestGetNextRetryDelayGrows(t *testing.T) {
	prev := models.GetNextRetryDelay(0)
	for i := 1; i < models.MaxDeliveryAttempts; i++ {
		d := models.GetNextRetryDelay(i)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}
