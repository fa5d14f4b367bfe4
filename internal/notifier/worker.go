package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"marketplace-portal/internal/database"
	"marketplace-portal/internal/events"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/observability"
)

// Worker drains the notification queue and publishes deliveries to the
// event exchange, retrying failures with backoff.
type Worker struct {
	store        database.NotificationStore
	publisher    events.Publisher
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
	batchSize    int
}

// NewWorker creates a new notification worker
func NewWorker(store database.NotificationStore, publisher events.Publisher) *Worker {
	return &Worker{
		store:        store,
		publisher:    publisher,
		stopChan:     make(chan struct{}),
		pollInterval: 15 * time.Second,
		batchSize:    10,
	}
}

// Start starts the worker loop
func (w *Worker) Start() {
	if w.isRunning {
		log.Println("[Notifier] already running")
		return
	}

	w.isRunning = true
	log.Printf("[Notifier] started (poll_interval=%v, batch_size=%d)", w.pollInterval, w.batchSize)

	go w.run()
}

// Stop stops the worker
func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("[Notifier] stopping...")
	w.isRunning = false
	close(w.stopChan)
}

// run is the main worker loop
func (w *Worker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("[Notifier] stopped")
			return
		case <-ticker.C:
			w.processNextBatch()
		}
	}
}

// processNextBatch delivers the next deliverable queue items
func (w *Worker) processNextBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := w.store.NextPending(ctx, w.batchSize)
	if err != nil {
		log.Printf("[Notifier] error fetching queue items: %v", err)
		return
	}

	for i := range items {
		w.processItem(ctx, &items[i])
	}
}

// processItem attempts a single delivery
func (w *Worker) processItem(ctx context.Context, item *models.NotificationQueue) {
	item.Status = models.QueueStatusProcessing
	item.Attempts++
	if err := w.store.Save(ctx, item); err != nil {
		log.Printf("[Notifier] failed to mark item %d processing: %v", item.ID, err)
		return
	}

	envelope := events.Envelope{
		Type:        item.Type,
		RecipientID: item.RecipientID,
		Payload:     json.RawMessage(item.Payload),
		OccurredAt:  item.CreatedAt.UTC().Format(time.RFC3339),
	}
	if item.Payload == "" {
		envelope.Payload = nil
	}

	err := w.publisher.Publish(ctx, routingKey(item.Type), envelope)
	if err != nil {
		w.handleDeliveryError(ctx, item, err)
		return
	}

	item.Status = models.QueueStatusDone
	item.LastError = ""
	completedAt := time.Now()
	item.CompletedAt = &completedAt
	item.NextRetryAt = nil

	if err := w.store.Save(ctx, item); err != nil {
		log.Printf("[Notifier] failed to mark item %d done: %v", item.ID, err)
		return
	}
	observability.IncNotificationDelivery("delivered")
	log.Printf("[Notifier] delivered id=%d type=%s recipient=%d attempt=%d", item.ID, item.Type, item.RecipientID, item.Attempts)
}

// handleDeliveryError schedules a retry or gives up after too many attempts
func (w *Worker) handleDeliveryError(ctx context.Context, item *models.NotificationQueue, deliveryErr error) {
	log.Printf("[Notifier] delivery failed id=%d attempt=%d: %v", item.ID, item.Attempts, deliveryErr)

	if item.Attempts >= models.MaxDeliveryAttempts {
		item.Status = models.QueueStatusPermanentFail
		item.LastError = fmt.Sprintf("max attempts exceeded (%d): %v", item.Attempts, deliveryErr)
		completedAt := time.Now()
		item.CompletedAt = &completedAt
		item.NextRetryAt = nil
		observability.IncNotificationDelivery("permanent_fail")
	} else {
		delay := models.GetNextRetryDelay(item.Attempts - 1)
		nextRetry := time.Now().Add(delay)
		item.Status = models.QueueStatusFailed
		item.LastError = deliveryErr.Error()
		item.NextRetryAt = &nextRetry
		observability.IncNotificationDelivery("retry_scheduled")
		log.Printf("[Notifier] scheduling retry id=%d in %v (attempt %d/%d)",
			item.ID, delay, item.Attempts, models.MaxDeliveryAttempts)
	}

	if err := w.store.Save(ctx, item); err != nil {
		log.Printf("[Notifier] failed to save retry state for item %d: %v", item.ID, err)
	}
}

// routingKey maps a notification type to its exchange routing key
func routingKey(notifyType string) string {
	return "notifications." + notifyType
}

// GetQueueStats returns current queue statistics
func (w *Worker) GetQueueStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := w.store.QueueStats(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{
		"pending":        stats[models.QueueStatusPending],
		"processing":     stats[models.QueueStatusProcessing],
		"done":           stats[models.QueueStatusDone],
		"failed":         stats[models.QueueStatusFailed],
		"permanent_fail": stats[models.QueueStatusPermanentFail],
		"is_running":     w.isRunning,
	}
	return out, nil
}
