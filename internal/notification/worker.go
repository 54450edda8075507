package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/obs"
)

// Sender defines the interface for delivering a single web push message.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool consumes notification intents off a buffered channel and
// delivers them best-effort. Delivery failures are logged, counted and
// dropped; nothing here reaches back into the transaction that produced the
// intent.
type WorkerPool struct {
	size    int
	jobs    chan Intent
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a worker pool with the given concurrency and queue
// depth.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if queueSize <= 0 {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Intent, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case intent := <-wp.jobs:
			wp.deliver(ctx, intent)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an intent without blocking. When the queue is full the
// intent is dropped with a log line; a stalled delivery collaborator must
// never stall the request path.
func (wp *WorkerPool) Dispatch(intent Intent) {
	select {
	case wp.jobs <- intent:
	default:
		log.Printf("notification queue full, dropping %s intent for user %s", intent.Template, intent.RecipientID)
		obs.IncNotification("dropped")
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Intent {
	return wp.jobs
}

// deliver fans one intent out to every push subscription of the recipient.
func (wp *WorkerPool) deliver(ctx context.Context, intent Intent) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("user_id = ?", intent.RecipientID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("error fetching subscriptions for user %s: %v", intent.RecipientID, err)
		obs.IncNotification("failed")
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"title":   renderTitle(intent),
		"body":    renderBody(intent),
		"details": intent.Details,
	})
	if err != nil {
		log.Printf("error encoding %s payload for user %s: %v", intent.Template, intent.RecipientID, err)
		obs.IncNotification("failed")
		return
	}

	for _, sub := range subscriptions {
		wp.send(ctx, sub, payload)
	}
}

func renderTitle(intent Intent) string {
	switch intent.Template {
	case TemplateReservationApproved:
		return "Reservation approved"
	case TemplateReservationRejected:
		return "Reservation rejected"
	case TemplateIssueResolved:
		return "Issue resolved"
	case TemplateDeviceUnavailable:
		return "Device unavailable"
	}
	return "Equipment booking update"
}

func renderBody(intent Intent) string {
	d := intent.Details
	switch intent.Template {
	case TemplateReservationApproved:
		return fmt.Sprintf("Your reservation for %s (%s to %s) was approved.",
			d.DeviceName, formatDate(d.StartDate), formatDate(d.EndDate))
	case TemplateReservationRejected:
		if d.Reason != "" {
			return fmt.Sprintf("Your reservation for %s was rejected: %s", d.DeviceName, d.Reason)
		}
		return fmt.Sprintf("Your reservation for %s was rejected.", d.DeviceName)
	case TemplateIssueResolved:
		return fmt.Sprintf("The issue %q was resolved: %s", d.IssueTitle, d.Resolution)
	case TemplateDeviceUnavailable:
		return fmt.Sprintf("%s is no longer available; your reservation from %s to %s is affected.",
			d.DeviceName, formatDate(d.StartDate), formatDate(d.EndDate))
	}
	return ""
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.Format("2006-01-02 15:04")
}

// send delivers one push message and prunes the subscription when the push
// service reports it gone.
func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		obs.IncNotification("failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
		obs.IncNotification("failed")
		return
	}

	obs.IncNotification("sent")
}
