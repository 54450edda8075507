package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.PushSubscription{}))
	return testDB
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusCreated,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestWorkerPool_DeliversToEverySubscription(t *testing.T) {
	testDB := newTestDB(t)
	subs := []model.PushSubscription{
		{Endpoint: "https://push.example.com/a", UserID: "u-1", P256DH: "k1", Auth: "a1"},
		{Endpoint: "https://push.example.com/b", UserID: "u-1", P256DH: "k2", Auth: "a2"},
		{Endpoint: "https://push.example.com/other", UserID: "u-2", P256DH: "k3", Auth: "a3"},
	}
	require.NoError(t, testDB.Create(&subs).Error)

	wp := NewWorkerPool(1, 4, testDB, &webpush.Options{})

	var mu sync.Mutex
	var endpoints []string
	var payloads []string
	var wg sync.WaitGroup
	wg.Add(2)
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			mu.Lock()
			endpoints = append(endpoints, sub.Endpoint)
			payloads = append(payloads, string(payload))
			mu.Unlock()
			wg.Done()
			return okResponse(), nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	wp.Dispatch(Intent{
		RecipientID: "u-1",
		Template:    TemplateReservationApproved,
		Details:     Details{DeviceName: "Canon EOS R5", StartDate: &start, EndDate: &end},
	})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"https://push.example.com/a", "https://push.example.com/b"}, endpoints)
	for _, payload := range payloads {
		assert.Contains(t, payload, "Reservation approved")
		assert.Contains(t, payload, "Canon EOS R5")
	}
}

func TestWorkerPool_DeletesExpiredSubscription(t *testing.T) {
	testDB := newTestDB(t)
	sub := model.PushSubscription{Endpoint: "https://push.example.com/gone", UserID: "u-1", P256DH: "k", Auth: "a"}
	require.NoError(t, testDB.Create(&sub).Error)

	wp := NewWorkerPool(1, 4, testDB, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusGone,
				Body:       io.NopCloser(bytes.NewBufferString("")),
			}, nil
		},
	}

	// Run the delivery synchronously; no worker goroutine needed.
	wp.deliver(context.Background(), Intent{RecipientID: "u-1", Template: TemplateIssueResolved})

	var count int64
	require.NoError(t, testDB.Model(&model.PushSubscription{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "gone subscriptions are pruned")
}

func TestWorkerPool_DeliveryFailureIsSwallowed(t *testing.T) {
	testDB := newTestDB(t)
	subs := []model.PushSubscription{
		{Endpoint: "https://push.example.com/bad", UserID: "u-1", P256DH: "k1", Auth: "a1"},
		{Endpoint: "https://push.example.com/good", UserID: "u-1", P256DH: "k2", Auth: "a2"},
	}
	require.NoError(t, testDB.Create(&subs).Error)

	var delivered []string
	wp := NewWorkerPool(1, 4, testDB, &webpush.Options{})
	wp.sender = &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			if sub.Endpoint == "https://push.example.com/bad" {
				return nil, assert.AnError
			}
			delivered = append(delivered, sub.Endpoint)
			return okResponse(), nil
		},
	}

	wp.deliver(context.Background(), Intent{RecipientID: "u-1", Template: TemplateIssueResolved})

	// The failed endpoint does not stop the remaining fan-out.
	assert.Equal(t, []string{"https://push.example.com/good"}, delivered)
}

func TestWorkerPool_DispatchDropsWhenQueueFull(t *testing.T) {
	testDB := newTestDB(t)
	// Queue of one, no workers started: the second dispatch must drop, not block.
	wp := NewWorkerPool(1, 1, testDB, &webpush.Options{})

	done := make(chan struct{})
	go func() {
		wp.Dispatch(Intent{RecipientID: "u-1", Template: TemplateIssueResolved})
		wp.Dispatch(Intent{RecipientID: "u-2", Template: TemplateIssueResolved})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
	assert.Len(t, wp.Jobs(), 1)
}
