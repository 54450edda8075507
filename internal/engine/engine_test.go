package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"equipment-booking-backend/internal/db"
	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/notification"
	"equipment-booking-backend/internal/store"
)

// recordingDispatcher captures dispatched intents for assertions.
type recordingDispatcher struct {
	mu      sync.Mutex
	intents []notification.Intent
}

func (d *recordingDispatcher) Dispatch(intent notification.Intent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.intents = append(d.intents, intent)
}

func (d *recordingDispatcher) all() []notification.Intent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notification.Intent, len(d.intents))
	copy(out, d.intents)
	return out
}

func (d *recordingDispatcher) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.intents = nil
}

// Well-known fixture IDs.
const (
	aliceID = "11111111-1111-1111-1111-111111111111" // student
	bobID   = "22222222-2222-2222-2222-222222222222" // student
	tinaID  = "33333333-3333-3333-3333-333333333333" // technician
	adaID   = "44444444-4444-4444-4444-444444444444" // admin
	carlID  = "55555555-5555-5555-5555-555555555555" // no role row
	camID   = "66666666-6666-6666-6666-666666666666" // device
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// newTestEngine builds an engine over an isolated in-memory sqlite database
// seeded with a handful of users and one device. The engine's clock is pinned
// to fixedNow.
func newTestEngine(t *testing.T) (*Engine, *gorm.DB, *recordingDispatcher) {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes
	// transactions the way a server-side database would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))

	profiles := []model.Profile{
		{ID: aliceID, FullName: "Alice Mendes", Email: "alice@example.edu"},
		{ID: bobID, FullName: "Bob Costa", Email: "bob@example.edu"},
		{ID: tinaID, FullName: "Tina Rocha", Email: "tina@example.edu"},
		{ID: adaID, FullName: "Ada Nunes", Email: "ada@example.edu"},
		{ID: carlID, FullName: "Carl Dias", Email: "carl@example.edu"},
	}
	require.NoError(t, testDB.Create(&profiles).Error)

	roles := []model.UserRole{
		{UserID: aliceID, Role: model.RoleStudent},
		{UserID: bobID, Role: model.RoleStudent},
		{UserID: tinaID, Role: model.RoleTechnician},
		{UserID: adaID, Role: model.RoleAdmin},
	}
	require.NoError(t, testDB.Create(&roles).Error)

	device := model.Device{ID: camID, Name: "Canon EOS R5", Status: model.DeviceAvailable}
	require.NoError(t, testDB.Create(&device).Error)

	dispatcher := &recordingDispatcher{}
	eng := New(store.NewStore(testDB), dispatcher)
	eng.now = func() time.Time { return fixedNow }

	return eng, testDB, dispatcher
}

func auditCount(t *testing.T, testDB *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(&model.AuditLog{}).Count(&n).Error)
	return n
}
