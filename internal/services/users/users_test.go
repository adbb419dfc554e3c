package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harmonyeco/gec-subscriptions/internal/cache"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
	"github.com/harmonyeco/gec-subscriptions/internal/storage"
	"github.com/harmonyeco/gec-subscriptions/internal/storage/memory"
	"github.com/harmonyeco/gec-subscriptions/internal/subscription"
)

var now = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context, collection string) ([]models.Document, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

func (m *MockStore) UpdateFields(ctx context.Context, collection, id string, fields models.Fields) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

func seed(t *testing.T) *memory.Storage {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Put(ctx, "users", "u1", models.Fields{
		models.FieldName:      "Rakoto",
		models.FieldPhone:     "+261 34 11 222 33",
		models.FieldEmail:     "rakoto@example.com",
		models.FieldExpiresAt: date(2024, 3, 10),
	}))
	require.NoError(t, store.Put(ctx, "users", "u2", models.Fields{
		models.FieldName:      "Rabe",
		models.FieldPhone:     "032 55 666 77",
		models.FieldExpiresAt: date(2024, 1, 1),
	}))
	require.NoError(t, store.Put(ctx, "users", "u3", models.Fields{
		models.FieldName: "No phone",
	}))
	require.NoError(t, store.Put(ctx, "users", "u4", models.Fields{
		models.FieldName:  "Blank phone",
		models.FieldPhone: "   ",
	}))
	return store
}

func newService(store Store, c Cache) *Service {
	return New(store, c, sl.Discard(), Options{
		Collection: "users",
		CacheTTL:   time.Minute,
		Now:        func() time.Time { return now },
	})
}

func ids(views []models.UserView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestService_Roster(t *testing.T) {
	svc := newService(seed(t), cache.Nop{})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query keeps displayable", "", []string{"u1", "u2"}},
		{"query without digits", "abc", []string{"u1", "u2"}},
		{"digits with formatting", "34-11", []string{"u1"}},
		{"matches second", "666", []string{"u2"}},
		{"no match", "999", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.Roster(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(views))
		})
	}
}

func TestService_Roster_Status(t *testing.T) {
	svc := newService(seed(t), cache.Nop{})

	views, err := svc.Roster(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, subscription.StatusActive, views[0].Status)
	assert.True(t, views[0].Active)
	assert.Equal(t, 1, views[0].RemainingMonths)

	assert.Equal(t, subscription.StatusInactive, views[1].Status)
	assert.False(t, views[1].Active)
	assert.Zero(t, views[1].RemainingMonths)
}

func TestService_Roster_LoadError(t *testing.T) {
	store := new(MockStore)
	store.On("List", mock.Anything, "users").Return(nil, errors.New("permission denied")).Once()

	_, err := newService(store, cache.Nop{}).Roster(context.Background(), "")
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorContains(t, err, "permission denied")
	store.AssertExpectations(t)
}

func TestService_Roster_UsesCache(t *testing.T) {
	store := new(MockStore)
	store.On("List", mock.Anything, "users").Return([]models.Document{
		{ID: "u1", Fields: models.Fields{models.FieldPhone: "0341122233"}},
	}, nil).Once()

	svc := newService(store, cache.NewLocal(time.Minute))
	for range 3 {
		views, err := svc.Roster(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"u1"}, ids(views))
	}
	store.AssertExpectations(t)
}

func TestService_Activate(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		months     int
		wantExpiry time.Time
	}{
		{"extends active subscription from its expiry", "u1", 1, date(2024, 4, 10)},
		{"expired subscription starts from now", "u2", 3, date(2024, 4, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seed(t)
			svc := newService(store, cache.Nop{})

			view, err := svc.Activate(context.Background(), tt.id, tt.months)
			require.NoError(t, err)
			assert.True(t, view.Active)
			assert.Equal(t, subscription.StatusActive, view.Status)
			require.NotNil(t, view.ExpiresAt)
			assert.True(t, tt.wantExpiry.Equal(*view.ExpiresAt), "expiry %v, want %v", *view.ExpiresAt, tt.wantExpiry)
			require.NotNil(t, view.LastRenewal)
			assert.True(t, now.Equal(*view.LastRenewal))

			docs, err := store.List(context.Background(), "users")
			require.NoError(t, err)
			for _, d := range docs {
				if d.ID == tt.id {
					u := models.UserFromDocument(d)
					require.NotNil(t, u.ExpiresAt)
					assert.True(t, tt.wantExpiry.Equal(*u.ExpiresAt))
				}
			}
		})
	}
}

func TestService_Activate_InvalidatesCache(t *testing.T) {
	store := seed(t)
	svc := newService(store, cache.NewLocal(time.Minute))
	ctx := context.Background()

	views, err := svc.Roster(ctx, "666")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Active)

	_, err = svc.Activate(ctx, "u2", 1)
	require.NoError(t, err)

	views, err = svc.Roster(ctx, "666")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Active)
}

func TestService_Activate_Errors(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		_, err := newService(seed(t), cache.Nop{}).Activate(context.Background(), "missing", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non positive duration", func(t *testing.T) {
		_, err := newService(seed(t), cache.Nop{}).Activate(context.Background(), "u1", 0)
		assert.ErrorIs(t, err, ErrActivate)
	})

	t.Run("store update fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("List", mock.Anything, "users").Return([]models.Document{{ID: "u1", Fields: models.Fields{}}}, nil)
		store.On("UpdateFields", mock.Anything, "users", "u1", mock.Anything).Return(errors.New("unavailable")).Once()

		_, err := newService(store, cache.Nop{}).Activate(context.Background(), "u1", 1)
		assert.ErrorIs(t, err, ErrActivate)
		assert.NotErrorIs(t, err, ErrNotFound)
		store.AssertExpectations(t)
	})

	t.Run("document removed concurrently", func(t *testing.T) {
		store := new(MockStore)
		store.On("List", mock.Anything, "users").Return([]models.Document{{ID: "u1", Fields: models.Fields{}}}, nil)
		store.On("UpdateFields", mock.Anything, "users", "u1", mock.Anything).Return(storage.ErrNotFound).Once()

		_, err := newService(store, cache.Nop{}).Activate(context.Background(), "u1", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("List", mock.Anything, "users").Return(nil, errors.New("timeout")).Once()

		_, err := newService(store, cache.Nop{}).Activate(context.Background(), "u1", 1)
		assert.ErrorIs(t, err, ErrActivate)
	})
}

func TestService_Cancel(t *testing.T) {
	store := seed(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "users", "u5", models.Fields{
		models.FieldPhone:       "0340000000",
		models.FieldLastRenewal: date(2024, 1, 1),
		models.FieldExpiresAt:   date(2024, 6, 1),
	}))
	svc := newService(store, cache.Nop{})

	view, err := svc.Cancel(ctx, "u5")
	require.NoError(t, err)
	assert.False(t, view.Active)
	assert.Equal(t, subscription.StatusInactive, view.Status)
	assert.Nil(t, view.ExpiresAt)
	require.NotNil(t, view.LastRenewal)
	assert.True(t, date(2024, 1, 1).Equal(*view.LastRenewal))

	docs, err := store.List(ctx, "users")
	require.NoError(t, err)
	for _, d := range docs {
		if d.ID == "u5" {
			assert.NotContains(t, d.Fields, models.FieldExpiresAt)
			assert.Contains(t, d.Fields, models.FieldLastRenewal)
		}
	}
}

func TestService_Cancel_Errors(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		_, err := newService(seed(t), cache.Nop{}).Cancel(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store update fails", func(t *testing.T) {
		store := new(MockStore)
		store.On("List", mock.Anything, "users").Return([]models.Document{{ID: "u1", Fields: models.Fields{}}}, nil)
		store.On("UpdateFields", mock.Anything, "users", "u1", models.Fields{models.FieldExpiresAt: nil}).
			Return(errors.New("unavailable")).Once()

		_, err := newService(store, cache.Nop{}).Cancel(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrCancel)
		store.AssertExpectations(t)
	})
}

func TestService_Expiring(t *testing.T) {
	store := seed(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "users", "soon", models.Fields{
		models.FieldEmail:     "soon@example.com",
		models.FieldExpiresAt: now.Add(48 * time.Hour),
	}))
	require.NoError(t, store.Put(ctx, "users", "soon-no-email", models.Fields{
		models.FieldExpiresAt: now.Add(24 * time.Hour),
	}))

	views, err := newService(store, cache.Nop{}).Expiring(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"soon"}, ids(views))
}

func TestService_Location(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "users", "u1", models.Fields{models.FieldPhone: "034"}))

	// 31 января 22:00 UTC — уже 1 февраля в EAT
	svc := New(store, cache.Nop{}, sl.Discard(), Options{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC) },
	})

	view, err := svc.Activate(ctx, "u1", 1)
	require.NoError(t, err)
	want := time.Date(2024, 3, 1, 1, 0, 0, 0, loc)
	assert.True(t, want.Equal(*view.ExpiresAt), "expiry %v, want %v", *view.ExpiresAt, want)
}

func TestService_Location_ExtendsStoredExpiry(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	store := memory.New()
	ctx := context.Background()
	// хранилище отдаёт время в UTC: 31 января 00:30 по EAT
	require.NoError(t, store.Put(ctx, "users", "u1", models.Fields{
		models.FieldPhone:     "034",
		models.FieldExpiresAt: "2024-01-30T21:30:00Z",
	}))

	svc := New(store, cache.Nop{}, sl.Discard(), Options{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC) },
	})

	view, err := svc.Activate(ctx, "u1", 1)
	require.NoError(t, err)
	want := time.Date(2024, 2, 29, 0, 30, 0, 0, loc)
	assert.True(t, want.Equal(*view.ExpiresAt), "expiry %v, want %v", *view.ExpiresAt, want)
	assert.Equal(t, 1, view.RemainingMonths)
}

func TestService_Location_RosterRemainingMonths(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "users", "u1", models.Fields{
		models.FieldPhone:     "034",
		models.FieldExpiresAt: "2024-01-31T23:00:00Z",
	}))

	svc := New(store, cache.Nop{}, sl.Discard(), Options{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC) },
	})

	views, err := svc.Roster(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Active)
	assert.Equal(t, 0, views[0].RemainingMonths)
}
