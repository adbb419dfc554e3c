package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harmonyeco/gec-subscriptions/internal/cache"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/rabbitmq"
	"github.com/harmonyeco/gec-subscriptions/internal/lib/sl"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Expiring(ctx context.Context, window time.Duration) ([]models.UserView, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserView), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

func ptr[T any](v T) *T { return &v }

func expiring(id string) models.UserView {
	return models.UserView{
		User: models.User{
			ID:        id,
			Name:      ptr("Rakoto"),
			Email:     ptr(id + "@example.com"),
			ExpiresAt: ptr(time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)),
		},
		Active: true,
		Status: "active",
	}
}

const window = 72 * time.Hour

func TestService_NotifyExpiring(t *testing.T) {
	users := new(MockUsers)
	pub := new(MockPublisher)
	users.On("Expiring", mock.Anything, window).Return([]models.UserView{expiring("u1"), expiring("u2")}, nil)
	pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyExpiring, mock.MatchedBy(func(n models.ExpiryNotice) bool {
		return n.EventID != "" && n.Email == n.UserID+"@example.com" && n.Name == "Rakoto"
	})).Return(nil).Twice()

	svc := NewSchedulerService(users, pub, cache.NewLocal(time.Hour), sl.Discard(), time.Hour, window)

	sent, err := svc.NotifyExpiring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	// повторный проход не дублирует уведомления
	sent, err = svc.NotifyExpiring(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	pub.AssertExpectations(t)
}

func TestService_NotifyExpiring_PublishError(t *testing.T) {
	users := new(MockUsers)
	pub := new(MockPublisher)
	users.On("Expiring", mock.Anything, window).Return([]models.UserView{expiring("u1"), expiring("u2")}, nil)
	pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyExpiring, mock.MatchedBy(func(n models.ExpiryNotice) bool {
		return n.UserID == "u1"
	})).Return(errors.New("channel closed"))
	pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyExpiring, mock.MatchedBy(func(n models.ExpiryNotice) bool {
		return n.UserID == "u2"
	})).Return(nil)

	svc := NewSchedulerService(users, pub, cache.NewLocal(time.Hour), sl.Discard(), time.Hour, window)

	sent, err := svc.NotifyExpiring(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// неудачное уведомление повторяется на следующем проходе
	sent, err = svc.NotifyExpiring(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	pub.AssertNumberOfCalls(t, "Publish", 3)
}

func TestService_NotifyExpiring_SourceError(t *testing.T) {
	users := new(MockUsers)
	pub := new(MockPublisher)
	users.On("Expiring", mock.Anything, window).Return(nil, errors.New("failed to load users"))

	svc := NewSchedulerService(users, pub, cache.Nop{}, sl.Discard(), time.Hour, window)

	_, err := svc.NotifyExpiring(context.Background())
	assert.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_StopsOnCancel(t *testing.T) {
	users := new(MockUsers)
	users.On("Expiring", mock.Anything, window).Return([]models.UserView{}, nil)

	svc := NewSchedulerService(users, new(MockPublisher), cache.Nop{}, sl.Discard(), time.Hour, window)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	users.AssertCalled(t, "Expiring", mock.Anything, window)
}
