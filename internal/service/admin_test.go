package service

import (
	"context"
	"sync"
	"testing"

	"digistore/internal/domain"
	"digistore/internal/notify"
	"digistore/internal/repository/memory"
	"digistore/internal/session"
	"digistore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testAdminID  int64 = 1001
	testAdmin2ID int64 = 1002
	testBuyerID  int64 = 2001
)

type storeFixture struct {
	store    *memory.Store
	notifier *testutil.MockNotifier
	orders   *OrderService
	admin    *AdminService
	intake   *IntakeService
	buyer    domain.User
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	ctx := context.Background()
	logger := testutil.NewTestLogger()
	store := memory.NewStore()

	buyer := testutil.NewTestUser(testBuyerID, "buyer")
	require.NoError(t, store.EnsureUserExists(ctx, buyer))

	notifier := new(testutil.MockNotifier)
	notifier.On("OrderStatusChanged", mock.Anything, mock.Anything).Return(notify.Result{Attempted: 1})
	notifier.On("OrderAwaitingReview", mock.Anything, mock.Anything, mock.Anything).Return(notify.Result{Attempted: 2})

	auth := NewAuthService(store, []int64{testAdminID, testAdmin2ID})
	orders := NewOrderService(store, notifier, logger)
	stats := NewStatsService(store, logger)

	return &storeFixture{
		store:    store,
		notifier: notifier,
		orders:   orders,
		admin:    NewAdminService(auth, orders, stats, logger),
		intake:   NewIntakeService(session.NewStore(), NewPricer(testutil.NewTestPriceList()), orders, false, logger),
		buyer:    buyer,
	}
}

// placeStarsOrder walks the buyer through the stars conversation: alice, 100 stars, card
func (f *storeFixture) placeStarsOrder(t *testing.T) *domain.Order {
	t.Helper()

	_, err := f.intake.Begin(f.buyer.ID, domain.KindStars)
	require.NoError(t, err)
	_, err = f.intake.HandleText(f.buyer.ID, "alice")
	require.NoError(t, err)
	_, err = f.intake.HandleText(f.buyer.ID, "100")
	require.NoError(t, err)

	reply, err := f.intake.SelectPayment(context.Background(), f.buyer.ID, domain.PaymentCard)
	require.NoError(t, err)
	require.Equal(t, ReplyOrderCreated, reply.Kind)
	return reply.Order
}

func TestAdminService_ConfirmAndComplete(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)

	order := f.placeStarsOrder(t)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.InDelta(t, 150.0, order.AmountRUB, 1e-9)

	waiting, err := f.orders.SubmitPayment(ctx, f.buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, waiting.Status)
	f.notifier.AssertCalled(t, "OrderAwaitingReview", mock.Anything, mock.Anything, f.buyer)

	paid, err := f.admin.ConfirmPayment(ctx, testAdminID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Nil(t, paid.CompletedAt)

	completed, err := f.admin.Complete(ctx, testAdminID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, *paid.PaidAt, *completed.PaidAt)

	f.notifier.AssertNumberOfCalls(t, "OrderStatusChanged", 2)

	stored, err := f.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, stored.AmountRUB, 1e-9)
	assert.InDelta(t, 150.0/84.0, stored.AmountUSD, 1e-9)

	_, err = f.admin.Complete(ctx, testAdminID, order.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	f.notifier.AssertNumberOfCalls(t, "OrderStatusChanged", 2)
}

func TestAdminService_CancelThenConfirm(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)

	order := f.placeStarsOrder(t)
	_, err := f.orders.SubmitPayment(ctx, f.buyer, order.ID)
	require.NoError(t, err)

	cancelled, err := f.admin.Cancel(ctx, testAdminID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.PaidAt)
	assert.Nil(t, cancelled.CompletedAt)

	_, err = f.admin.ConfirmPayment(ctx, testAdminID, order.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	stored, err := f.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Nil(t, stored.PaidAt)
}

func TestAdminService_NotFoundVsIllegal(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)

	_, err := f.admin.ConfirmPayment(ctx, testAdminID, 999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.NotErrorIs(t, err, domain.ErrIllegalTransition)

	order := f.placeStarsOrder(t)
	_, err = f.admin.ConfirmPayment(ctx, testAdminID, order.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.NotErrorIs(t, err, domain.ErrOrderNotFound)

	f.notifier.AssertNotCalled(t, "OrderStatusChanged", mock.Anything, mock.Anything)
}

func TestAdminService_ConcurrentConfirm(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)

	order := f.placeStarsOrder(t)
	_, err := f.orders.SubmitPayment(ctx, f.buyer, order.ID)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		results = make([]error, 2)
	)
	for i, adminID := range []int64{testAdminID, testAdmin2ID} {
		wg.Add(1)
		go func(i int, adminID int64) {
			defer wg.Done()
			_, results[i] = f.admin.ConfirmPayment(ctx, adminID, order.ID)
		}(i, adminID)
	}
	wg.Wait()

	succeeded, illegal := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, domain.ErrIllegalTransition):
			illegal++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, illegal)
	f.notifier.AssertNumberOfCalls(t, "OrderStatusChanged", 1)
}

func TestAdminService_Inspect(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)

	order := f.placeStarsOrder(t)
	_, err := f.orders.SubmitPayment(ctx, f.buyer, order.ID)
	require.NoError(t, err)

	inspected, actions, err := f.admin.Inspect(ctx, testAdminID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, inspected.ID)
	assert.Equal(t, []domain.Action{domain.ActionConfirm, domain.ActionCancel}, actions)

	_, _, err = f.admin.Inspect(ctx, testAdminID, 999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestAdminService_Dashboards(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture(t)

	first := f.placeStarsOrder(t)
	second := f.placeStarsOrder(t)
	_, err := f.orders.SubmitPayment(ctx, f.buyer, second.ID)
	require.NoError(t, err)
	_, err = f.admin.ConfirmPayment(ctx, testAdminID, second.ID)
	require.NoError(t, err)

	pending, err := f.admin.PendingReview(ctx, testAdminID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	paid, err := f.admin.AwaitingFulfillment(ctx, testAdminID)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, second.ID, paid[0].ID)

	_, err = f.admin.Complete(ctx, testAdminID, second.ID)
	require.NoError(t, err)

	stats, err := f.admin.Stats(ctx, testAdminID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.InDelta(t, 150.0, stats.CompletedRevenueRUB, 1e-9)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 0, stats.PaidOrders)
}

func TestAdminService_DeniesNonAdmin(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(testutil.MockOrderRepository)
	mockUsers := new(testutil.MockUserRepository)
	mockNotifier := new(testutil.MockNotifier)
	logger := testutil.NewTestLogger()

	auth := NewAuthService(mockUsers, []int64{testAdminID})
	orders := NewOrderService(mockRepo, mockNotifier, logger)
	admin := NewAdminService(auth, orders, NewStatsService(mockRepo, logger), logger)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "confirm", call: func() error { _, err := admin.ConfirmPayment(ctx, testBuyerID, 1); return err }},
		{name: "complete", call: func() error { _, err := admin.Complete(ctx, testBuyerID, 1); return err }},
		{name: "cancel", call: func() error { _, err := admin.Cancel(ctx, testBuyerID, 1); return err }},
		{name: "inspect", call: func() error { _, _, err := admin.Inspect(ctx, testBuyerID, 1); return err }},
		{name: "pending", call: func() error { _, err := admin.PendingReview(ctx, testBuyerID); return err }},
		{name: "paid", call: func() error { _, err := admin.AwaitingFulfillment(ctx, testBuyerID); return err }},
		{name: "stats", call: func() error { _, err := admin.Stats(ctx, testBuyerID); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), domain.ErrUnauthorized)
		})
	}

	assert.Empty(t, mockRepo.Calls)
	assert.Empty(t, mockNotifier.Calls)
}
