package app

import (
	"context"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgpt/internal/config"
	"quickgpt/internal/repository"
)

var testPlans = []config.PlanConfig{
	{ID: "basic", Name: "Basic", Price: 10, Credits: 100, Features: []string{"100 text generations"}},
	{ID: "pro", Name: "Pro", Price: 20, Credits: 500},
}

func TestCreditService_Plans(t *testing.T) {
	svc := NewCreditService(nil, testPlans, "https://pay.example/checkout")
	plans := svc.Plans()
	require.Len(t, plans, 2)
	assert.Equal(t, "basic", plans[0].ID)
	assert.NotNil(t, plans[1].Features)
}

func TestCreditService_PurchaseAndConfirm(t *testing.T) {
	db := newTestDB(t)
	svc := NewCreditService(repository.NewPurchaseRepository(db), testPlans, "https://pay.example/checkout?src=app")
	ctx := context.Background()
	user := createUser(t, db, "buyer", 3)

	result, err := svc.Purchase(ctx, user.ID, "pro")
	require.NoError(t, err)
	assert.False(t, result.Purchase.IsPaid)
	assert.Equal(t, 500, result.Purchase.Credits)

	u, err := url.Parse(result.URL)
	require.NoError(t, err)
	assert.Equal(t, "pay.example", u.Host)
	assert.Equal(t, "app", u.Query().Get("src"))
	assert.Equal(t, strconv.FormatUint(uint64(result.Purchase.ID), 10), u.Query().Get("purchaseId"))
	assert.Equal(t, 3, balance(t, db, user.ID), "credits wait for payment")

	paid, err := svc.ConfirmPayment(ctx, result.Purchase.ID)
	require.NoError(t, err)
	assert.True(t, paid)
	assert.Equal(t, 503, balance(t, db, user.ID))

	paid, err = svc.ConfirmPayment(ctx, result.Purchase.ID)
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Equal(t, 503, balance(t, db, user.ID))
}

func TestCreditService_Errors(t *testing.T) {
	db := newTestDB(t)
	svc := NewCreditService(repository.NewPurchaseRepository(db), testPlans, "https://pay.example/checkout")
	ctx := context.Background()
	user := createUser(t, db, "buyer", 0)

	_, err := svc.Purchase(ctx, user.ID, "platinum")
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = svc.Purchase(ctx, user.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ConfirmPayment(ctx, 999)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}
