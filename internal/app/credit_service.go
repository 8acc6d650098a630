package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"quickgpt/internal/config"
	"quickgpt/internal/model"
	"quickgpt/internal/repository"
)

type Plan struct {
	ID       string   `json:"_id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Credits  int      `json:"credits"`
	Features []string `json:"features"`
}

type PurchaseResult struct {
	Purchase *model.Purchase
	URL      string
}

type CreditService struct {
	purchaseRepo *repository.PurchaseRepository
	plans        []Plan
	checkoutURL  string
}

func NewCreditService(purchaseRepo *repository.PurchaseRepository, plans []config.PlanConfig, checkoutURL string) *CreditService {
	catalog := make([]Plan, 0, len(plans))
	for _, p := range plans {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		catalog = append(catalog, Plan{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Credits:  p.Credits,
			Features: features,
		})
	}
	return &CreditService{
		purchaseRepo: purchaseRepo,
		plans:        catalog,
		checkoutURL:  checkoutURL,
	}
}

func (s *CreditService) Plans() []Plan {
	return s.plans
}

func (s *CreditService) plan(id string) (Plan, bool) {
	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// Purchase opens an unpaid purchase for the plan and returns the checkout
// URL the client should be sent to. Credits are granted by ConfirmPayment.
func (s *CreditService) Purchase(ctx context.Context, userID uint, planID string) (*PurchaseResult, error) {
	if userID == 0 || planID == "" {
		return nil, ErrInvalidInput
	}
	plan, ok := s.plan(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}

	purchase := &model.Purchase{
		UserID:  userID,
		PlanID:  plan.ID,
		Amount:  plan.Price,
		Credits: plan.Credits,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	checkout, err := s.buildCheckoutURL(purchase)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase, URL: checkout}, nil
}

// ConfirmPayment marks the purchase paid and credits the buyer. It reports
// false when the purchase had already been paid.
func (s *CreditService) ConfirmPayment(ctx context.Context, purchaseID uint) (bool, error) {
	if purchaseID == 0 {
		return false, ErrInvalidInput
	}
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return false, err
	}
	if purchase == nil {
		return false, ErrPurchaseNotFound
	}
	return s.purchaseRepo.MarkPaid(ctx, purchaseID)
}

func (s *CreditService) buildCheckoutURL(purchase *model.Purchase) (string, error) {
	u, err := url.Parse(s.checkoutURL)
	if err != nil {
		return "", fmt.Errorf("parse checkout url failed: %w", err)
	}
	q := u.Query()
	q.Set("purchaseId", strconv.FormatUint(uint64(purchase.ID), 10))
	q.Set("planId", purchase.PlanID)
	q.Set("amount", strconv.Itoa(purchase.Amount))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
