package app

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmailExists         = errors.New("user already exists")
	ErrInvalidCredential   = errors.New("invalid email or password")
	ErrChatNotFound        = errors.New("chat not found")
	ErrInsufficientCredits = errors.New("you don't have enough credits to use this feature")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")
)
