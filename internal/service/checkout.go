package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// Error codes returned for checkout operations.
const (
	CodeEmptyCart         = "EMPTY_CART"
	CodeInvalidTransition = "INVALID_TRANSITION"
)

// PurchaseCompletedMessage is the notification shown after confirmation.
const PurchaseCompletedMessage = "¡Compra realizada con éxito!"

// Notification is a transient message for the shopper.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CheckoutView is the state of the checkout flow of a session.
type CheckoutView struct {
	Step           domain.Step        `json:"step"`
	AllowedActions []domain.Action    `json:"allowed_actions"`
	Cart           domain.CartSummary `json:"cart"`
	Notification   *Notification      `json:"notification,omitempty"`
}

// CheckoutService drives the checkout state machine of a session.
type CheckoutService struct {
	steps  repository.CheckoutStepRepository
	carts  *CartService
	events EventPublisher
	logger *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(steps repository.CheckoutStepRepository, carts *CartService, events EventPublisher, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		steps:  steps,
		carts:  carts,
		events: events,
		logger: logger,
	}
}

// GetCheckout returns the current step. An unreadable step reads as closed.
func (s *CheckoutService) GetCheckout(ctx context.Context, sessionID string) *CheckoutView {
	step := s.currentStep(ctx, sessionID)
	return s.view(step, s.carts.GetCart(ctx, sessionID), nil)
}

// Apply performs action on the session's checkout flow. Rejected actions
// leave the step unchanged.
func (s *CheckoutService) Apply(ctx context.Context, sessionID string, action domain.Action) (*CheckoutView, error) {
	from := s.currentStep(ctx, sessionID)
	summary := s.carts.GetCart(ctx, sessionID)

	to, effect, err := domain.Transition(from, action, summary.IsEmpty())
	if err != nil {
		return nil, transitionError(err, from, action)
	}

	var note *Notification
	switch effect {
	case domain.EffectNotifySuccess:
		note = &Notification{Type: "success", Message: PurchaseCompletedMessage}
		if err := s.events.PublishCheckoutConfirmed(ctx, sessionID, summary); err != nil {
			s.carts.warnPublish(ctx, "checkout.confirmed", err)
		}
	case domain.EffectClearCart:
		summary = s.carts.ClearCart(ctx, sessionID, ClearReasonCheckout)
	}

	if err := s.steps.SetStep(ctx, sessionID, to); err != nil {
		return nil, fmt.Errorf("save checkout step: %w", err)
	}

	logger.WithContext(ctx, s.logger).Info("checkout transition",
		slog.String("from", string(from)),
		slog.String("action", string(action)),
		slog.String("to", string(to)),
	)

	return s.view(to, summary, note), nil
}

func (s *CheckoutService) currentStep(ctx context.Context, sessionID string) domain.Step {
	step, err := s.steps.GetStep(ctx, sessionID)
	if err != nil {
		logger.WithContext(ctx, s.logger).Warn("checkout step unreadable, treating as closed",
			slog.String("error", err.Error()),
		)
		return domain.StepClosed
	}
	return step
}

func (s *CheckoutService) view(step domain.Step, cart domain.CartSummary, note *Notification) *CheckoutView {
	return &CheckoutView{
		Step:           step,
		AllowedActions: domain.AllowedActions(step),
		Cart:           cart,
		Notification:   note,
	}
}

func transitionError(err error, from domain.Step, action domain.Action) error {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		appErr = apperrors.Conflict(CodeEmptyCart, "cannot proceed to checkout with an empty cart")
	case errors.Is(err, domain.ErrInvalidTransition):
		appErr = apperrors.Conflict(CodeInvalidTransition,
			fmt.Sprintf("action %q is not allowed in step %q", action, from))
	default:
		return apperrors.Internal(err)
	}
	return appErr.
		WithDetail("step", string(from)).
		WithDetail("allowed_actions", domain.AllowedActions(from))
}
