package domain

import (
	"errors"
	"fmt"
)

// Step is the position of a session in the checkout flow.
type Step string

const (
	StepClosed       Step = "closed"
	StepCart         Step = "cart"
	StepCheckout     Step = "checkout"
	StepConfirmation Step = "confirmation"
)

// Action is a shopper-triggered checkout transition.
type Action string

const (
	ActionOpen    Action = "open"
	ActionProceed Action = "proceed"
	ActionBack    Action = "back"
	ActionConfirm Action = "confirm"
	ActionFinish  Action = "finish"
	ActionClose   Action = "close"
)

// Checkout flow errors.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrUnknownAction     = errors.New("unknown checkout action")
)

// Effect is a side effect the caller must carry out after a transition.
type Effect int

const (
	EffectNone Effect = iota
	// EffectNotifySuccess asks for a transient purchase-completed notification.
	EffectNotifySuccess
	// EffectClearCart asks for the cart to be emptied.
	EffectClearCart
)

// ParseStep converts a stored value to a Step. Unknown values yield closed.
func ParseStep(s string) Step {
	switch Step(s) {
	case StepCart, StepCheckout, StepConfirmation:
		return Step(s)
	default:
		return StepClosed
	}
}

// ParseAction validates a textual action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionOpen, ActionProceed, ActionBack, ActionConfirm, ActionFinish, ActionClose:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Transition computes the next step for action taken at from. cartEmpty is
// only consulted when proceeding to checkout. On error the step is unchanged.
//
//	closed       --open-->    cart
//	cart         --proceed--> checkout      (cart must not be empty)
//	checkout     --back-->    cart
//	checkout     --confirm--> confirmation  (notify success)
//	confirmation --finish-->  closed        (clear cart)
//	any          --close-->   closed
func Transition(from Step, action Action, cartEmpty bool) (Step, Effect, error) {
	switch {
	case action == ActionClose:
		return StepClosed, EffectNone, nil
	case from == StepClosed && action == ActionOpen:
		return StepCart, EffectNone, nil
	case from == StepCart && action == ActionProceed:
		if cartEmpty {
			return from, EffectNone, ErrEmptyCart
		}
		return StepCheckout, EffectNone, nil
	case from == StepCheckout && action == ActionBack:
		return StepCart, EffectNone, nil
	case from == StepCheckout && action == ActionConfirm:
		return StepConfirmation, EffectNotifySuccess, nil
	case from == StepConfirmation && action == ActionFinish:
		return StepClosed, EffectClearCart, nil
	default:
		return from, EffectNone, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
	}
}

// AllowedActions lists the actions accepted at step, in display order.
func AllowedActions(step Step) []Action {
	switch step {
	case StepClosed:
		return []Action{ActionOpen, ActionClose}
	case StepCart:
		return []Action{ActionProceed, ActionClose}
	case StepCheckout:
		return []Action{ActionBack, ActionConfirm, ActionClose}
	case StepConfirmation:
		return []Action{ActionFinish, ActionClose}
	default:
		return nil
	}
}
