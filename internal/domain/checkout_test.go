package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		name      string
		from      Step
		action    Action
		cartEmpty bool
		want      Step
		effect    Effect
		wantErr   error
	}{
		{"open from closed", StepClosed, ActionOpen, true, StepCart, EffectNone, nil},
		{"proceed with items", StepCart, ActionProceed, false, StepCheckout, EffectNone, nil},
		{"proceed with empty cart", StepCart, ActionProceed, true, StepCart, EffectNone, ErrEmptyCart},
		{"back to cart", StepCheckout, ActionBack, false, StepCart, EffectNone, nil},
		{"confirm", StepCheckout, ActionConfirm, false, StepConfirmation, EffectNotifySuccess, nil},
		{"finish", StepConfirmation, ActionFinish, false, StepClosed, EffectClearCart, nil},
		{"close from cart", StepCart, ActionClose, false, StepClosed, EffectNone, nil},
		{"close from checkout", StepCheckout, ActionClose, false, StepClosed, EffectNone, nil},
		{"close from confirmation", StepConfirmation, ActionClose, false, StepClosed, EffectNone, nil},
		{"close when closed", StepClosed, ActionClose, false, StepClosed, EffectNone, nil},
		{"confirm from cart", StepCart, ActionConfirm, false, StepCart, EffectNone, ErrInvalidTransition},
		{"finish from checkout", StepCheckout, ActionFinish, false, StepCheckout, EffectNone, ErrInvalidTransition},
		{"open twice", StepCart, ActionOpen, false, StepCart, EffectNone, ErrInvalidTransition},
		{"back from confirmation", StepConfirmation, ActionBack, false, StepConfirmation, EffectNone, ErrInvalidTransition},
		{"proceed when closed", StepClosed, ActionProceed, false, StepClosed, EffectNone, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, effect, err := Transition(tt.from, tt.action, tt.cartEmpty)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.effect, effect)
		})
	}
}

func TestTransition_AllowedActionsAgree(t *testing.T) {
	steps := []Step{StepClosed, StepCart, StepCheckout, StepConfirmation}
	actions := []Action{ActionOpen, ActionProceed, ActionBack, ActionConfirm, ActionFinish, ActionClose}

	for _, step := range steps {
		allowed := map[Action]bool{}
		for _, a := range AllowedActions(step) {
			allowed[a] = true
		}
		for _, a := range actions {
			_, _, err := Transition(step, a, false)
			assert.Equal(t, allowed[a], err == nil, "step=%s action=%s", step, a)
		}
	}
}

func TestParseStep(t *testing.T) {
	assert.Equal(t, StepCheckout, ParseStep("checkout"))
	assert.Equal(t, StepClosed, ParseStep(""))
	assert.Equal(t, StepClosed, ParseStep("garbage"))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("confirm")
	require.NoError(t, err)
	assert.Equal(t, ActionConfirm, a)

	_, err = ParseAction("pay")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
