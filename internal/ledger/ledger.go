// Package ledger defines the transaction status state machine. Both the
// gateway confirmation path and the admin approve/refund actions go through
// the same transition table, so an illegal move is rejected in one place
// instead of by status string checks scattered across handlers.
package ledger

import (
	"fmt"

	"coursepay/internal/model"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

func (s Status) String() string {
	return string(s)
}

// Action names who is asking for a transition. The same target status can be
// legal for one actor and illegal for another (admin approve is offline-only).
type Action string

const (
	ActionGatewayConfirm Action = "gateway-confirm"
	ActionGatewayFail    Action = "gateway-fail"
	ActionAdminApprove   Action = "admin-approve"
	ActionAdminRefund    Action = "admin-refund"
)

// IllegalTransitionError is returned when a requested transition is not in
// the table. The stored status must be left untouched by the caller.
type IllegalTransitionError struct {
	From   Status
	Action Action
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transaction transition: %s not allowed from %s", e.Action, e.From)
}

// Next resolves the target status for an action applied to a transaction in
// the given state, or an IllegalTransitionError.
func Next(from Status, action Action, method model.PaymentMethod) (Status, error) {
	switch action {
	case ActionGatewayConfirm:
		if from == StatusPending {
			return StatusCompleted, nil
		}
	case ActionGatewayFail:
		if from == StatusPending {
			return StatusFailed, nil
		}
	case ActionAdminApprove:
		// approving a card transaction would bypass the gateway
		if from == StatusPending && method == model.PaymentOffline {
			return StatusCompleted, nil
		}
	case ActionAdminRefund:
		if from == StatusCompleted {
			return StatusRefunded, nil
		}
	}
	return from, &IllegalTransitionError{From: from, Action: action}
}
