package lifecycle

import (
	"context"

	"github.com/qmuntal/stateless"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

const (
	TriggerSwap       = "Swap"
	TriggerLiquidate  = "Liquidate"
	TriggerCloseVault = "CloseVault"
	TriggerWithdraw   = "Withdraw"
)

/*
	Order life cycle:
		1) deposit opens the order Funded, all value in the order vault
		2) a swap moves part of it into a token vault, the order is Trading (more swaps stay there)
		3) liquidating or closing a token vault removes it from the order; the order is Funded
		   again once no token vault is left open
		4) a withdraw pays out and closes the order, only with no token vault open
*/
func newMachine(order *models.Order, initState models.OrderStatus) *stateless.StateMachine {
	drained := func(_ context.Context, _ ...interface{}) bool {
		return len(order.TokenVaults) == 0
	}
	holding := func(ctx context.Context, args ...interface{}) bool {
		return !drained(ctx, args...)
	}
	State := stateless.NewStateMachine(initState)
	State.Configure(models.OrderFunded).
		Permit(TriggerSwap, models.OrderTrading).
		PermitReentry(TriggerCloseVault).
		Permit(TriggerWithdraw, models.OrderClosed, drained)
	State.Configure(models.OrderTrading).
		PermitReentry(TriggerSwap).
		Permit(TriggerLiquidate, models.OrderFunded, drained).
		PermitReentry(TriggerLiquidate, holding).
		Permit(TriggerCloseVault, models.OrderFunded, drained).
		PermitReentry(TriggerCloseVault, holding)
	return State
}

// Fire moves order to the next status. The order is left as is when trigger is not
// permitted from its current status. Guards read order.TokenVaults, so the vault set must
// already reflect the operation.
func Fire(ctx context.Context, order *models.Order, trigger string) error {
	status := order.Status
	if status == "" {
		status = models.OrderFunded
	}
	State := newMachine(order, status)
	if ok, _ := State.CanFire(trigger); !ok {
		return errcode.Newf(errcode.InvalidOrderState, "%s is not allowed while order is %s", trigger, status)
	}
	if err := State.FireCtx(ctx, trigger); err != nil {
		return errcode.Newf(errcode.InvalidOrderState, "%s: %v", trigger, err)
	}
	order.Status = State.MustState().(models.OrderStatus)
	return nil
}

// Permitted reports whether trigger may fire from the order's status without changing it.
func Permitted(order *models.Order, trigger string) bool {
	status := order.Status
	if status == "" {
		status = models.OrderFunded
	}
	ok, _ := newMachine(order, status).CanFire(trigger)
	return ok
}
