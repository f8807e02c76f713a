// Package fees computes the performance fee charged on realized profit at withdrawal.
package fees

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

const bpsDenominator = 10000

// Fee is the split of a vault balance at withdrawal.
type Fee struct {
	Profit  uint64 `json:"profit"`
	Amount  uint64 `json:"amount"`
	Net     uint64 `json:"net"`
	RateBps uint16 `json:"rateBps"`
}

// Percent renders the rate, 250 bps is "2.5".
func (f Fee) Percent() string {
	return decimal.New(int64(f.RateBps), -2).String()
}

// Compute splits balance into fee and net proceeds. The product profit*rate is formed in
// 256 bits; a fee that does not fit back into 64 bits, or exceeds the balance, is an
// ArithmeticOverflow. An empty vault is rejected before any math.
func Compute(balance, costBasis uint64, rateBps uint16) (Fee, error) {
	if balance == 0 {
		return Fee{}, errcode.New(errcode.EmptyVault)
	}
	fee := Fee{RateBps: rateBps, Net: balance}
	if balance <= costBasis {
		return fee, nil
	}
	fee.Profit = balance - costBasis

	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(fee.Profit), uint256.NewInt(uint64(rateBps)))
	if overflow {
		return Fee{}, errcode.Newf(errcode.ArithmeticOverflow, "profit %d * rate %d", fee.Profit, rateBps)
	}
	amount := new(uint256.Int).Div(product, uint256.NewInt(bpsDenominator))
	if !amount.IsUint64() {
		return Fee{}, errcode.Newf(errcode.ArithmeticOverflow, "fee does not fit 64 bits")
	}
	fee.Amount = amount.Uint64()
	if fee.Amount > balance {
		return Fee{}, errcode.Newf(errcode.ArithmeticOverflow, "fee %d exceeds balance %d", fee.Amount, balance)
	}
	fee.Net = balance - fee.Amount
	return fee, nil
}

// SelectRate picks the subscribed rate while the manager's subscription is active. A
// project replaces the base rate and caps the subscribed one.
func SelectRate(manager *models.Manager, config *models.Config, project *models.Project, now int64) uint16 {
	base, subscribed := config.PerformanceFee, config.SubscribedPerformanceFee
	if project != nil {
		base = project.PerformanceFee
		if base < subscribed {
			subscribed = base
		}
	}
	if manager.IsSubscribed(now) {
		return subscribed
	}
	return base
}
