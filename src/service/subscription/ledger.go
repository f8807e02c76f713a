// Package subscription extends a manager's subscription on payment.
package subscription

import (
	"math"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

const (
	MonthlyDuration int64 = 30 * 24 * 60 * 60
	YearlyDuration  int64 = 365 * 24 * 60 * 60
)

type Tier string

const (
	TierMonthly Tier = "monthly"
	TierYearly  Tier = "yearly"
)

// Payment is the outcome of an accepted payment.
type Payment struct {
	Tier     Tier   `json:"tier"`
	Amount   uint64 `json:"amount"`
	Start    int64  `json:"start"`
	NewEnd   int64  `json:"newEnd"`
	Duration int64  `json:"duration"`
}

// TierOf maps amount to a tier. Yearly wins when both prices are equal.
func TierOf(config *models.Config, amount uint64) (Tier, int64, error) {
	switch amount {
	case config.YearlyAmount:
		return TierYearly, YearlyDuration, nil
	case config.MonthlyAmount:
		return TierMonthly, MonthlyDuration, nil
	}
	return "", 0, errcode.Newf(errcode.IncorrectPaymentAmount, "%d is neither %d nor %d", amount, config.MonthlyAmount, config.YearlyAmount)
}

// Quote computes the new expiry without touching the manager. An active subscription
// extends from its expiry, an expired one from now.
func Quote(manager *models.Manager, config *models.Config, amount uint64, now int64) (Payment, error) {
	tier, duration, err := TierOf(config, amount)
	if err != nil {
		return Payment{}, err
	}
	start := now
	if manager.SubscriptionEnd > now {
		start = manager.SubscriptionEnd
	}
	if start > math.MaxInt64-duration {
		return Payment{}, errcode.Newf(errcode.ArithmeticOverflow, "%d + %d", start, duration)
	}
	return Payment{Tier: tier, Amount: amount, Start: start, NewEnd: start + duration, Duration: duration}, nil
}

// Pay writes the new expiry to manager. On error manager is left unchanged.
func Pay(manager *models.Manager, config *models.Config, amount uint64, now int64) (Payment, error) {
	p, err := Quote(manager, config, amount, now)
	if err != nil {
		return Payment{}, err
	}
	manager.SubscriptionEnd = p.NewEnd
	return p, nil
}
