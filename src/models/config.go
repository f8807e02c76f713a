package models

import (
	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
)

// MaxFeeBps is 100%.
const MaxFeeBps uint16 = 10000

// Config is the global fee policy. A fee of 250 corresponds to 2.5%.
type Config struct {
	Address                  solana.PublicKey `json:"address"`
	Authority                solana.PublicKey `json:"authority"`
	PaymentMint              solana.PublicKey `json:"paymentMint"`
	PaymentReceiver          solana.PublicKey `json:"paymentReceiver"`
	PerformanceReceiver      solana.PublicKey `json:"performanceReceiver"`
	MonthlyAmount            uint64           `json:"monthlyAmount"`
	YearlyAmount             uint64           `json:"yearlyAmount"`
	SubscribedPerformanceFee uint16           `json:"subscribedPerformanceFee"`
	PerformanceFee           uint16           `json:"performanceFee"`
	Bump                     uint8            `json:"bump"`
}

func (c *Config) Validate() error {
	if err := ValidateFeeBps(c.PerformanceFee); err != nil {
		return err
	}
	return ValidateFeeBps(c.SubscribedPerformanceFee)
}

// Project is a per-integrator override of the base performance fee. Fees owed to a
// project accumulate in the associated token accounts of the project address.
type Project struct {
	Address        solana.PublicKey `json:"address"`
	Authority      solana.PublicKey `json:"authority"`
	PerformanceFee uint16           `json:"performanceFee"`
	Bump           uint8            `json:"bump"`
}

func ValidateFeeBps(bps uint16) error {
	if bps > MaxFeeBps {
		return errcode.Newf(errcode.IncorrectFee, "%d bps exceeds %d", bps, MaxFeeBps)
	}
	return nil
}
