package vault

import (
	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/fees"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/subscription"
)

type InitConfigRequest struct {
	Signer                   solana.PublicKey `json:"signer"`
	PaymentMint              solana.PublicKey `json:"paymentMint"`
	PaymentReceiver          solana.PublicKey `json:"paymentReceiver"`
	PerformanceReceiver      solana.PublicKey `json:"performanceReceiver"`
	MonthlyAmount            uint64           `json:"monthlyAmount"`
	YearlyAmount             uint64           `json:"yearlyAmount"`
	SubscribedPerformanceFee uint16           `json:"subscribedPerformanceFee"`
	PerformanceFee           uint16           `json:"performanceFee"`
}

// EditConfigFeeRequest changes only the fields that are set.
type EditConfigFeeRequest struct {
	Signer                   solana.PublicKey `json:"signer"`
	PerformanceFee           *uint16          `json:"performanceFee,omitempty"`
	SubscribedPerformanceFee *uint16          `json:"subscribedPerformanceFee,omitempty"`
}

type InitProjectRequest struct {
	Signer         solana.PublicKey `json:"signer"`
	PerformanceFee uint16           `json:"performanceFee"`
}

type EditProjectFeeRequest struct {
	Signer         solana.PublicKey `json:"signer"`
	PerformanceFee uint16           `json:"performanceFee"`
}

type WithdrawFeesRequest struct {
	Signer solana.PublicKey `json:"signer"`
	Mint   solana.PublicKey `json:"mint"`
}

type InitManagerRequest struct {
	Signer     solana.PublicKey `json:"signer"`
	Delegate   solana.PublicKey `json:"delegate"`
	Project    solana.PublicKey `json:"project,omitempty"`
	StableMint solana.PublicKey `json:"stableMint"`
}

type PaySubscriptionRequest struct {
	Signer  solana.PublicKey `json:"signer"`
	Manager solana.PublicKey `json:"manager"`
	Amount  uint64           `json:"amount"`
}

type DepositRequest struct {
	Signer      solana.PublicKey `json:"signer"`
	Manager     solana.PublicKey `json:"manager"`
	ID          solana.PublicKey `json:"id"`
	DepositMint solana.PublicKey `json:"depositMint"`
	Amount      uint64           `json:"amount"`
}

type WithdrawRequest struct {
	Signer solana.PublicKey `json:"signer"`
	Order  solana.PublicKey `json:"order"`
}

type TokenVaultRequest struct {
	Signer solana.PublicKey `json:"signer"`
	Order  solana.PublicKey `json:"order"`
	Mint   solana.PublicKey `json:"mint"`
}

// SwapRequest is an owner trade out of the deposit mint into OutputMint.
type SwapRequest struct {
	Signer      solana.PublicKey        `json:"signer"`
	Order       solana.PublicKey        `json:"order"`
	OutputMint  solana.PublicKey        `json:"outputMint"`
	Instruction models.VenueInstruction `json:"instruction"`
}

// LiquidateRequest brings a trading order back into its deposit mint. VaultA and VaultB
// are the order vault and the token vault, in any order.
type LiquidateRequest struct {
	Signer      solana.PublicKey        `json:"signer"`
	Order       solana.PublicKey        `json:"order"`
	VaultA      solana.PublicKey        `json:"vaultA"`
	VaultB      solana.PublicKey        `json:"vaultB"`
	Instruction models.VenueInstruction `json:"instruction"`
}

type Result struct {
	Settlement string `json:"settlement"`
}

type DepositResult struct {
	Result
	Order *models.Order `json:"order"`
}

type WithdrawResult struct {
	Result
	Fee      fees.Fee         `json:"fee"`
	Receiver solana.PublicKey `json:"receiver"`
}

type SubscriptionResult struct {
	Result
	Payment subscription.Payment `json:"payment"`
}

type TradeResult struct {
	Result
	Variant              string `json:"variant"`
	DestinationTolerated bool   `json:"destinationTolerated"`
	Status               string `json:"status"`
}

// Quote previews a withdrawal without side effects.
type Quote struct {
	Balance   uint64   `json:"balance"`
	CostBasis uint64   `json:"costBasis"`
	Fee       fees.Fee `json:"fee"`
	Percent   string   `json:"percent"`
}

type TokenVaultResult struct {
	Result
	Vault solana.PublicKey `json:"vault"`
}
