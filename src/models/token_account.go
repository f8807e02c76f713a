package models

import (
	"github.com/gagliardetto/solana-go"
)

// RentExemptLamports is the rent deposit of a 165-byte token account.
const RentExemptLamports uint64 = 2039280

// TokenAccount is a custody vault or wallet token account. It holds exactly one mint.
type TokenAccount struct {
	Address  solana.PublicKey `json:"address"`
	Owner    solana.PublicKey `json:"owner"`
	Mint     solana.PublicKey `json:"mint"`
	Amount   uint64           `json:"amount"`
	Lamports uint64           `json:"lamports"`
}

func (a *TokenAccount) OwnedBy(owner solana.PublicKey) bool {
	return a != nil && a.Owner.Equals(owner)
}
