package models

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

type JournalKind string

const (
	JournalWithdraw     JournalKind = "withdraw"
	JournalSubscription JournalKind = "subscription"
	JournalFeeSweep     JournalKind = "fee_sweep"
)

// JournalEntry is one audited fee-bearing event.
type JournalEntry struct {
	Kind       JournalKind      `json:"kind"`
	Manager    solana.PublicKey `json:"manager"`
	Order      solana.PublicKey `json:"order"`
	Mint       solana.PublicKey `json:"mint"`
	Amount     uint64           `json:"amount"`
	Fee        uint64           `json:"fee"`
	RateBps    uint16           `json:"rateBps"`
	Settlement string           `json:"settlement"`
	At         time.Time        `json:"at"`
}
