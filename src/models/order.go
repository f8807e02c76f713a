package models

import (
	"github.com/gagliardetto/solana-go"
)

type OrderStatus string

const (
	// OrderFunded: all value sits in the deposit-mint order vault.
	OrderFunded OrderStatus = "Funded"
	// OrderTrading: part of the value was swapped into a token vault.
	OrderTrading OrderStatus = "Trading"
	// OrderClosed is terminal; closed orders are deleted from the store.
	OrderClosed OrderStatus = "Closed"
)

// Order is one trading position. DepositAmount is the cost basis recorded at deposit time
// and is never adjusted, whatever the vaults hold later.
type Order struct {
	Address       solana.PublicKey `json:"address"`
	ID            solana.PublicKey `json:"id"`
	Manager       solana.PublicKey `json:"manager"`
	DepositMint   solana.PublicKey `json:"depositMint"`
	OrderVault    solana.PublicKey `json:"orderVault"`
	DepositAmount uint64           `json:"depositAmount"`
	Status        OrderStatus      `json:"status"`

	// TokenVaults lists the order's open token vaults. The order can only be withdrawn
	// once every one of them is closed.
	TokenVaults []solana.PublicKey `json:"tokenVaults"`
	Bump        uint8              `json:"bump"`
}

func (o *Order) HasTokenVault(address solana.PublicKey) bool {
	for _, v := range o.TokenVaults {
		if v.Equals(address) {
			return true
		}
	}
	return false
}

func (o *Order) AddTokenVault(address solana.PublicKey) {
	if !o.HasTokenVault(address) {
		o.TokenVaults = append(o.TokenVaults, address)
	}
}

func (o *Order) RemoveTokenVault(address solana.PublicKey) {
	kept := o.TokenVaults[:0:0]
	for _, v := range o.TokenVaults {
		if !v.Equals(address) {
			kept = append(kept, v)
		}
	}
	o.TokenVaults = kept
}

// Clone returns a copy that shares no memory with o.
func (o *Order) Clone() *Order {
	c := *o
	c.TokenVaults = append([]solana.PublicKey(nil), o.TokenVaults...)
	return &c
}
