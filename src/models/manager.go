package models

import (
	"github.com/gagliardetto/solana-go"
)

// Manager is the per-user record that owns every vault of the user.
// authority: user, unique entity that can withdraw from an order vault
// delegate: crank wallet that triggers liquidations on SL/TP/time
// subscriptionEnd: while in the future the discounted performance fee applies
type Manager struct {
	Address         solana.PublicKey `json:"address"`
	Authority       solana.PublicKey `json:"authority"`
	Delegate        solana.PublicKey `json:"delegate"`
	Project         solana.PublicKey `json:"project"`
	SubscriptionEnd int64            `json:"subscriptionEnd"`
	StableMint      solana.PublicKey `json:"stableMint"`
	Bump            uint8            `json:"bump"`
}

func (m *Manager) HasProject() bool {
	return !m.Project.IsZero()
}

func (m *Manager) IsSubscribed(now int64) bool {
	return now < m.SubscriptionEnd
}

// RoleOf resolves which row of the capability table applies to signer.
func (m *Manager) RoleOf(signer solana.PublicKey) Role {
	switch {
	case signer.Equals(m.Authority):
		return RoleAuthority
	case signer.Equals(m.Delegate):
		return RoleDelegate
	default:
		return RoleNone
	}
}
