package models

// Role is the relation of a signer to a manager.
type Role int

const (
	RoleNone Role = iota
	RoleAuthority
	RoleDelegate
)

func (r Role) String() string {
	switch r {
	case RoleAuthority:
		return "authority"
	case RoleDelegate:
		return "delegate"
	default:
		return "none"
	}
}

// Capability is a bit in the capability table.
type Capability uint16

const (
	CapDeposit Capability = 1 << iota
	CapWithdraw
	CapTrade
	CapLiquidate
	CapManageVaults
	CapCloseTokenVault
	CapSubscribe

	CapAll = CapDeposit | CapWithdraw | CapTrade | CapLiquidate | CapManageVaults | CapCloseTokenVault | CapSubscribe

	// liquidationClass only ever reduces risk: it closes positions, never opens or withdraws.
	liquidationClass = CapLiquidate | CapCloseTokenVault
)

// Capabilities is the capability table. A new capability class is a new bit plus a row
// update here; call sites only name the operation they perform.
var Capabilities = map[Role]Capability{
	RoleAuthority: CapAll,
	RoleDelegate:  CapLiquidate | CapCloseTokenVault,
}

// Operation is a user-facing operation that acts on a manager's vaults.
type Operation int

const (
	OpDeposit Operation = iota + 1
	OpWithdraw
	OpSwap
	OpLiquidate
	OpInitTokenVault
	OpCloseTokenVault
	OpPaySubscription
)

var operationNames = map[Operation]string{
	OpDeposit:         "deposit",
	OpWithdraw:        "withdraw",
	OpSwap:            "swap",
	OpLiquidate:       "liquidate",
	OpInitTokenVault:  "init_token_vault",
	OpCloseTokenVault: "close_token_vault",
	OpPaySubscription: "pay_subscription",
}

var operationCapabilities = map[Operation]Capability{
	OpDeposit:         CapDeposit,
	OpWithdraw:        CapWithdraw,
	OpSwap:            CapTrade,
	OpLiquidate:       CapLiquidate,
	OpInitTokenVault:  CapManageVaults,
	OpCloseTokenVault: CapCloseTokenVault,
	OpPaySubscription: CapSubscribe,
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "unknown"
}

// Capability returns 0 for unknown operations, which no role holds.
func (op Operation) Capability() Capability {
	return operationCapabilities[op]
}

func (op Operation) IsLiquidationClass() bool {
	c := op.Capability()
	return c != 0 && c&^liquidationClass == 0
}

// Can reports whether role holds the capability op requires.
func (r Role) Can(op Operation) bool {
	need := op.Capability()
	if need == 0 {
		return false
	}
	return Capabilities[r]&need == need
}
