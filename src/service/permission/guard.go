// Package permission decides whether a signer may act on a pair of vaults of a manager.
package permission

import (
	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// Decision is the outcome of Authorize. Reason is only set when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  errcode.Code
	Role    models.Role
}

// Err returns nil for an allowed decision.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errcode.New(d.Reason)
}

func allow(role models.Role) Decision {
	return Decision{Allowed: true, Role: role}
}

func deny(role models.Role, reason errcode.Code) Decision {
	return Decision{Role: role, Reason: reason}
}

// Guard evaluates the capability table. It holds no state.
type Guard struct{}

// Authorize applies, in order:
//  1. the manager authority may do anything;
//  2. both vaults must be owned by the manager (IncorrectOwner);
//  3. the signer must be the manager's delegate (IncorrectSigner);
//  4. the delegate must hold the capability op requires (DelegateNotAllowed).
//
// A nil vault counts as foreign.
func (Guard) Authorize(signer solana.PublicKey, vaultA, vaultB *models.TokenAccount, manager *models.Manager, op models.Operation) Decision {
	if manager == nil {
		return deny(models.RoleNone, errcode.IncorrectManager)
	}
	role := manager.RoleOf(signer)
	if role == models.RoleAuthority {
		return allow(role)
	}
	if !vaultA.OwnedBy(manager.Address) || !vaultB.OwnedBy(manager.Address) {
		return deny(role, errcode.IncorrectOwner)
	}
	if role != models.RoleDelegate {
		return deny(role, errcode.IncorrectSigner)
	}
	if !role.Can(op) {
		return deny(role, errcode.DelegateNotAllowed)
	}
	return allow(role)
}

// AuthorizeOwner is the check for operations that only the authority may perform and
// that touch no vault, like paying a subscription.
func (g Guard) AuthorizeOwner(signer solana.PublicKey, manager *models.Manager, op models.Operation) Decision {
	if manager == nil {
		return deny(models.RoleNone, errcode.IncorrectManager)
	}
	role := manager.RoleOf(signer)
	switch {
	case role == models.RoleAuthority:
		return allow(role)
	case role == models.RoleDelegate && !role.Can(op):
		return deny(role, errcode.DelegateNotAllowed)
	case role == models.RoleDelegate:
		return allow(role)
	default:
		return deny(role, errcode.IncorrectSigner)
	}
}

// VerifyDepositMint checks that one of the two vaults holds the order's deposit mint.
func VerifyDepositMint(depositMint solana.PublicKey, vaultA, vaultB *models.TokenAccount, order *models.Order) error {
	if vaultA == nil || vaultB == nil || order == nil {
		return errcode.New(errcode.IncorrectMint)
	}
	if !vaultA.Mint.Equals(depositMint) && !vaultB.Mint.Equals(depositMint) {
		return errcode.Newf(errcode.IncorrectMint, "no vault holds %s", depositMint)
	}
	if !order.DepositMint.Equals(depositMint) {
		return errcode.Newf(errcode.IncorrectMint, "order was funded in %s", order.DepositMint)
	}
	return nil
}
