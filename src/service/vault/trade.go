package vault

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/lifecycle"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/permission"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/route"
)

func requireOwned(manager *models.Manager, vaults ...*models.TokenAccount) error {
	for _, v := range vaults {
		if !v.OwnedBy(manager.Address) {
			return errcode.Newf(errcode.IncorrectOwner, "vault %s is not owned by manager %s", v.Address, manager.Address)
		}
	}
	return nil
}

func tradeResult(ref string, r *route.Route, order *models.Order) *TradeResult {
	return &TradeResult{
		Result:               Result{Settlement: ref},
		Variant:              r.Variant.String(),
		DestinationTolerated: r.DestinationTolerated,
		Status:               string(order.Status),
	}
}

// Swap executes an owner trade from the order vault into the token vault for OutputMint,
// opening the token vault on first use. Only the manager co-signs the venue instruction.
func (s *Service) Swap(ctx context.Context, req SwapRequest) (*TradeResult, error) {
	managerAddress, err := s.orderManager(ctx, req.Order)
	if err != nil {
		return nil, err
	}
	var validated *route.Route
	var order *models.Order
	ref, err := s.run(ctx, managerLock(managerAddress), "swap", func(ctx context.Context) (*models.Settlement, error) {
		var manager *models.Manager
		order, manager, err = s.loadOrder(ctx, req.Order)
		if err != nil {
			return nil, err
		}
		if req.OutputMint.Equals(order.DepositMint) {
			return nil, errcode.Newf(errcode.DuplicateMints, "%s is the deposit mint", req.OutputMint)
		}
		orderVault, err := s.account(ctx, order.OrderVault, errcode.IncorrectOrderVault)
		if err != nil {
			return nil, err
		}
		address, _, err := s.Addresses.TokenVault(manager.Authority, manager.Address, order.Address, req.OutputMint)
		if err != nil {
			return nil, err
		}
		tokenVault, err := s.accountIfExists(ctx, address)
		if err != nil {
			return nil, err
		}
		open := tokenVault == nil
		if open {
			tokenVault = &models.TokenAccount{Address: address, Owner: manager.Address, Mint: req.OutputMint}
		}

		if err := s.Guard.Authorize(req.Signer, orderVault, tokenVault, manager, models.OpSwap).Err(); err != nil {
			return nil, err
		}
		if err := requireOwned(manager, orderVault, tokenVault); err != nil {
			return nil, err
		}
		if err := permission.VerifyDepositMint(order.DepositMint, orderVault, tokenVault, order); err != nil {
			return nil, err
		}
		if !lifecycle.Permitted(order, lifecycle.TriggerSwap) {
			return nil, errcode.Newf(errcode.InvalidOrderState, "order is %s", order.Status)
		}
		validated, err = s.Validator.Validate(req.Instruction, route.Expectation{
			Manager:           manager.Address,
			Vaults:            []solana.PublicKey{orderVault.Address, tokenVault.Address},
			OutputMint:        req.OutputMint,
			CostBasisMint:     req.OutputMint,
			DepositMint:       order.DepositMint,
			StrictDestination: s.StrictDestination,
		})
		if err != nil {
			return nil, err
		}

		order.AddTokenVault(address)
		if err := lifecycle.Fire(ctx, order, lifecycle.TriggerSwap); err != nil {
			return nil, err
		}
		if err := s.Store.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		settlement := models.NewSettlement("swap", req.Signer)
		if open {
			settlement.Open(address, manager.Address, req.OutputMint, false)
		}
		return settlement.Execute(req.Instruction.CoSigned(manager.Address)), nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("order swapped",
		zap.String("order", order.Address.String()),
		zap.String("variant", validated.Variant.String()),
		zap.String("output", req.OutputMint.String()),
	)
	return tradeResult(ref, validated, order), nil
}

// Liquidate trades the token vault back into the deposit mint and closes the token vault.
// The order is Funded again once it has no other token vault open.
// The delegate may call it; the venue instruction must land in the manager's vaults unless
// the deposit-asset exception applies.
func (s *Service) Liquidate(ctx context.Context, req LiquidateRequest) (*TradeResult, error) {
	managerAddress, err := s.orderManager(ctx, req.Order)
	if err != nil {
		return nil, err
	}
	var validated *route.Route
	var order *models.Order
	ref, err := s.run(ctx, managerLock(managerAddress), "liquidate", func(ctx context.Context) (*models.Settlement, error) {
		var manager *models.Manager
		order, manager, err = s.loadOrder(ctx, req.Order)
		if err != nil {
			return nil, err
		}
		vaultA, err := s.Custody.Account(ctx, req.VaultA)
		if err != nil {
			return nil, err
		}
		vaultB, err := s.Custody.Account(ctx, req.VaultB)
		if err != nil {
			return nil, err
		}
		depositVault, tokenVault := vaultA, vaultB
		switch {
		case vaultA.Mint.Equals(order.DepositMint):
		case vaultB.Mint.Equals(order.DepositMint):
			depositVault, tokenVault = vaultB, vaultA
		default:
			return nil, errcode.Newf(errcode.IncorrectMint, "neither vault holds %s", order.DepositMint)
		}

		if err := s.Guard.Authorize(req.Signer, vaultA, vaultB, manager, models.OpLiquidate).Err(); err != nil {
			return nil, err
		}
		if err := requireOwned(manager, vaultA, vaultB); err != nil {
			return nil, err
		}
		if !depositVault.Address.Equals(order.OrderVault) {
			return nil, errcode.Newf(errcode.IncorrectOrderVault, "%s is not the order vault", depositVault.Address)
		}
		expected, _, err := s.Addresses.TokenVault(manager.Authority, manager.Address, order.Address, tokenVault.Mint)
		if err != nil {
			return nil, err
		}
		if !tokenVault.Address.Equals(expected) || !order.HasTokenVault(expected) {
			return nil, errcode.Newf(errcode.IncorrectOrderVault, "%s is not a token vault of the order", tokenVault.Address)
		}
		if err := permission.VerifyDepositMint(order.DepositMint, vaultA, vaultB, order); err != nil {
			return nil, err
		}
		if !lifecycle.Permitted(order, lifecycle.TriggerLiquidate) {
			return nil, errcode.Newf(errcode.InvalidOrderState, "order is %s", order.Status)
		}
		validated, err = s.Validator.Validate(req.Instruction, route.Expectation{
			Manager:           manager.Address,
			Vaults:            []solana.PublicKey{vaultA.Address, vaultB.Address},
			OutputMint:        order.DepositMint,
			CostBasisMint:     order.DepositMint,
			DepositMint:       order.DepositMint,
			StrictDestination: s.StrictDestination,
		})
		if err != nil {
			return nil, err
		}

		order.RemoveTokenVault(tokenVault.Address)
		if err := lifecycle.Fire(ctx, order, lifecycle.TriggerLiquidate); err != nil {
			return nil, err
		}
		if err := s.Store.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		return models.NewSettlement("liquidate", req.Signer).
			Execute(req.Instruction.CoSigned(manager.Address)).
			Close(tokenVault.Address, manager.Authority, manager.Address), nil
	})
	if err != nil {
		return nil, err
	}
	if validated.DestinationTolerated {
		s.inc("liquidate.destination_tolerated")
		s.Log.Warn("liquidation proceeds left the vault set",
			zap.String("order", order.Address.String()),
			zap.String("destination", validated.Destination.String()),
		)
	}
	s.Log.Info("order liquidated",
		zap.String("order", order.Address.String()),
		zap.String("variant", validated.Variant.String()),
	)
	return tradeResult(ref, validated, order), nil
}
