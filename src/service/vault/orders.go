package vault

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/fees"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/lifecycle"
)

// Deposit opens an order: a fresh order vault owned by the manager, funded from the
// signer's associated token account. The amount becomes the order's cost basis.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error) {
	if req.Amount == 0 {
		return nil, errcode.Newf(errcode.EmptyVault, "deposit of zero")
	}
	var order *models.Order
	ref, err := s.run(ctx, managerLock(req.Manager), "deposit", func(ctx context.Context) (*models.Settlement, error) {
		manager, err := s.Store.GetManager(ctx, req.Manager)
		if err != nil {
			if errcode.Has(err, errcode.AccountNotFound) {
				return nil, errcode.Newf(errcode.IncorrectManager, "%v", err)
			}
			return nil, err
		}
		if err := s.Guard.AuthorizeOwner(req.Signer, manager, models.OpDeposit).Err(); err != nil {
			return nil, err
		}
		address, bump, err := s.Addresses.Order(manager.Address, req.ID)
		if err != nil {
			return nil, err
		}
		if _, err := s.Store.GetOrder(ctx, address); err == nil {
			return nil, errcode.Newf(errcode.AccountAlreadyExists, "order %s", address)
		} else if !errcode.Has(err, errcode.AccountNotFound) {
			return nil, err
		}
		vault, _, err := s.Addresses.OrderVault(manager.Authority, manager.Address, address, req.DepositMint)
		if err != nil {
			return nil, err
		}
		userATA, err := models.AssociatedTokenAccount(req.Signer, req.DepositMint)
		if err != nil {
			return nil, err
		}
		user, err := s.account(ctx, userATA, errcode.IncorrectMint)
		if err != nil {
			return nil, err
		}
		if !user.Mint.Equals(req.DepositMint) {
			return nil, errcode.Newf(errcode.IncorrectMint, "wallet account holds %s", user.Mint)
		}

		order = &models.Order{
			Address:       address,
			ID:            req.ID,
			Manager:       manager.Address,
			DepositMint:   req.DepositMint,
			OrderVault:    vault,
			DepositAmount: req.Amount,
			Status:        models.OrderFunded,
			Bump:          bump,
		}
		if err := s.Store.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		return models.NewSettlement("deposit", req.Signer).
			Open(vault, manager.Address, req.DepositMint, false).
			Transfer(userATA, vault, req.Amount, req.Signer), nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("order opened",
		zap.String("order", order.Address.String()),
		zap.String("mint", order.DepositMint.String()),
		zap.Uint64("amount", order.DepositAmount),
	)
	return &DepositResult{Result: Result{Settlement: ref}, Order: order}, nil
}

// feeOwner is the wallet whose associated token accounts collect performance fees.
func feeOwner(config *models.Config, project *models.Project) (solana.PublicKey, error) {
	if project != nil {
		return project.Address, nil
	}
	if config.PerformanceReceiver.IsZero() {
		return solana.PublicKey{}, errcode.Newf(errcode.IncorrectReceiver, "config has no performance receiver")
	}
	return config.PerformanceReceiver, nil
}

type withdrawPlan struct {
	vault    *models.TokenAccount
	fee      fees.Fee
	receiver solana.PublicKey
}

// planWithdraw runs every withdrawal check and computes the fee. It has no side effects.
func (s *Service) planWithdraw(ctx context.Context, order *models.Order, manager *models.Manager) (*withdrawPlan, error) {
	vault, err := s.account(ctx, order.OrderVault, errcode.IncorrectOrderVault)
	if err != nil {
		return nil, err
	}
	if !vault.OwnedBy(manager.Address) {
		return nil, errcode.Newf(errcode.IncorrectOwner, "order vault %s", vault.Address)
	}
	if !vault.Mint.Equals(order.DepositMint) {
		return nil, errcode.Newf(errcode.IncorrectMint, "order vault holds %s", vault.Mint)
	}
	config, err := s.Store.GetConfig(ctx)
	if err != nil {
		return nil, errcode.Newf(errcode.IncorrectConfig, "%v", err)
	}
	var project *models.Project
	if manager.HasProject() {
		if project, err = s.Store.GetProject(ctx, manager.Project); err != nil {
			return nil, errcode.Newf(errcode.IncorrectProject, "%v", err)
		}
	}
	rate := fees.SelectRate(manager, config, project, s.Now().Unix())
	fee, err := fees.Compute(vault.Amount, order.DepositAmount, rate)
	if err != nil {
		return nil, err
	}
	receiver, err := feeOwner(config, project)
	if err != nil {
		return nil, err
	}
	return &withdrawPlan{vault: vault, fee: fee, receiver: receiver}, nil
}

// Withdraw pays the order vault out to the authority minus the performance fee, closes the
// vault and deletes the order.
func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*WithdrawResult, error) {
	managerAddress, err := s.orderManager(ctx, req.Order)
	if err != nil {
		return nil, err
	}
	var plan *withdrawPlan
	var order *models.Order
	ref, err := s.run(ctx, managerLock(managerAddress), "withdraw", func(ctx context.Context) (*models.Settlement, error) {
		var manager *models.Manager
		order, manager, err = s.loadOrder(ctx, req.Order)
		if err != nil {
			return nil, err
		}
		if err := s.Guard.AuthorizeOwner(req.Signer, manager, models.OpWithdraw).Err(); err != nil {
			return nil, err
		}
		if !lifecycle.Permitted(order, lifecycle.TriggerWithdraw) {
			return nil, errcode.Newf(errcode.InvalidOrderState, "order is %s with %d token vaults open, liquidate first",
				order.Status, len(order.TokenVaults))
		}
		if plan, err = s.planWithdraw(ctx, order, manager); err != nil {
			return nil, err
		}

		mint := order.DepositMint
		userATA, err := models.AssociatedTokenAccount(manager.Authority, mint)
		if err != nil {
			return nil, err
		}
		settlement := models.NewSettlement("withdraw", req.Signer).
			Open(userATA, manager.Authority, mint, true)
		if plan.fee.Amount > 0 {
			feeATA, err := models.AssociatedTokenAccount(plan.receiver, mint)
			if err != nil {
				return nil, err
			}
			settlement.
				Open(feeATA, plan.receiver, mint, true).
				Transfer(plan.vault.Address, feeATA, plan.fee.Amount, manager.Address)
		}
		settlement.
			Transfer(plan.vault.Address, userATA, plan.fee.Net, manager.Address).
			Close(plan.vault.Address, manager.Authority, manager.Address)

		if err := lifecycle.Fire(ctx, order, lifecycle.TriggerWithdraw); err != nil {
			return nil, err
		}
		if err := s.Store.DeleteOrder(ctx, order.Address); err != nil {
			return nil, err
		}
		return settlement, nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("order withdrawn",
		zap.String("order", order.Address.String()),
		zap.Uint64("profit", plan.fee.Profit),
		zap.Uint64("fee", plan.fee.Amount),
		zap.String("rate", plan.fee.Percent()+"%"),
	)
	s.record(ctx, models.JournalEntry{
		Kind:       models.JournalWithdraw,
		Manager:    order.Manager,
		Order:      order.Address,
		Mint:       order.DepositMint,
		Amount:     plan.fee.Net,
		Fee:        plan.fee.Amount,
		RateBps:    plan.fee.RateBps,
		Settlement: ref,
	})
	return &WithdrawResult{Result: Result{Settlement: ref}, Fee: plan.fee, Receiver: plan.receiver}, nil
}

// QuoteWithdraw previews the fee a withdrawal would charge now.
func (s *Service) QuoteWithdraw(ctx context.Context, address solana.PublicKey) (*Quote, error) {
	order, manager, err := s.loadOrder(ctx, address)
	if err != nil {
		return nil, err
	}
	plan, err := s.planWithdraw(ctx, order, manager)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Balance:   plan.vault.Amount,
		CostBasis: order.DepositAmount,
		Fee:       plan.fee,
		Percent:   plan.fee.Percent(),
	}, nil
}

// InitTokenVault opens the vault that holds the order's position in mint.
func (s *Service) InitTokenVault(ctx context.Context, req TokenVaultRequest) (*TokenVaultResult, error) {
	managerAddress, err := s.orderManager(ctx, req.Order)
	if err != nil {
		return nil, err
	}
	var address solana.PublicKey
	ref, err := s.run(ctx, managerLock(managerAddress), "init_token_vault", func(ctx context.Context) (*models.Settlement, error) {
		order, manager, err := s.loadOrder(ctx, req.Order)
		if err != nil {
			return nil, err
		}
		if err := s.Guard.AuthorizeOwner(req.Signer, manager, models.OpInitTokenVault).Err(); err != nil {
			return nil, err
		}
		if req.Mint.Equals(order.DepositMint) {
			return nil, errcode.Newf(errcode.DuplicateMints, "%s is the deposit mint", req.Mint)
		}
		address, _, err = s.Addresses.TokenVault(manager.Authority, manager.Address, order.Address, req.Mint)
		if err != nil {
			return nil, err
		}
		existing, err := s.accountIfExists(ctx, address)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errcode.Newf(errcode.AccountAlreadyExists, "token vault %s", address)
		}
		order.AddTokenVault(address)
		if err := s.Store.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		return models.NewSettlement("init_token_vault", req.Signer).
			Open(address, manager.Address, req.Mint, false), nil
	})
	if err != nil {
		return nil, err
	}
	return &TokenVaultResult{Result: Result{Settlement: ref}, Vault: address}, nil
}

// CloseTokenVault closes an empty token vault and returns its rent to the authority. The
// delegate may call it: closing only reduces what the order holds. Closing the last open
// token vault of a Trading order makes it Funded.
func (s *Service) CloseTokenVault(ctx context.Context, req TokenVaultRequest) (*Result, error) {
	managerAddress, err := s.orderManager(ctx, req.Order)
	if err != nil {
		return nil, err
	}
	ref, err := s.run(ctx, managerLock(managerAddress), "close_token_vault", func(ctx context.Context) (*models.Settlement, error) {
		order, manager, err := s.loadOrder(ctx, req.Order)
		if err != nil {
			return nil, err
		}
		address, _, err := s.Addresses.TokenVault(manager.Authority, manager.Address, order.Address, req.Mint)
		if err != nil {
			return nil, err
		}
		tokenVault, err := s.Custody.Account(ctx, address)
		if err != nil {
			return nil, err
		}
		orderVault, err := s.account(ctx, order.OrderVault, errcode.IncorrectOrderVault)
		if err != nil {
			return nil, err
		}
		if err := s.Guard.Authorize(req.Signer, orderVault, tokenVault, manager, models.OpCloseTokenVault).Err(); err != nil {
			return nil, err
		}
		if !tokenVault.OwnedBy(manager.Address) {
			return nil, errcode.Newf(errcode.IncorrectOwner, "token vault %s", address)
		}
		if tokenVault.Amount != 0 {
			return nil, errcode.Newf(errcode.InvalidOrderState, "token vault still holds %d", tokenVault.Amount)
		}
		order.RemoveTokenVault(address)
		if err := lifecycle.Fire(ctx, order, lifecycle.TriggerCloseVault); err != nil {
			return nil, err
		}
		if err := s.Store.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		return models.NewSettlement("close_token_vault", req.Signer).
			Close(address, manager.Authority, manager.Address), nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Settlement: ref}, nil
}
