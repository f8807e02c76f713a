package vault

import (
	"context"

	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

const configLock = "config"

// InitConfig creates the global fee policy. The signer becomes its authority.
func (s *Service) InitConfig(ctx context.Context, req InitConfigRequest) (*models.Config, error) {
	var created *models.Config
	_, err := s.run(ctx, configLock, "init_config", func(ctx context.Context) (*models.Settlement, error) {
		if _, err := s.Store.GetConfig(ctx); err == nil {
			return nil, errcode.Newf(errcode.AccountAlreadyExists, "config")
		} else if !errcode.Has(err, errcode.AccountNotFound) {
			return nil, err
		}
		address, bump, err := s.Addresses.Config()
		if err != nil {
			return nil, err
		}
		config := &models.Config{
			Address:                  address,
			Authority:                req.Signer,
			PaymentMint:              req.PaymentMint,
			PaymentReceiver:          req.PaymentReceiver,
			PerformanceReceiver:      req.PerformanceReceiver,
			MonthlyAmount:            req.MonthlyAmount,
			YearlyAmount:             req.YearlyAmount,
			SubscribedPerformanceFee: req.SubscribedPerformanceFee,
			PerformanceFee:           req.PerformanceFee,
			Bump:                     bump,
		}
		if err := config.Validate(); err != nil {
			return nil, err
		}
		created = config
		return nil, s.Store.SaveConfig(ctx, config)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EditConfigFee is editFee for the global policy. Only the config authority may call it.
func (s *Service) EditConfigFee(ctx context.Context, req EditConfigFeeRequest) (*models.Config, error) {
	var edited *models.Config
	_, err := s.run(ctx, configLock, "edit_config_fee", func(ctx context.Context) (*models.Settlement, error) {
		config, err := s.Store.GetConfig(ctx)
		if err != nil {
			return nil, errcode.Newf(errcode.IncorrectConfig, "%v", err)
		}
		if !req.Signer.Equals(config.Authority) {
			return nil, errcode.Newf(errcode.IncorrectSigner, "%s is not the config authority", req.Signer)
		}
		if req.PerformanceFee != nil {
			if err := models.ValidateFeeBps(*req.PerformanceFee); err != nil {
				return nil, err
			}
			config.PerformanceFee = *req.PerformanceFee
		}
		if req.SubscribedPerformanceFee != nil {
			if err := models.ValidateFeeBps(*req.SubscribedPerformanceFee); err != nil {
				return nil, err
			}
			config.SubscribedPerformanceFee = *req.SubscribedPerformanceFee
		}
		edited = config
		return nil, s.Store.SaveConfig(ctx, config)
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

func (s *Service) InitProject(ctx context.Context, req InitProjectRequest) (*models.Project, error) {
	if err := models.ValidateFeeBps(req.PerformanceFee); err != nil {
		return nil, err
	}
	address, bump, err := s.Addresses.Project(req.Signer)
	if err != nil {
		return nil, err
	}
	project := &models.Project{Address: address, Authority: req.Signer, PerformanceFee: req.PerformanceFee, Bump: bump}
	_, err = s.run(ctx, "project:"+address.String(), "init_project", func(ctx context.Context) (*models.Settlement, error) {
		if _, err := s.Store.GetProject(ctx, address); err == nil {
			return nil, errcode.Newf(errcode.AccountAlreadyExists, "project %s", address)
		} else if !errcode.Has(err, errcode.AccountNotFound) {
			return nil, err
		}
		return nil, s.Store.SaveProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// EditProjectFee is editFee for the signer's project.
func (s *Service) EditProjectFee(ctx context.Context, req EditProjectFeeRequest) (*models.Project, error) {
	if err := models.ValidateFeeBps(req.PerformanceFee); err != nil {
		return nil, err
	}
	address, _, err := s.Addresses.Project(req.Signer)
	if err != nil {
		return nil, err
	}
	var edited *models.Project
	_, err = s.run(ctx, "project:"+address.String(), "edit_project_fee", func(ctx context.Context) (*models.Settlement, error) {
		project, err := s.Store.GetProject(ctx, address)
		if err != nil {
			return nil, errcode.Newf(errcode.IncorrectProject, "%v", err)
		}
		if !req.Signer.Equals(project.Authority) {
			return nil, errcode.Newf(errcode.IncorrectSigner, "%s is not the project authority", req.Signer)
		}
		project.PerformanceFee = req.PerformanceFee
		edited = project
		return nil, s.Store.SaveProject(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// WithdrawFees sweeps the project's fee vault for mint to the project authority.
func (s *Service) WithdrawFees(ctx context.Context, req WithdrawFeesRequest) (*Result, error) {
	address, _, err := s.Addresses.Project(req.Signer)
	if err != nil {
		return nil, err
	}
	var amount uint64
	ref, err := s.run(ctx, "project:"+address.String(), "withdraw_fees", func(ctx context.Context) (*models.Settlement, error) {
		project, err := s.Store.GetProject(ctx, address)
		if err != nil {
			return nil, errcode.Newf(errcode.IncorrectProject, "%v", err)
		}
		if !req.Signer.Equals(project.Authority) {
			return nil, errcode.Newf(errcode.IncorrectSigner, "%s is not the project authority", req.Signer)
		}
		feeVaultAddress, err := models.AssociatedTokenAccount(project.Address, req.Mint)
		if err != nil {
			return nil, err
		}
		feeVault, err := s.account(ctx, feeVaultAddress, errcode.EmptyVault)
		if err != nil {
			return nil, err
		}
		if feeVault.Amount == 0 {
			return nil, errcode.Newf(errcode.EmptyVault, "fee vault %s", feeVault.Address)
		}
		ownerATA, err := models.AssociatedTokenAccount(req.Signer, req.Mint)
		if err != nil {
			return nil, err
		}
		amount = feeVault.Amount
		return models.NewSettlement("withdraw_fees", req.Signer).
			Open(ownerATA, req.Signer, req.Mint, true).
			Transfer(feeVault.Address, ownerATA, amount, project.Address), nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("project fees withdrawn",
		zap.String("project", address.String()),
		zap.String("mint", req.Mint.String()),
		zap.Uint64("amount", amount),
	)
	s.record(ctx, models.JournalEntry{
		Kind:       models.JournalFeeSweep,
		Mint:       req.Mint,
		Amount:     amount,
		Settlement: ref,
	})
	return &Result{Settlement: ref}, nil
}
