package vault

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/subscription"
)

// InitManager onboards a user. The signer becomes the manager's immutable authority.
func (s *Service) InitManager(ctx context.Context, req InitManagerRequest) (*models.Manager, error) {
	if req.Delegate.Equals(req.Signer) {
		return nil, errcode.Newf(errcode.IncorrectSigner, "delegate must differ from authority")
	}
	address, bump, err := s.Addresses.Manager(req.Project, req.Signer)
	if err != nil {
		return nil, err
	}
	manager := &models.Manager{
		Address:    address,
		Authority:  req.Signer,
		Delegate:   req.Delegate,
		Project:    req.Project,
		StableMint: req.StableMint,
		Bump:       bump,
	}
	_, err = s.run(ctx, managerLock(address), "init_manager", func(ctx context.Context) (*models.Settlement, error) {
		if manager.HasProject() {
			if _, err := s.Store.GetProject(ctx, manager.Project); err != nil {
				return nil, errcode.Newf(errcode.IncorrectProject, "%v", err)
			}
		}
		if _, err := s.Store.GetManager(ctx, address); err == nil {
			return nil, errcode.Newf(errcode.AccountAlreadyExists, "manager %s", address)
		} else if !errcode.Has(err, errcode.AccountNotFound) {
			return nil, err
		}
		return nil, s.Store.SaveManager(ctx, manager)
	})
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// PaySubscription transfers one tier price to the payment receiver and extends the
// manager's subscription in the same unit.
func (s *Service) PaySubscription(ctx context.Context, req PaySubscriptionRequest) (*SubscriptionResult, error) {
	var payment subscription.Payment
	var mint solana.PublicKey
	ref, err := s.run(ctx, managerLock(req.Manager), "pay_subscription", func(ctx context.Context) (*models.Settlement, error) {
		manager, err := s.Store.GetManager(ctx, req.Manager)
		if err != nil {
			return nil, err
		}
		if err := s.Guard.AuthorizeOwner(req.Signer, manager, models.OpPaySubscription).Err(); err != nil {
			return nil, err
		}
		config, err := s.Store.GetConfig(ctx)
		if err != nil {
			return nil, errcode.Newf(errcode.IncorrectConfig, "%v", err)
		}
		if config.PaymentMint.IsZero() {
			return nil, errcode.Newf(errcode.IncorrectPaymentMint, "config has no payment mint")
		}
		if config.PaymentReceiver.IsZero() {
			return nil, errcode.Newf(errcode.IncorrectReceiver, "config has no payment receiver")
		}
		payment, err = subscription.Pay(manager, config, req.Amount, s.Now().Unix())
		if err != nil {
			return nil, err
		}

		payerATA, err := models.AssociatedTokenAccount(req.Signer, config.PaymentMint)
		if err != nil {
			return nil, err
		}
		payer, err := s.account(ctx, payerATA, errcode.IncorrectPaymentMint)
		if err != nil {
			return nil, err
		}
		if !payer.Mint.Equals(config.PaymentMint) {
			return nil, errcode.Newf(errcode.IncorrectPaymentMint, "payer account holds %s", payer.Mint)
		}
		receiverATA, err := models.AssociatedTokenAccount(config.PaymentReceiver, config.PaymentMint)
		if err != nil {
			return nil, err
		}
		mint = config.PaymentMint
		if err := s.Store.SaveManager(ctx, manager); err != nil {
			return nil, err
		}
		return models.NewSettlement("pay_subscription", req.Signer).
			Open(receiverATA, config.PaymentReceiver, config.PaymentMint, true).
			Transfer(payerATA, receiverATA, req.Amount, req.Signer), nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("subscription paid",
		zap.String("manager", req.Manager.String()),
		zap.String("tier", string(payment.Tier)),
		zap.Int64("end", payment.NewEnd),
	)
	s.record(ctx, models.JournalEntry{
		Kind:       models.JournalSubscription,
		Manager:    req.Manager,
		Mint:       mint,
		Amount:     req.Amount,
		Settlement: ref,
	})
	return &SubscriptionResult{Result: Result{Settlement: ref}, Payment: payment}, nil
}
