// Package vault wires the guard, the route validator, the fee engine and the subscription
// ledger into the user-facing operations. Every operation runs under a per-manager lock
// and a store transaction, runs all checks first, and moves funds through one settlement.
package vault

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/interfaces"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/permission"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/route"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "vault"))
}

type Service struct {
	Store     interfaces.IStore
	Custody   interfaces.ICustody
	Settler   interfaces.ISettler
	Locker    interfaces.ILocker
	Journal   interfaces.IJournal
	Stats     interfaces.IStatsClient
	Log       interfaces.ILogger
	Guard     permission.Guard
	Validator *route.Validator
	Addresses models.Addresses
	// StrictDestination turns off the deposit-asset destination exception for liquidations.
	StrictDestination bool
	Now               func() time.Time
}

type Options struct {
	Store             interfaces.IStore
	Custody           interfaces.ICustody
	Settler           interfaces.ISettler
	Locker            interfaces.ILocker
	Journal           interfaces.IJournal
	Stats             interfaces.IStatsClient
	Log               interfaces.ILogger
	ProgramID         solana.PublicKey
	VenueProgramID    solana.PublicKey
	RouteTable        string
	StrictDestination bool
	Now               func() time.Time
}

func New(opts Options) (*Service, error) {
	if opts.Store == nil || opts.Custody == nil || opts.Settler == nil || opts.Locker == nil {
		return nil, errors.New("vault: store, custody, settler and locker are required")
	}
	version := opts.RouteTable
	if version == "" {
		version = route.JupiterV6.Version
	}
	table, ok := route.TableFor(version)
	if !ok {
		return nil, errors.Errorf("vault: unknown route table %q", version)
	}
	s := &Service{
		Store:             opts.Store,
		Custody:           opts.Custody,
		Settler:           opts.Settler,
		Locker:            opts.Locker,
		Journal:           opts.Journal,
		Stats:             opts.Stats,
		Log:               opts.Log,
		Validator:         route.NewValidator(opts.VenueProgramID, table),
		Addresses:         models.NewAddresses(opts.ProgramID),
		StrictDestination: opts.StrictDestination,
		Now:               opts.Now,
	}
	if s.Log == nil {
		s.Log = log
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s, nil
}

func managerLock(manager solana.PublicKey) string {
	return "manager:" + manager.String()
}

func (s *Service) inc(stat string) {
	if s.Stats != nil {
		s.Stats.Inc(stat)
	}
}

// run executes fn under the lock and inside a store transaction. The settlement fn returns
// is submitted last; if it fails the transaction rolls back with it.
func (s *Service) run(ctx context.Context, lockKey, name string, fn func(ctx context.Context) (*models.Settlement, error)) (string, error) {
	start := s.Now()
	unlock, err := s.Locker.Lock(ctx, lockKey)
	if err != nil {
		s.inc(name + ".lock_failed")
		return "", errors.Wrapf(err, "lock %s", lockKey)
	}
	defer unlock()

	var ref string
	err = s.Store.RunInTransaction(ctx, func(ctx context.Context) error {
		settlement, err := fn(ctx)
		if err != nil {
			return err
		}
		if settlement == nil || settlement.Empty() {
			return nil
		}
		ref, err = s.Settler.Settle(ctx, settlement)
		return err
	})
	if s.Stats != nil {
		s.Stats.TimingDuration(name, s.Now().Sub(start))
	}
	if err != nil {
		s.inc(name + ".error")
		if code, ok := errcode.CodeOf(err); ok {
			s.Log.Info("operation rejected",
				zap.String("operation", name),
				zap.String("code", code.String()),
				zap.String("kind", code.Kind().String()),
				zap.Error(err),
			)
		} else {
			s.Log.Error("operation failed", zap.String("operation", name), zap.Error(err))
		}
		return "", err
	}
	s.inc(name + ".ok")
	return ref, nil
}

// record writes to the journal after commit. A journal failure never undoes the operation.
func (s *Service) record(ctx context.Context, entry models.JournalEntry) {
	if s.Journal == nil {
		return
	}
	if entry.At.IsZero() {
		entry.At = s.Now().UTC()
	}
	if err := s.Journal.Record(ctx, entry); err != nil {
		s.inc("journal.error")
		s.Log.Warn("journal write failed",
			zap.String("kind", string(entry.Kind)),
			zap.String("settlement", entry.Settlement),
			zap.Error(err),
		)
	}
}

// account reads a token account; a missing account is reported with code.
func (s *Service) account(ctx context.Context, address solana.PublicKey, code errcode.Code) (*models.TokenAccount, error) {
	a, err := s.Custody.Account(ctx, address)
	if err != nil {
		if errcode.Has(err, errcode.AccountNotFound) {
			return nil, errcode.Newf(code, "token account %s not found", address)
		}
		return nil, err
	}
	return a, nil
}

// accountIfExists returns nil, nil for a missing account.
func (s *Service) accountIfExists(ctx context.Context, address solana.PublicKey) (*models.TokenAccount, error) {
	a, err := s.Custody.Account(ctx, address)
	if errcode.Has(err, errcode.AccountNotFound) {
		return nil, nil
	}
	return a, err
}

// loadOrder returns the order and its manager.
func (s *Service) loadOrder(ctx context.Context, address solana.PublicKey) (*models.Order, *models.Manager, error) {
	order, err := s.Store.GetOrder(ctx, address)
	if err != nil {
		return nil, nil, err
	}
	manager, err := s.Store.GetManager(ctx, order.Manager)
	if err != nil {
		if errcode.Has(err, errcode.AccountNotFound) {
			return nil, nil, errcode.Newf(errcode.IncorrectManager, "order %s references missing manager %s", order.Address, order.Manager)
		}
		return nil, nil, err
	}
	return order, manager, nil
}

// orderManager resolves the manager of an order address without taking a lock, so the
// caller knows which lock to take.
func (s *Service) orderManager(ctx context.Context, address solana.PublicKey) (solana.PublicKey, error) {
	order, err := s.Store.GetOrder(ctx, address)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return order.Manager, nil
}

func (s *Service) Manager(ctx context.Context, address solana.PublicKey) (*models.Manager, error) {
	return s.Store.GetManager(ctx, address)
}

func (s *Service) Order(ctx context.Context, address solana.PublicKey) (*models.Order, error) {
	return s.Store.GetOrder(ctx, address)
}

func (s *Service) Orders(ctx context.Context, manager solana.PublicKey) ([]*models.Order, error) {
	return s.Store.ListOrders(ctx, manager)
}
