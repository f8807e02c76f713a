// Package ledger is an in-process custody: token accounts in memory and an all-or-nothing
// settler over them. Venue instructions are handed to a pluggable Venue.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "srcLedger"))
}

// Venue executes a forwarded instruction against the working set of a settlement.
type Venue interface {
	Execute(ix models.VenueInstruction, book *Book) error
}

// Book is the working copy a settlement mutates. It is discarded when any step fails.
type Book struct {
	accounts map[solana.PublicKey]*models.TokenAccount
	lamports map[solana.PublicKey]uint64
}

func (b *Book) Account(address solana.PublicKey) (*models.TokenAccount, bool) {
	a, ok := b.accounts[address]
	return a, ok
}

func (b *Book) Debit(address solana.PublicKey, amount uint64) error {
	a, ok := b.accounts[address]
	if !ok {
		return errcode.Newf(errcode.AccountNotFound, "token account %s", address)
	}
	if a.Amount < amount {
		return errors.Errorf("insufficient funds in %s: %d < %d", address, a.Amount, amount)
	}
	a.Amount -= amount
	return nil
}

func (b *Book) Credit(address solana.PublicKey, amount uint64) error {
	a, ok := b.accounts[address]
	if !ok {
		return errcode.Newf(errcode.AccountNotFound, "token account %s", address)
	}
	if a.Amount > ^uint64(0)-amount {
		return errcode.Newf(errcode.NumericalOverflow, "credit %d to %s", amount, address)
	}
	a.Amount += amount
	return nil
}

// Ledger implements ICustody and ISettler.
type Ledger struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*models.TokenAccount
	lamports map[solana.PublicKey]uint64
	venue    Venue
	seq      uint64
}

func New(venue Venue) *Ledger {
	return &Ledger{
		accounts: map[solana.PublicKey]*models.TokenAccount{},
		lamports: map[solana.PublicKey]uint64{},
		venue:    venue,
	}
}

// Fund creates or overwrites a token account. Used to seed wallets.
func (l *Ledger) Fund(account models.TokenAccount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if account.Lamports == 0 {
		account.Lamports = models.RentExemptLamports
	}
	l.accounts[account.Address] = &account
}

func (l *Ledger) Account(ctx context.Context, address solana.PublicKey) (*models.TokenAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[address]
	if !ok {
		return nil, errcode.Newf(errcode.AccountNotFound, "token account %s", address)
	}
	c := *a
	return &c, nil
}

// Lamports returns the rent refunded to a wallet by closed accounts.
func (l *Ledger) Lamports(wallet solana.PublicKey) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lamports[wallet]
}

func (l *Ledger) book() *Book {
	b := &Book{
		accounts: make(map[solana.PublicKey]*models.TokenAccount, len(l.accounts)),
		lamports: make(map[solana.PublicKey]uint64, len(l.lamports)),
	}
	for k, v := range l.accounts {
		c := *v
		b.accounts[k] = &c
	}
	for k, v := range l.lamports {
		b.lamports[k] = v
	}
	return b
}

// Settle applies every step or none.
func (l *Ledger) Settle(ctx context.Context, settlement *models.Settlement) (string, error) {
	if settlement == nil || settlement.Empty() {
		return "", errors.New("empty settlement")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.book()
	for i, step := range settlement.Steps {
		if err := l.apply(b, step); err != nil {
			log.Warn("settlement rejected",
				zap.String("label", settlement.Label),
				zap.Int("step", i),
				zap.String("kind", string(step.Kind)),
				zap.Error(err),
			)
			return "", errors.Wrapf(err, "%s step %d (%s)", settlement.Label, i, step.Kind)
		}
	}
	l.accounts, l.lamports = b.accounts, b.lamports
	l.seq++
	return fmt.Sprintf("%s-%d", settlement.Label, l.seq), nil
}

func (l *Ledger) apply(b *Book, step models.Step) error {
	switch step.Kind {
	case models.StepOpen:
		if existing, ok := b.accounts[step.Account]; ok {
			if step.IfMissing && existing.Owner.Equals(step.Owner) && existing.Mint.Equals(step.Mint) {
				return nil
			}
			return errcode.Newf(errcode.AccountAlreadyExists, "token account %s", step.Account)
		}
		b.accounts[step.Account] = &models.TokenAccount{
			Address:  step.Account,
			Owner:    step.Owner,
			Mint:     step.Mint,
			Lamports: models.RentExemptLamports,
		}
		return nil

	case models.StepTransfer:
		from, ok := b.accounts[step.From]
		if !ok {
			return errcode.Newf(errcode.AccountNotFound, "token account %s", step.From)
		}
		to, ok := b.accounts[step.To]
		if !ok {
			return errcode.Newf(errcode.AccountNotFound, "token account %s", step.To)
		}
		if !from.Owner.Equals(step.Authority) {
			return errcode.Newf(errcode.IncorrectOwner, "%s is not owned by %s", step.From, step.Authority)
		}
		if !from.Mint.Equals(to.Mint) {
			return errcode.Newf(errcode.IncorrectMint, "%s -> %s", from.Mint, to.Mint)
		}
		if err := b.Debit(step.From, step.Amount); err != nil {
			return err
		}
		return b.Credit(step.To, step.Amount)

	case models.StepClose:
		a, ok := b.accounts[step.Account]
		if !ok {
			return errcode.Newf(errcode.AccountNotFound, "token account %s", step.Account)
		}
		if !a.Owner.Equals(step.Authority) {
			return errcode.Newf(errcode.IncorrectOwner, "%s is not owned by %s", step.Account, step.Authority)
		}
		if a.Amount != 0 {
			return errors.Errorf("close of non-empty account %s (%d)", step.Account, a.Amount)
		}
		delete(b.accounts, step.Account)
		b.lamports[step.Destination] += a.Lamports
		return nil

	case models.StepExecute:
		if step.Instruction == nil {
			return errors.New("execute step without instruction")
		}
		if l.venue == nil {
			return errors.New("no venue configured")
		}
		return l.venue.Execute(*step.Instruction, b)
	}
	return errors.Errorf("unknown step kind %q", step.Kind)
}
