package ledger

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

func key() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

type venueFunc func(ix models.VenueInstruction, book *Book) error

func (f venueFunc) Execute(ix models.VenueInstruction, book *Book) error { return f(ix, book) }

func TestSettleTransferAndClose(t *testing.T) {
	ctx := context.Background()
	l := New(nil)
	user, manager, mint := key(), key(), key()
	wallet := models.TokenAccount{Address: key(), Owner: user, Mint: mint, Amount: 100}
	l.Fund(wallet)

	vault := key()
	s := models.NewSettlement("deposit", user).
		Open(vault, manager, mint, false).
		Transfer(wallet.Address, vault, 60, user)
	ref, err := l.Settle(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "deposit-1", ref)

	got, err := l.Account(ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), got.Amount)
	assert.Equal(t, manager, got.Owner)

	s = models.NewSettlement("withdraw", user).
		Transfer(vault, wallet.Address, 60, manager).
		Close(vault, user, manager)
	_, err = l.Settle(ctx, s)
	require.NoError(t, err)

	_, err = l.Account(ctx, vault)
	assert.True(t, errcode.Has(err, errcode.AccountNotFound))
	assert.Equal(t, models.RentExemptLamports, l.Lamports(user))
	got, _ = l.Account(ctx, wallet.Address)
	assert.Equal(t, uint64(100), got.Amount)
}

func TestSettleIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	l := New(venueFunc(func(ix models.VenueInstruction, book *Book) error {
		return errors.New("slippage exceeded")
	}))
	user, manager, mint := key(), key(), key()
	wallet := models.TokenAccount{Address: key(), Owner: user, Mint: mint, Amount: 100}
	l.Fund(wallet)

	vault := key()
	s := models.NewSettlement("swap", user).
		Open(vault, manager, mint, false).
		Transfer(wallet.Address, vault, 50, user).
		Execute(models.VenueInstruction{ProgramID: models.VenueProgramID})
	_, err := l.Settle(ctx, s)
	require.Error(t, err)

	_, err = l.Account(ctx, vault)
	assert.True(t, errcode.Has(err, errcode.AccountNotFound))
	got, _ := l.Account(ctx, wallet.Address)
	assert.Equal(t, uint64(100), got.Amount)
}

func TestSettleRejections(t *testing.T) {
	ctx := context.Background()
	l := New(nil)
	user, manager, mint := key(), key(), key()
	wallet := models.TokenAccount{Address: key(), Owner: user, Mint: mint, Amount: 10}
	other := models.TokenAccount{Address: key(), Owner: manager, Mint: key(), Amount: 0}
	l.Fund(wallet)
	l.Fund(other)

	_, err := l.Settle(ctx, models.NewSettlement("x", user).Transfer(wallet.Address, other.Address, 1, user))
	assert.True(t, errcode.Has(err, errcode.IncorrectMint))

	_, err = l.Settle(ctx, models.NewSettlement("x", user).Transfer(wallet.Address, other.Address, 1, manager))
	assert.True(t, errcode.Has(err, errcode.IncorrectOwner))

	_, err = l.Settle(ctx, models.NewSettlement("x", user).Open(wallet.Address, user, mint, false))
	assert.True(t, errcode.Has(err, errcode.AccountAlreadyExists))

	_, err = l.Settle(ctx, models.NewSettlement("x", user).Open(wallet.Address, user, mint, true))
	assert.NoError(t, err)

	_, err = l.Settle(ctx, models.NewSettlement("x", user).Close(wallet.Address, user, user))
	assert.Error(t, err)

	_, err = l.Settle(ctx, models.NewSettlement("x", user))
	assert.Error(t, err)

	_, err = l.Settle(ctx, models.NewSettlement("x", user).Execute(models.VenueInstruction{}))
	assert.Error(t, err)
}
