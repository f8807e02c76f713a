package permission

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

type fixture struct {
	manager *models.Manager
	vaultA  *models.TokenAccount
	vaultB  *models.TokenAccount
	foreign *models.TokenAccount
}

func newFixture() fixture {
	key := func() solana.PublicKey { return solana.NewWallet().PublicKey() }
	m := &models.Manager{Address: key(), Authority: key(), Delegate: key()}
	return fixture{
		manager: m,
		vaultA:  &models.TokenAccount{Address: key(), Owner: m.Address, Mint: key()},
		vaultB:  &models.TokenAccount{Address: key(), Owner: m.Address, Mint: key()},
		foreign: &models.TokenAccount{Address: key(), Owner: key(), Mint: key()},
	}
}

var allOps = []models.Operation{
	models.OpDeposit, models.OpWithdraw, models.OpSwap, models.OpLiquidate,
	models.OpInitTokenVault, models.OpCloseTokenVault, models.OpPaySubscription,
}

func TestAuthorityIsAlwaysAllowed(t *testing.T) {
	f := newFixture()
	g := Guard{}
	for _, op := range allOps {
		d := g.Authorize(f.manager.Authority, f.foreign, nil, f.manager, op)
		assert.True(t, d.Allowed, op.String())
		assert.Equal(t, models.RoleAuthority, d.Role)
		assert.NoError(t, d.Err())
	}
}

func TestStrangerIsDeniedWithIncorrectSigner(t *testing.T) {
	f := newFixture()
	g := Guard{}
	for i := 0; i < 20; i++ {
		stranger := solana.NewWallet().PublicKey()
		for _, op := range allOps {
			d := g.Authorize(stranger, f.vaultA, f.vaultB, f.manager, op)
			require.False(t, d.Allowed)
			assert.Equal(t, errcode.IncorrectSigner, d.Reason)
			assert.True(t, errcode.Has(d.Err(), errcode.IncorrectSigner))
		}
	}
}

func TestDelegateLimitedToLiquidationClass(t *testing.T) {
	f := newFixture()
	g := Guard{}
	for _, op := range allOps {
		d := g.Authorize(f.manager.Delegate, f.vaultA, f.vaultB, f.manager, op)
		if op.IsLiquidationClass() {
			assert.True(t, d.Allowed, op.String())
			assert.Equal(t, models.RoleDelegate, d.Role)
			continue
		}
		assert.False(t, d.Allowed, op.String())
		assert.Equal(t, errcode.DelegateNotAllowed, d.Reason, op.String())
	}
}

// ownership is checked before the signer, so any non-authority on foreign vaults gets IncorrectOwner
func TestForeignVaultsDeniedForNonAuthority(t *testing.T) {
	f := newFixture()
	g := Guard{}
	for _, signer := range []solana.PublicKey{f.manager.Delegate, solana.NewWallet().PublicKey()} {
		d := g.Authorize(signer, f.vaultA, f.foreign, f.manager, models.OpLiquidate)
		assert.Equal(t, errcode.IncorrectOwner, d.Reason)
		d = g.Authorize(signer, f.foreign, f.vaultB, f.manager, models.OpSwap)
		assert.Equal(t, errcode.IncorrectOwner, d.Reason)
		d = g.Authorize(signer, nil, f.vaultB, f.manager, models.OpLiquidate)
		assert.Equal(t, errcode.IncorrectOwner, d.Reason)
	}
}

func TestAuthorizeIsIdempotent(t *testing.T) {
	f := newFixture()
	g := Guard{}
	first := g.Authorize(f.manager.Delegate, f.vaultA, f.vaultB, f.manager, models.OpWithdraw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, g.Authorize(f.manager.Delegate, f.vaultA, f.vaultB, f.manager, models.OpWithdraw))
	}
}

func TestAuthorizeOwner(t *testing.T) {
	f := newFixture()
	g := Guard{}
	assert.True(t, g.AuthorizeOwner(f.manager.Authority, f.manager, models.OpPaySubscription).Allowed)
	assert.Equal(t, errcode.DelegateNotAllowed, g.AuthorizeOwner(f.manager.Delegate, f.manager, models.OpPaySubscription).Reason)
	assert.Equal(t, errcode.IncorrectSigner, g.AuthorizeOwner(solana.NewWallet().PublicKey(), f.manager, models.OpDeposit).Reason)
	assert.Equal(t, errcode.IncorrectManager, g.AuthorizeOwner(f.manager.Authority, nil, models.OpDeposit).Reason)
}

func TestVerifyDepositMint(t *testing.T) {
	f := newFixture()
	order := &models.Order{DepositMint: f.vaultA.Mint}
	require.NoError(t, VerifyDepositMint(f.vaultA.Mint, f.vaultA, f.vaultB, order))
	require.NoError(t, VerifyDepositMint(f.vaultA.Mint, f.vaultB, f.vaultA, order))

	err := VerifyDepositMint(f.foreign.Mint, f.vaultA, f.vaultB, order)
	assert.True(t, errcode.Has(err, errcode.IncorrectMint))

	err = VerifyDepositMint(f.vaultB.Mint, f.vaultA, f.vaultB, order)
	assert.True(t, errcode.Has(err, errcode.IncorrectMint))
}
