package models

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func TestCapabilityTable(t *testing.T) {
	all := []Operation{OpDeposit, OpWithdraw, OpSwap, OpLiquidate, OpInitTokenVault, OpCloseTokenVault, OpPaySubscription}
	for _, op := range all {
		assert.True(t, RoleAuthority.Can(op), op.String())
		assert.False(t, RoleNone.Can(op), op.String())
	}

	assert.True(t, RoleDelegate.Can(OpLiquidate))
	assert.True(t, RoleDelegate.Can(OpCloseTokenVault))
	for _, op := range []Operation{OpDeposit, OpWithdraw, OpSwap, OpInitTokenVault, OpPaySubscription} {
		assert.False(t, RoleDelegate.Can(op), op.String())
		assert.False(t, op.IsLiquidationClass(), op.String())
	}
	assert.True(t, OpLiquidate.IsLiquidationClass())
	assert.True(t, OpCloseTokenVault.IsLiquidationClass())

	// unknown operations need a capability nobody holds
	assert.False(t, RoleAuthority.Can(Operation(99)))
	assert.False(t, Operation(99).IsLiquidationClass())
}

func TestManagerRoleOf(t *testing.T) {
	m := &Manager{Authority: newKey(), Delegate: newKey()}
	assert.Equal(t, RoleAuthority, m.RoleOf(m.Authority))
	assert.Equal(t, RoleDelegate, m.RoleOf(m.Delegate))
	assert.Equal(t, RoleNone, m.RoleOf(newKey()))

	assert.False(t, m.HasProject())
	m.Project = newKey()
	assert.True(t, m.HasProject())

	m.SubscriptionEnd = 100
	assert.True(t, m.IsSubscribed(99))
	assert.False(t, m.IsSubscribed(100))
}

func TestFeeValidation(t *testing.T) {
	require.NoError(t, ValidateFeeBps(0))
	require.NoError(t, ValidateFeeBps(MaxFeeBps))

	err := ValidateFeeBps(MaxFeeBps + 1)
	assert.True(t, errcode.Has(err, errcode.IncorrectFee))

	cfg := &Config{PerformanceFee: 250, SubscribedPerformanceFee: 10001}
	assert.True(t, errcode.Has(cfg.Validate(), errcode.IncorrectFee))
}

func TestAddressesAreDeterministic(t *testing.T) {
	addrs := NewAddresses(solana.PublicKey{})
	assert.Equal(t, DefaultProgramID, addrs.Program)

	authority := newKey()
	m1, bump1, err := addrs.Manager(solana.PublicKey{}, authority)
	require.NoError(t, err)
	m2, bump2, err := addrs.Manager(solana.PublicKey{}, authority)
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
	assert.Equal(t, bump1, bump2)

	// a project manager lives at a different address than a standalone one
	withProject, _, err := addrs.Manager(newKey(), authority)
	require.NoError(t, err)
	assert.NotEqual(t, m1, withProject)

	order, _, err := addrs.Order(m1, newKey())
	require.NoError(t, err)
	mint := newKey()
	ov, _, err := addrs.OrderVault(authority, m1, order, mint)
	require.NoError(t, err)
	tv, _, err := addrs.TokenVault(authority, m1, order, mint)
	require.NoError(t, err)
	assert.NotEqual(t, ov, tv)
}

func TestCoSignedMarksOnlyManager(t *testing.T) {
	manager, other := newKey(), newKey()
	ix := VenueInstruction{
		ProgramID: VenueProgramID,
		Accounts: solana.AccountMetaSlice{
			solana.NewAccountMeta(other, true, true),
			solana.NewAccountMeta(manager, false, false),
		},
		Data: []byte{1, 2, 3},
	}

	signed := ix.CoSigned(manager)
	require.Len(t, signed.Accounts, 2)
	assert.False(t, signed.Accounts[0].IsSigner)
	assert.True(t, signed.Accounts[0].IsWritable)
	assert.True(t, signed.Accounts[1].IsSigner)

	signed.Data[0] = 9
	assert.Equal(t, byte(1), ix.Data[0])
	assert.Equal(t, []solana.PublicKey{other, manager}, signed.Keys())
}

func TestSettlementSkipsZeroTransfers(t *testing.T) {
	s := NewSettlement("withdraw", newKey()).
		Transfer(newKey(), newKey(), 0, newKey()).
		Close(newKey(), newKey(), newKey())
	require.Len(t, s.Steps, 1)
	assert.Equal(t, StepClose, s.Steps[0].Kind)
	assert.False(t, s.Empty())
}

func TestOrderTokenVaultSet(t *testing.T) {
	a, b := newKey(), newKey()
	order := &Order{}
	order.AddTokenVault(a)
	order.AddTokenVault(b)
	order.AddTokenVault(a)
	assert.Equal(t, []solana.PublicKey{a, b}, order.TokenVaults)

	clone := order.Clone()
	clone.RemoveTokenVault(a)
	assert.Equal(t, []solana.PublicKey{b}, clone.TokenVaults)
	assert.Equal(t, []solana.PublicKey{a, b}, order.TokenVaults)
	assert.True(t, order.HasTokenVault(a))
	assert.False(t, clone.HasTokenVault(a))
}
