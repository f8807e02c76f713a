package route

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

func key() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

type scenario struct {
	manager, orderVault, tokenVault, outMint, depositMint solana.PublicKey
}

func newScenario() scenario {
	return scenario{manager: key(), orderVault: key(), tokenVault: key(), outMint: key(), depositMint: key()}
}

func (s scenario) expectation() Expectation {
	return Expectation{
		Manager:       s.manager,
		Vaults:        []solana.PublicKey{s.orderVault, s.tokenVault},
		OutputMint:    s.outMint,
		CostBasisMint: s.depositMint,
		DepositMint:   s.depositMint,
	}
}

func build(t *testing.T, v Variant, keys []solana.PublicKey) models.VenueInstruction {
	ix, ok := JupiterV6.Build(models.VenueProgramID, v, keys, Args{Amount: 1000, QuotedAmount: 990, SlippageBps: 50, PlatformFeeBps: 3})
	require.True(t, ok)
	return ix
}

var allVariants = []Variant{
	VariantRoute, VariantRouteWithTokenLedger, VariantExactOutRoute,
	VariantSharedAccountsRoute, VariantSharedAccountsRouteWithTokenLedger, VariantSharedAccountsExactOutRoute,
}

func familyOf(v Variant) Family {
	switch v {
	case VariantSharedAccountsRoute, VariantSharedAccountsRouteWithTokenLedger, VariantSharedAccountsExactOutRoute:
		return FamilyShared
	}
	return FamilyDirect
}

func TestValidateAcceptsEveryVariant(t *testing.T) {
	s := newScenario()
	validator := NewValidator(solana.PublicKey{}, JupiterV6)
	for _, v := range allVariants {
		keys := JupiterV6.Participants(familyOf(v), 10, s.manager, s.orderVault, s.tokenVault, s.outMint)
		r, err := validator.Validate(build(t, v, keys), s.expectation())
		require.NoError(t, err, v.String())
		assert.Equal(t, v, r.Variant)
		assert.Equal(t, s.orderVault, r.Source)
		assert.Equal(t, s.tokenVault, r.Destination)
		assert.False(t, r.DestinationTolerated)
		require.NotNil(t, r.Args)
		assert.Equal(t, uint64(1000), r.Args.Amount)
		assert.Equal(t, uint64(990), r.Args.QuotedAmount)
		assert.Equal(t, uint16(50), r.Args.SlippageBps)
		assert.Equal(t, uint8(3), r.Args.PlatformFeeBps)
		assert.Equal(t, v == VariantExactOutRoute || v == VariantSharedAccountsExactOutRoute, r.Args.ExactOut)
	}
}

func TestShortOrUnknownSignatureFailsClosed(t *testing.T) {
	s := newScenario()
	validator := NewValidator(models.VenueProgramID, JupiterV6)
	keys := JupiterV6.Participants(FamilyShared, 10, s.manager, s.orderVault, s.tokenVault, s.outMint)

	for n := 0; n < SignatureLen; n++ {
		ix := build(t, VariantSharedAccountsRoute, keys)
		ix.Data = ix.Data[:n]
		_, err := validator.Validate(ix, s.expectation())
		assert.True(t, errcode.Has(err, errcode.InvalidRoute), "len %d", n)
	}

	ix := build(t, VariantSharedAccountsRoute, keys)
	ix.Data[0] ^= 0xff
	_, err := validator.Validate(ix, s.expectation())
	assert.True(t, errcode.Has(err, errcode.InvalidRoute))
}

func TestForeignProgramRejected(t *testing.T) {
	s := newScenario()
	keys := JupiterV6.Participants(FamilyDirect, 6, s.manager, s.orderVault, s.tokenVault, s.outMint)
	ix := build(t, VariantRoute, keys)
	ix.ProgramID = key()
	_, err := NewValidator(models.VenueProgramID, JupiterV6).Validate(ix, s.expectation())
	assert.True(t, errcode.Has(err, errcode.JupiterProgramNotExpected))
}

func TestTooFewParticipants(t *testing.T) {
	s := newScenario()
	validator := NewValidator(models.VenueProgramID, JupiterV6)

	ix := build(t, VariantRoute, []solana.PublicKey{key(), s.manager, s.orderVault, key(), s.tokenVault})
	_, err := validator.Validate(ix, s.expectation())
	assert.True(t, errcode.Has(err, errcode.InvalidRemainingAccounts))

	// the shared family reads slot 8, so 6 accounts pass the minimum but not the layout
	ix = build(t, VariantSharedAccountsRoute, []solana.PublicKey{key(), key(), s.manager, s.orderVault, key(), key()})
	_, err = validator.Validate(ix, s.expectation())
	assert.True(t, errcode.Has(err, errcode.InvalidRemainingAccounts))
}

func TestContainmentChecks(t *testing.T) {
	s := newScenario()
	validator := NewValidator(models.VenueProgramID, JupiterV6)
	cases := []struct {
		name                          string
		authority, source, dest, mint solana.PublicKey
		strict                        bool
		costBasis                     solana.PublicKey
		want                          errcode.Code
	}{
		{"authority", key(), s.orderVault, s.tokenVault, s.outMint, false, s.depositMint, errcode.InvalidTransferAuthority},
		{"source", s.manager, key(), s.tokenVault, s.outMint, false, s.depositMint, errcode.InvalidSourceTokenAccount},
		{"strict destination", s.manager, s.orderVault, key(), s.outMint, true, s.depositMint, errcode.InvalidDestinationTokenAccount},
		{"destination other cost basis", s.manager, s.orderVault, key(), s.outMint, false, key(), errcode.InvalidDestinationTokenAccount},
		{"mint", s.manager, s.orderVault, s.tokenVault, key(), false, s.depositMint, errcode.IncorrectMint},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp := s.expectation()
			exp.StrictDestination = tc.strict
			exp.CostBasisMint = tc.costBasis
			keys := JupiterV6.Participants(FamilyDirect, 8, tc.authority, tc.source, tc.dest, tc.mint)
			_, err := validator.Validate(build(t, VariantExactOutRoute, keys), exp)
			code, ok := errcode.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestDestinationExceptionForDepositAsset(t *testing.T) {
	s := newScenario()
	validator := NewValidator(models.VenueProgramID, JupiterV6)
	outside := key()
	keys := JupiterV6.Participants(FamilyShared, 12, s.manager, s.tokenVault, outside, s.outMint)

	r, err := validator.Validate(build(t, VariantSharedAccountsRoute, keys), s.expectation())
	require.NoError(t, err)
	assert.True(t, r.DestinationTolerated)
	assert.Equal(t, outside, r.Destination)
}

func TestDecodeArgsTooShort(t *testing.T) {
	assert.Nil(t, DecodeArgs(make([]byte, SignatureLen+argsTailLen-1), false))
	tail := EncodeArgs(Args{Amount: 7, QuotedAmount: 9, SlippageBps: 300, PlatformFeeBps: 1})
	assert.Len(t, tail, argsTailLen)
	args := DecodeArgs(append(make([]byte, SignatureLen+4), tail...), true)
	require.NotNil(t, args)
	assert.Equal(t, Args{Amount: 7, QuotedAmount: 9, SlippageBps: 300, PlatformFeeBps: 1, ExactOut: true}, *args)
}

func TestTableRegistry(t *testing.T) {
	table, ok := TableFor("jupiter-v6")
	require.True(t, ok)
	assert.Len(t, table.Entries, 6)
	_, ok = TableFor("jupiter-v7")
	assert.False(t, ok)
}
