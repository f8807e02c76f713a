package trading

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/route"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/ledger"
)

func key() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func newTestRelay(t *testing.T, handler fasthttp.RequestHandler) *Relay {
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	relay := NewRelay("relay.local", time.Second)
	relay.Client.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }
	return relay
}

func TestRelaySettle(t *testing.T) {
	var received models.Settlement
	relay := newTestRelay(t, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, "/settle", string(ctx.Path()))
		assert.NoError(t, json.Unmarshal(ctx.PostBody(), &received))
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"OK","data":{"signature":"5sig","slot":42}}`)
	})

	payer := key()
	s := models.NewSettlement("withdraw", payer).Transfer(key(), key(), 10, key())
	sig, err := relay.Settle(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "5sig", sig)
	assert.Equal(t, "withdraw", received.Label)
	assert.Equal(t, payer, received.Payer)
	require.Len(t, received.Steps, 1)
	assert.Equal(t, uint64(10), received.Steps[0].Amount)
}

func TestRelayRejected(t *testing.T) {
	relay := newTestRelay(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"status":"ERR","message":"blockhash expired"}`)
	})
	_, err := relay.Settle(context.Background(), models.NewSettlement("swap", key()).Close(key(), key(), key()))
	require.Error(t, err)
	assert.EqualError(t, err, "settlement swap rejected: blockhash expired")
}

func TestRelayHTTPError(t *testing.T) {
	relay := newTestRelay(t, func(ctx *fasthttp.RequestCtx) {
		ctx.Error("down", fasthttp.StatusBadGateway)
	})
	_, err := relay.Settle(context.Background(), models.NewSettlement("swap", key()).Close(key(), key(), key()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSimulatorFillsAtQuote(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulator(route.JupiterV6)
	l := ledger.New(sim)
	manager, usdc, sol := key(), key(), key()
	orderVault := models.TokenAccount{Address: key(), Owner: manager, Mint: usdc, Amount: 1000}
	tokenVault := models.TokenAccount{Address: key(), Owner: manager, Mint: sol}
	l.Fund(orderVault)
	l.Fund(tokenVault)

	keys := route.JupiterV6.Participants(route.FamilyShared, 10, manager, orderVault.Address, tokenVault.Address, sol)
	ix, ok := route.JupiterV6.Build(models.VenueProgramID, route.VariantSharedAccountsRoute, keys, route.Args{Amount: 400, QuotedAmount: 3})
	require.True(t, ok)

	// without the manager co-signature the fill is refused
	_, err := l.Settle(ctx, models.NewSettlement("swap", manager).Execute(ix))
	require.Error(t, err)

	_, err = l.Settle(ctx, models.NewSettlement("swap", manager).Execute(ix.CoSigned(manager)))
	require.NoError(t, err)
	got, _ := l.Account(ctx, orderVault.Address)
	assert.Equal(t, uint64(600), got.Amount)
	got, _ = l.Account(ctx, tokenVault.Address)
	assert.Equal(t, uint64(3), got.Amount)
}

func TestSimulatorExactOut(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(NewSimulator(route.JupiterV6))
	manager, usdc, sol := key(), key(), key()
	orderVault := models.TokenAccount{Address: key(), Owner: manager, Mint: usdc}
	tokenVault := models.TokenAccount{Address: key(), Owner: manager, Mint: sol, Amount: 5}
	l.Fund(orderVault)
	l.Fund(tokenVault)

	keys := route.JupiterV6.Participants(route.FamilyDirect, 6, manager, tokenVault.Address, orderVault.Address, usdc)
	ix, _ := route.JupiterV6.Build(models.VenueProgramID, route.VariantExactOutRoute, keys, route.Args{Amount: 700, QuotedAmount: 5})
	_, err := l.Settle(ctx, models.NewSettlement("liquidate", manager).Execute(ix.CoSigned(manager)))
	require.NoError(t, err)
	got, _ := l.Account(ctx, orderVault.Address)
	assert.Equal(t, uint64(700), got.Amount)
	got, _ = l.Account(ctx, tokenVault.Address)
	assert.Zero(t, got.Amount)
}
