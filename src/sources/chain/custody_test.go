package chain

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
)

func tokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}

func TestDecodeTokenAccount(t *testing.T) {
	address := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	a, err := decodeTokenAccount(address, tokenAccountData(mint, owner, 1234), 2039280)
	require.NoError(t, err)
	assert.Equal(t, address, a.Address)
	assert.Equal(t, mint, a.Mint)
	assert.Equal(t, owner, a.Owner)
	assert.Equal(t, uint64(1234), a.Amount)
	assert.Equal(t, uint64(2039280), a.Lamports)

	_, err = decodeTokenAccount(address, make([]byte, 82), 0)
	assert.Error(t, err)
}

// serveRPC answers every JSON-RPC call with value, echoing the request id.
func serveRPC(t *testing.T, value string) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.Unmarshal(ctx.PostBody(), &req)
		ctx.SetContentType("application/json")
		fmt.Fprintf(ctx, `{"jsonrpc":"2.0","id":%s,"result":{"context":{"slot":1},"value":%s}}`, req.ID, value)
	}}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return "http://" + ln.Addr().String()
}

func TestCustodyReadsTokenAccount(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	data := base64.StdEncoding.EncodeToString(tokenAccountData(mint, owner, 77))
	endpoint := serveRPC(t, fmt.Sprintf(
		`{"data":["%s","base64"],"executable":false,"lamports":2039280,"owner":"%s","rentEpoch":0}`,
		data, solana.TokenProgramID,
	))

	a, err := NewCustody(endpoint).Account(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, mint, a.Mint)
	assert.Equal(t, owner, a.Owner)
	assert.Equal(t, uint64(77), a.Amount)
}

func TestCustodyMissingAccount(t *testing.T) {
	endpoint := serveRPC(t, "null")
	_, err := NewCustody(endpoint).Account(context.Background(), solana.NewWallet().PublicKey())
	assert.True(t, errcode.Has(err, errcode.AccountNotFound), "%v", err)
}

func TestCustodyRejectsForeignProgram(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(make([]byte, TokenAccountSize))
	endpoint := serveRPC(t, fmt.Sprintf(
		`{"data":["%s","base64"],"executable":false,"lamports":1,"owner":"%s","rentEpoch":0}`,
		data, solana.SystemProgramID,
	))
	_, err := NewCustody(endpoint).Account(context.Background(), solana.NewWallet().PublicKey())
	assert.Error(t, err)
	assert.False(t, errcode.Has(err, errcode.AccountNotFound))
}
