// Package chain reads token accounts from a Solana RPC node.
package chain

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "srcChain"))
}

// TokenAccountSize is the length of an SPL token account.
const TokenAccountSize = 165

// splAccountHead is the fixed prefix of the SPL token account layout.
type splAccountHead struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

type Custody struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

func NewCustody(endpoint string) *Custody {
	return &Custody{client: rpc.New(endpoint), commitment: rpc.CommitmentConfirmed}
}

func (c *Custody) Account(ctx context.Context, address solana.PublicKey) (*models.TokenAccount, error) {
	res, err := c.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (res == nil || res.Value == nil)) {
		return nil, errcode.Newf(errcode.AccountNotFound, "token account %s", address)
	}
	if err != nil {
		log.Warn("getAccountInfo", zap.String("address", address.String()), zap.Error(err))
		return nil, errors.Wrapf(err, "getAccountInfo %s", address)
	}
	if !res.Value.Owner.Equals(solana.TokenProgramID) {
		return nil, errors.Errorf("%s is owned by program %s, not the token program", address, res.Value.Owner)
	}
	return decodeTokenAccount(address, res.Value.Data.GetBinary(), res.Value.Lamports)
}

func decodeTokenAccount(address solana.PublicKey, data []byte, lamports uint64) (*models.TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, errors.Errorf("%s: %d bytes is not a token account", address, len(data))
	}
	var head splAccountHead
	if err := bin.NewBinDecoder(data).Decode(&head); err != nil {
		return nil, errors.Wrapf(err, "decode token account %s", address)
	}
	return &models.TokenAccount{
		Address:  address,
		Owner:    head.Owner,
		Mint:     head.Mint,
		Amount:   head.Amount,
		Lamports: lamports,
	}, nil
}
