package interfaces

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// ICustody reads token accounts. Effects go through ISettler.
type ICustody interface {
	Account(ctx context.Context, address solana.PublicKey) (*models.TokenAccount, error)
}

// ISettler applies a settlement all-or-nothing and returns its reference.
type ISettler interface {
	Settle(ctx context.Context, settlement *models.Settlement) (string, error)
}
