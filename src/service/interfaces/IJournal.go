package interfaces

import (
	"context"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// IJournal is an append-only audit trail of fee-bearing events.
type IJournal interface {
	Record(ctx context.Context, entry models.JournalEntry) error
}
