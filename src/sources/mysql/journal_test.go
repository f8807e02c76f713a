package mysql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// Needs a live server: JOURNAL_MYSQL_DSN="root:root@tcp(localhost:3306)/vault" go test ./src/sources/mysql
func TestRecordAppendsEntry(t *testing.T) {
	dsn := os.Getenv("JOURNAL_MYSQL_DSN")
	if dsn == "" {
		t.Skip("JOURNAL_MYSQL_DSN not set")
	}
	ctx := context.Background()
	journal, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer journal.Close()

	settlement := "withdraw-test-" + time.Now().Format("150405.000000")
	err = journal.Record(ctx, models.JournalEntry{
		Kind:       models.JournalWithdraw,
		Manager:    solana.NewWallet().PublicKey(),
		Order:      solana.NewWallet().PublicKey(),
		Mint:       solana.NewWallet().PublicKey(),
		Amount:     ^uint64(0),
		Fee:        50,
		RateBps:    1000,
		Settlement: settlement,
		At:         time.Now(),
	})
	require.NoError(t, err)

	var fee string
	err = journal.db.QueryRowContext(ctx, "SELECT fee FROM vault_journal WHERE settlement = ?", settlement).Scan(&fee)
	require.NoError(t, err)
	require.Equal(t, "50", fee)
}
