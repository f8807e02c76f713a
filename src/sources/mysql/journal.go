// Package mysql appends withdrawal, subscription and fee sweep records to an audit table.
package mysql

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

var log *zap.Logger

func init() {
	log, _ = zap.NewProduction()
	log = log.With(zap.String("logger", "srcMysql"))
}

const createTable = `
	CREATE TABLE IF NOT EXISTS vault_journal (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		kind VARCHAR(32) NOT NULL,
		manager VARCHAR(44) NOT NULL,
		order_address VARCHAR(44) NOT NULL,
		mint VARCHAR(44) NOT NULL,
		amount DECIMAL(20, 0) NOT NULL,
		fee DECIMAL(20, 0) NOT NULL,
		rate_bps SMALLINT UNSIGNED NOT NULL,
		settlement VARCHAR(128) NOT NULL,
		recorded_at DATETIME(3) NOT NULL,
		KEY manager_idx (manager)
	)`

const insertEntry = `
	INSERT INTO vault_journal
		(kind, manager, order_address, mint, amount, fee, rate_bps, settlement, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLConn is the journal. It implements interfaces.IJournal.
type SQLConn struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open connects with dsn, for example "user:pass@tcp(host:3306)/vault?parseTime=true".
func Open(ctx context.Context, dsn string) (*SQLConn, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "mysql open")
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "mysql ping")
	}
	return New(ctx, db)
}

// New prepares the journal on an open database, creating the table when missing.
func New(ctx context.Context, db *sql.DB) (*SQLConn, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, errors.Wrap(err, "create vault_journal")
	}
	insert, err := db.PrepareContext(ctx, insertEntry)
	if err != nil {
		return nil, errors.Wrap(err, "prepare journal insert")
	}
	return &SQLConn{db: db, insert: insert}, nil
}

func (sc *SQLConn) Record(ctx context.Context, entry models.JournalEntry) error {
	_, err := sc.insert.ExecContext(ctx,
		string(entry.Kind),
		keyOrEmpty(entry.Manager),
		keyOrEmpty(entry.Order),
		keyOrEmpty(entry.Mint),
		strconv.FormatUint(entry.Amount, 10),
		strconv.FormatUint(entry.Fee, 10),
		entry.RateBps,
		entry.Settlement,
		entry.At.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "journal %s", entry.Kind)
	}
	log.Debug("journal entry", zap.String("kind", string(entry.Kind)), zap.String("settlement", entry.Settlement))
	return nil
}

func (sc *SQLConn) Close() error {
	if err := sc.insert.Close(); err != nil {
		log.Warn("close statement", zap.Error(err))
	}
	return sc.db.Close()
}

func keyOrEmpty(k solana.PublicKey) string {
	if k.IsZero() {
		return ""
	}
	return k.String()
}
