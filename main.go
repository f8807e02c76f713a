package main

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/config"
	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/server"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/interfaces"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/route"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/vault"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/chain"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/ledger"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/memory"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/mongodb"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/mysql"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/redis"
	statsd_client "gitlab.com/crypto_project/core/delegate_vault/src/statsd"
	"gitlab.com/crypto_project/core/delegate_vault/src/trading"
)

const startupTimeout = 20 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	var logger *zap.Logger
	if cfg.Local {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	svc, nonces, err := build(ctx, cfg, logger)
	if err == nil {
		err = bootstrapConfig(ctx, cfg, svc)
	}
	cancel()
	if err != nil {
		logger.Fatal("startup", zap.Error(err))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go server.RunServer(&wg, cfg.HTTPAddr, cfg.Compress, server.New(svc, nonces).Handler())
	wg.Wait()
}

// build wires the vault service and the request nonce store from cfg.
func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*vault.Service, interfaces.INonceStore, error) {
	programID, err := optionalKey(cfg.ProgramID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "PROGRAM_ID")
	}
	venueID, err := optionalKey(cfg.VenueProgramID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "VENUE_PROGRAM_ID")
	}

	opts := vault.Options{
		Log:               logger,
		ProgramID:         programID,
		VenueProgramID:    venueID,
		RouteTable:        cfg.RouteTable,
		StrictDestination: cfg.StrictDestination,
	}

	switch cfg.Store {
	case config.StoreMongoDB:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.Local, startupTimeout)
		if err != nil {
			return nil, nil, err
		}
		opts.Store = mongodb.NewStore(client, cfg.MongoDatabase)
	default:
		opts.Store = memory.NewStore()
	}

	var nonces interfaces.INonceStore
	switch cfg.Locker {
	case config.LockerRedis:
		pool := redis.NewPool(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		opts.Locker = redis.NewLocker(pool, cfg.LockExpiry)
		nonces = redis.NewNonceStore(pool)
	default:
		opts.Locker = memory.NewLocker()
		nonces = memory.NewNonces()
	}

	switch cfg.Custody {
	case config.CustodyChain:
		opts.Custody = chain.NewCustody(cfg.SolanaRPC)
		opts.Settler = trading.NewRelay(cfg.RelayHost, cfg.RelayTimeout)
	default:
		table, ok := route.TableFor(cfg.RouteTable)
		if !ok {
			table = route.JupiterV6
		}
		l := ledger.New(trading.NewSimulator(table))
		opts.Custody, opts.Settler = l, l
		logger.Warn("using in-process ledger, balances are not persisted")
	}

	if cfg.JournalDSN != "" {
		journal, err := mysql.Open(ctx, cfg.JournalDSN)
		if err != nil {
			return nil, nil, err
		}
		opts.Journal = journal
	}

	stats := &statsd_client.StatsdClient{Log: logger.With(zap.String("logger", "statsd"))}
	stats.Init(cfg.StatsdHost, cfg.StatsdPort, cfg.StatsdPrefix)
	opts.Stats = stats

	svc, err := vault.New(opts)
	return svc, nonces, err
}

// bootstrapConfig creates the global config from the environment on first start.
func bootstrapConfig(ctx context.Context, cfg *config.Config, svc *vault.Service) error {
	if cfg.ConfigAuthority == "" {
		return nil
	}
	monthly, yearly, err := cfg.SubscriptionAmounts()
	if err != nil {
		return err
	}
	req := vault.InitConfigRequest{
		MonthlyAmount:            monthly,
		YearlyAmount:             yearly,
		PerformanceFee:           cfg.PerformanceFee,
		SubscribedPerformanceFee: cfg.SubscribedPerformanceFee,
	}
	keys := []struct {
		value string
		dst   *solana.PublicKey
	}{
		{cfg.ConfigAuthority, &req.Signer},
		{cfg.PaymentMint, &req.PaymentMint},
		{cfg.PaymentReceiver, &req.PaymentReceiver},
		{cfg.PerformanceReceiver, &req.PerformanceReceiver},
	}
	for _, k := range keys {
		if *k.dst, err = optionalKey(k.value); err != nil {
			return err
		}
	}
	_, err = svc.InitConfig(ctx, req)
	if errcode.Has(err, errcode.AccountAlreadyExists) {
		return nil
	}
	return err
}

func optionalKey(s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, nil
	}
	k, err := solana.PublicKeyFromBase58(s)
	return k, errors.Wrapf(err, "key %q", s)
}
