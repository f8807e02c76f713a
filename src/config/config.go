// Package config reads the service settings from the environment, with an optional .env file.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory  = "memory"
	StoreMongoDB = "mongodb"

	LockerMemory = "memory"
	LockerRedis  = "redis"

	CustodyLedger = "ledger"
	CustodyChain  = "chain"
)

type Config struct {
	Local    bool   `mapstructure:"LOCAL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	Compress bool   `mapstructure:"HTTP_COMPRESS"`

	ProgramID         string `mapstructure:"PROGRAM_ID"`
	VenueProgramID    string `mapstructure:"VENUE_PROGRAM_ID"`
	RouteTable        string `mapstructure:"ROUTE_TABLE"`
	StrictDestination bool   `mapstructure:"ROUTE_STRICT_DESTINATION"`

	Store         string `mapstructure:"STORE"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	Locker        string        `mapstructure:"LOCKER"`
	RedisHost     string        `mapstructure:"REDIS_HOST"`
	RedisPort     string        `mapstructure:"REDIS_PORT"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	LockExpiry    time.Duration `mapstructure:"LOCK_EXPIRY"`

	Custody      string        `mapstructure:"CUSTODY"`
	SolanaRPC    string        `mapstructure:"SOLANA_RPC_URL"`
	RelayHost    string        `mapstructure:"SETTLEMENT_RELAY_HOST"`
	RelayTimeout time.Duration `mapstructure:"SETTLEMENT_RELAY_TIMEOUT"`

	JournalDSN string `mapstructure:"JOURNAL_MYSQL_DSN"`

	StatsdHost   string `mapstructure:"STATSD_HOST"`
	StatsdPort   int    `mapstructure:"STATSD_PORT"`
	StatsdPrefix string `mapstructure:"STATSD_PREFIX"`

	// Global fee policy created on first start when ConfigAuthority is set.
	ConfigAuthority          string `mapstructure:"CONFIG_AUTHORITY"`
	PaymentMint              string `mapstructure:"PAYMENT_MINT"`
	PaymentMintDecimals      int32  `mapstructure:"PAYMENT_MINT_DECIMALS"`
	PaymentReceiver          string `mapstructure:"PAYMENT_RECEIVER"`
	PerformanceReceiver      string `mapstructure:"PERFORMANCE_RECEIVER"`
	MonthlyPrice             string `mapstructure:"SUBSCRIPTION_MONTHLY_PRICE"`
	YearlyPrice              string `mapstructure:"SUBSCRIPTION_YEARLY_PRICE"`
	PerformanceFee           uint16 `mapstructure:"PERFORMANCE_FEE_BPS"`
	SubscribedPerformanceFee uint16 `mapstructure:"SUBSCRIBED_PERFORMANCE_FEE_BPS"`
}

var defaults = map[string]interface{}{
	"HTTP_ADDR":                ":8080",
	"ROUTE_TABLE":              "jupiter-v6",
	"STORE":                    StoreMemory,
	"MONGODB_DATABASE":         "delegate_vault",
	"LOCKER":                   LockerMemory,
	"REDIS_PORT":               "6379",
	"LOCK_EXPIRY":              "8s",
	"CUSTODY":                  CustodyLedger,
	"SETTLEMENT_RELAY_TIMEOUT": "15s",
	"STATSD_PORT":              8125,
	"STATSD_PREFIX":            "delegate_vault",
	"PAYMENT_MINT_DECIMALS":    6,
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local builds
	_ = godotenv.Load()
	return FromEnviron(os.Environ())
}

// FromEnviron decodes KEY=VALUE pairs over the defaults.
func FromEnviron(environ []string) (*Config, error) {
	values := make(map[string]interface{}, len(defaults)+len(environ))
	for k, v := range defaults {
		values[k] = v
	}
	for _, kv := range environ {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		values[kv[:i]] = kv[i+1:]
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(values); err != nil {
		return nil, errors.Wrap(err, "decode environment")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// minLockExpiry keeps the redsync extension interval (a third of the expiry) well above
// a redis round trip.
const minLockExpiry = time.Second

func (c *Config) validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreMongoDB:
		if c.MongoURI == "" {
			return errors.New("STORE=mongodb needs MONGODB_URI")
		}
	default:
		return errors.Errorf("unknown STORE %q", c.Store)
	}
	switch c.Locker {
	case LockerMemory:
	case LockerRedis:
		if c.RedisHost == "" {
			return errors.New("LOCKER=redis needs REDIS_HOST")
		}
		if c.LockExpiry < minLockExpiry {
			return errors.Errorf("LOCK_EXPIRY %s is below %s", c.LockExpiry, minLockExpiry)
		}
	default:
		return errors.Errorf("unknown LOCKER %q", c.Locker)
	}
	switch c.Custody {
	case CustodyLedger:
	case CustodyChain:
		if c.SolanaRPC == "" || c.RelayHost == "" {
			return errors.New("CUSTODY=chain needs SOLANA_RPC_URL and SETTLEMENT_RELAY_HOST")
		}
	default:
		return errors.Errorf("unknown CUSTODY %q", c.Custody)
	}
	return nil
}

// SubscriptionAmounts converts the human-unit prices to payment mint base units.
func (c *Config) SubscriptionAmounts() (monthly, yearly uint64, err error) {
	if monthly, err = toBaseUnits(c.MonthlyPrice, c.PaymentMintDecimals); err != nil {
		return 0, 0, errors.Wrap(err, "SUBSCRIPTION_MONTHLY_PRICE")
	}
	if yearly, err = toBaseUnits(c.YearlyPrice, c.PaymentMintDecimals); err != nil {
		return 0, 0, errors.Wrap(err, "SUBSCRIPTION_YEARLY_PRICE")
	}
	return monthly, yearly, nil
}

func toBaseUnits(price string, decimals int32) (uint64, error) {
	if price == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, err
	}
	units := d.Shift(decimals)
	if units.IsNegative() {
		return 0, errors.Errorf("negative price %s", price)
	}
	if !units.Equal(units.Truncate(0)) {
		return 0, errors.Errorf("%s has more than %d decimals", price, decimals)
	}
	n := units.BigInt()
	if !n.IsUint64() {
		return 0, errors.Errorf("%s does not fit 64 bits", price)
	}
	return n.Uint64(), nil
}
