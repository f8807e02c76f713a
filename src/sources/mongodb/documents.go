package mongodb

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// Keys are stored base58 and amounts as decimal strings: BSON has no unsigned 64-bit type.

type configDocument struct {
	ID                       string `bson:"_id"`
	Address                  string `bson:"address"`
	Authority                string `bson:"authority"`
	PaymentMint              string `bson:"paymentMint"`
	PaymentReceiver          string `bson:"paymentReceiver"`
	PerformanceReceiver      string `bson:"performanceReceiver"`
	MonthlyAmount            string `bson:"monthlyAmount"`
	YearlyAmount             string `bson:"yearlyAmount"`
	SubscribedPerformanceFee int32  `bson:"subscribedPerformanceFee"`
	PerformanceFee           int32  `bson:"performanceFee"`
	Bump                     int32  `bson:"bump"`
}

type projectDocument struct {
	ID             string `bson:"_id"`
	Authority      string `bson:"authority"`
	PerformanceFee int32  `bson:"performanceFee"`
	Bump           int32  `bson:"bump"`
}

type managerDocument struct {
	ID              string `bson:"_id"`
	Authority       string `bson:"authority"`
	Delegate        string `bson:"delegate"`
	Project         string `bson:"project,omitempty"`
	SubscriptionEnd int64  `bson:"subscriptionEnd"`
	StableMint      string `bson:"stableMint"`
	Bump            int32  `bson:"bump"`
}

type orderDocument struct {
	ID            string   `bson:"_id"`
	OrderID       string   `bson:"id"`
	Manager       string   `bson:"manager"`
	DepositMint   string   `bson:"depositMint"`
	OrderVault    string   `bson:"orderVault"`
	DepositAmount string   `bson:"depositAmount"`
	Status        string   `bson:"status"`
	TokenVaults   []string `bson:"tokenVaults,omitempty"`
	Bump          int32    `bson:"bump"`
}

func keyString(k solana.PublicKey) string {
	if k.IsZero() {
		return ""
	}
	return k.String()
}

// keyReader collects the first parse error so conversions stay flat.
type keyReader struct {
	err error
}

func (r *keyReader) key(s string) solana.PublicKey {
	if s == "" || r.err != nil {
		return solana.PublicKey{}
	}
	k, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		r.err = errors.Wrapf(err, "key %q", s)
	}
	return k
}

func (r *keyReader) amount(s string) uint64 {
	if s == "" || r.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		r.err = errors.Wrapf(err, "amount %q", s)
	}
	return n
}

func amountString(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func fromConfig(c *models.Config) *configDocument {
	return &configDocument{
		ID:                       configDocumentID,
		Address:                  keyString(c.Address),
		Authority:                keyString(c.Authority),
		PaymentMint:              keyString(c.PaymentMint),
		PaymentReceiver:          keyString(c.PaymentReceiver),
		PerformanceReceiver:      keyString(c.PerformanceReceiver),
		MonthlyAmount:            amountString(c.MonthlyAmount),
		YearlyAmount:             amountString(c.YearlyAmount),
		SubscribedPerformanceFee: int32(c.SubscribedPerformanceFee),
		PerformanceFee:           int32(c.PerformanceFee),
		Bump:                     int32(c.Bump),
	}
}

func (d *configDocument) model() (*models.Config, error) {
	var r keyReader
	c := &models.Config{
		Address:                  r.key(d.Address),
		Authority:                r.key(d.Authority),
		PaymentMint:              r.key(d.PaymentMint),
		PaymentReceiver:          r.key(d.PaymentReceiver),
		PerformanceReceiver:      r.key(d.PerformanceReceiver),
		MonthlyAmount:            r.amount(d.MonthlyAmount),
		YearlyAmount:             r.amount(d.YearlyAmount),
		SubscribedPerformanceFee: uint16(d.SubscribedPerformanceFee),
		PerformanceFee:           uint16(d.PerformanceFee),
		Bump:                     uint8(d.Bump),
	}
	return c, r.err
}

func fromProject(p *models.Project) *projectDocument {
	return &projectDocument{
		ID:             keyString(p.Address),
		Authority:      keyString(p.Authority),
		PerformanceFee: int32(p.PerformanceFee),
		Bump:           int32(p.Bump),
	}
}

func (d *projectDocument) model() (*models.Project, error) {
	var r keyReader
	p := &models.Project{
		Address:        r.key(d.ID),
		Authority:      r.key(d.Authority),
		PerformanceFee: uint16(d.PerformanceFee),
		Bump:           uint8(d.Bump),
	}
	return p, r.err
}

func fromManager(m *models.Manager) *managerDocument {
	return &managerDocument{
		ID:              keyString(m.Address),
		Authority:       keyString(m.Authority),
		Delegate:        keyString(m.Delegate),
		Project:         keyString(m.Project),
		SubscriptionEnd: m.SubscriptionEnd,
		StableMint:      keyString(m.StableMint),
		Bump:            int32(m.Bump),
	}
}

func (d *managerDocument) model() (*models.Manager, error) {
	var r keyReader
	m := &models.Manager{
		Address:         r.key(d.ID),
		Authority:       r.key(d.Authority),
		Delegate:        r.key(d.Delegate),
		Project:         r.key(d.Project),
		SubscriptionEnd: d.SubscriptionEnd,
		StableMint:      r.key(d.StableMint),
		Bump:            uint8(d.Bump),
	}
	return m, r.err
}

func fromOrder(o *models.Order) *orderDocument {
	d := &orderDocument{
		ID:            keyString(o.Address),
		OrderID:       keyString(o.ID),
		Manager:       keyString(o.Manager),
		DepositMint:   keyString(o.DepositMint),
		OrderVault:    keyString(o.OrderVault),
		DepositAmount: amountString(o.DepositAmount),
		Status:        string(o.Status),
		TokenVaults:   make([]string, 0, len(o.TokenVaults)),
		Bump:          int32(o.Bump),
	}
	for _, v := range o.TokenVaults {
		d.TokenVaults = append(d.TokenVaults, keyString(v))
	}
	return d
}

func (d *orderDocument) model() (*models.Order, error) {
	var r keyReader
	o := &models.Order{
		Address:       r.key(d.ID),
		ID:            r.key(d.OrderID),
		Manager:       r.key(d.Manager),
		DepositMint:   r.key(d.DepositMint),
		OrderVault:    r.key(d.OrderVault),
		DepositAmount: r.amount(d.DepositAmount),
		Status:        models.OrderStatus(d.Status),
		Bump:          uint8(d.Bump),
	}
	for _, v := range d.TokenVaults {
		o.TokenVaults = append(o.TokenVaults, r.key(v))
	}
	return o, r.err
}
