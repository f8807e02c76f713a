// Package route decodes and validates venue trade instructions before the vault co-signs them.
package route

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
)

const SignatureLen = 8

// Signature is the 8-byte prefix naming the venue operation.
type Signature [SignatureLen]byte

func (s Signature) String() string {
	return fmt.Sprintf("%x", s[:])
}

type Variant int

const (
	VariantUnknown Variant = iota
	VariantRoute
	VariantRouteWithTokenLedger
	VariantExactOutRoute
	VariantSharedAccountsRoute
	VariantSharedAccountsRouteWithTokenLedger
	VariantSharedAccountsExactOutRoute
)

var variantNames = map[Variant]string{
	VariantRoute:                              "route",
	VariantRouteWithTokenLedger:               "route_with_token_ledger",
	VariantExactOutRoute:                      "exact_out_route",
	VariantSharedAccountsRoute:                "shared_accounts_route",
	VariantSharedAccountsRouteWithTokenLedger: "shared_accounts_route_with_token_ledger",
	VariantSharedAccountsExactOutRoute:        "shared_accounts_exact_out_route",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return "unknown"
}

type Family string

const (
	FamilyDirect Family = "direct"
	FamilyShared Family = "shared_accounts"
)

// Layout names the participant slots the validator inspects.
type Layout struct {
	TransferAuthority int
	Source            int
	Destination       int
	DestinationMint   int
}

func (l Layout) maxIndex() int {
	m := l.TransferAuthority
	for _, i := range []int{l.Source, l.Destination, l.DestinationMint} {
		if i > m {
			m = i
		}
	}
	return m
}

type Entry struct {
	Variant  Variant
	Family   Family
	ExactOut bool
}

// Table is one version of the venue's account ordering convention. A new venue version
// is a new Table value.
type Table struct {
	Version     string
	MinAccounts int
	Layouts     map[Family]Layout
	Entries     map[Signature]Entry
}

// JupiterV6 mirrors the v6 aggregator IDL.
var JupiterV6 = Table{
	Version:     "jupiter-v6",
	MinAccounts: 6,
	Layouts: map[Family]Layout{
		FamilyShared: {TransferAuthority: 2, Source: 3, Destination: 6, DestinationMint: 8},
		FamilyDirect: {TransferAuthority: 1, Source: 2, Destination: 4, DestinationMint: 5},
	},
	Entries: map[Signature]Entry{
		{229, 23, 203, 151, 122, 227, 173, 42}:  {Variant: VariantRoute, Family: FamilyDirect},
		{150, 86, 71, 116, 167, 93, 14, 104}:    {Variant: VariantRouteWithTokenLedger, Family: FamilyDirect},
		{208, 51, 239, 151, 123, 43, 237, 92}:   {Variant: VariantExactOutRoute, Family: FamilyDirect, ExactOut: true},
		{193, 32, 155, 51, 65, 214, 156, 129}:   {Variant: VariantSharedAccountsRoute, Family: FamilyShared},
		{230, 121, 143, 80, 119, 159, 106, 170}: {Variant: VariantSharedAccountsRouteWithTokenLedger, Family: FamilyShared},
		{176, 209, 105, 168, 154, 125, 69, 62}:  {Variant: VariantSharedAccountsExactOutRoute, Family: FamilyShared, ExactOut: true},
	},
}

var tables = map[string]Table{
	JupiterV6.Version: JupiterV6,
}

// TableFor returns the table registered under version.
func TableFor(version string) (Table, bool) {
	t, ok := tables[version]
	return t, ok
}

// SignatureOf returns the signature registered for variant. Used to build instructions.
func (t Table) SignatureOf(v Variant) (Signature, bool) {
	for sig, e := range t.Entries {
		if e.Variant == v {
			return sig, true
		}
	}
	return Signature{}, false
}

// Decode maps the prefix of data to a known variant. It never falls back to a default.
func (t Table) Decode(data []byte) (Signature, Entry, error) {
	var sig Signature
	if len(data) < SignatureLen {
		return sig, Entry{}, errcode.Newf(errcode.InvalidRoute, "instruction data is %d bytes", len(data))
	}
	copy(sig[:], data[:SignatureLen])
	entry, ok := t.Entries[sig]
	if !ok {
		return sig, Entry{}, errcode.Newf(errcode.InvalidRoute, "unknown signature %s", sig)
	}
	return sig, entry, nil
}

// Layout of a family. Unknown families have no layout.
func (t Table) Layout(f Family) (Layout, bool) {
	l, ok := t.Layouts[f]
	return l, ok
}

// slots extracts the four inspected participants. An index beyond the list is an error.
func (l Layout) slots(keys []solana.PublicKey) (authority, source, destination, mint solana.PublicKey, err error) {
	if l.maxIndex() >= len(keys) {
		err = errcode.Newf(errcode.InvalidRemainingAccounts, "layout needs %d accounts, got %d", l.maxIndex()+1, len(keys))
		return
	}
	return keys[l.TransferAuthority], keys[l.Source], keys[l.Destination], keys[l.DestinationMint], nil
}
