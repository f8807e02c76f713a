package models

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// DefaultProgramID is the vault program every record address is derived from.
var DefaultProgramID = solana.MustPublicKeyFromBase58("AHNJKkm4Gd3FpUrdhYsuvf7tPErUpR8dgmx6xNPSHNuc")

// VenueProgramID is the Jupiter v6 aggregator.
var VenueProgramID = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

// Addresses derives record and vault addresses for one program.
type Addresses struct {
	Program solana.PublicKey
}

func NewAddresses(program solana.PublicKey) Addresses {
	if program.IsZero() {
		program = DefaultProgramID
	}
	return Addresses{Program: program}
}

func (a Addresses) find(seeds ...[]byte) (solana.PublicKey, uint8, error) {
	key, bump, err := solana.FindProgramAddress(seeds, a.Program)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrap(err, "find program address")
	}
	return key, bump, nil
}

func (a Addresses) Config() (solana.PublicKey, uint8, error) {
	return a.find([]byte("config"))
}

func (a Addresses) Project(authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return a.find([]byte("project"), authority.Bytes())
}

// Manager uses the zero key as the project seed when the manager has no project.
func (a Addresses) Manager(project, authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	return a.find([]byte("manager"), project.Bytes(), authority.Bytes())
}

func (a Addresses) Order(manager, id solana.PublicKey) (solana.PublicKey, uint8, error) {
	return a.find([]byte("order"), manager.Bytes(), id.Bytes())
}

func (a Addresses) OrderVault(authority, manager, order, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return a.find([]byte("order_vault"), authority.Bytes(), manager.Bytes(), order.Bytes(), mint.Bytes())
}

func (a Addresses) TokenVault(authority, manager, order, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return a.find([]byte("token_vault"), authority.Bytes(), manager.Bytes(), order.Bytes(), mint.Bytes())
}

// AssociatedTokenAccount is the canonical token account of wallet for mint. Fee
// receivers, payment receivers and project fee vaults all live at these addresses.
func AssociatedTokenAccount(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "find associated token address")
	}
	return key, nil
}
