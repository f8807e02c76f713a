package models

import (
	"github.com/gagliardetto/solana-go"
)

type StepKind string

const (
	StepOpen     StepKind = "open"
	StepTransfer StepKind = "transfer"
	StepClose    StepKind = "close"
	StepExecute  StepKind = "execute"
)

// VenueInstruction is an externally built trade instruction. Data is forwarded verbatim.
type VenueInstruction struct {
	ProgramID solana.PublicKey        `json:"programId"`
	Accounts  solana.AccountMetaSlice `json:"accounts"`
	Data      []byte                  `json:"data"`
}

// Keys returns the participant list in instruction order.
func (ix VenueInstruction) Keys() []solana.PublicKey {
	keys := make([]solana.PublicKey, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		if meta != nil {
			keys[i] = meta.PublicKey
		}
	}
	return keys
}

// CoSigned copies the instruction with the manager marked as signer. Every other
// signer flag is cleared so the forwarded instruction can only borrow the manager's authority.
func (ix VenueInstruction) CoSigned(manager solana.PublicKey) VenueInstruction {
	metas := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		if meta == nil {
			continue
		}
		metas = append(metas, solana.NewAccountMeta(meta.PublicKey, meta.IsWritable, meta.PublicKey.Equals(manager)))
	}
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)
	return VenueInstruction{ProgramID: ix.ProgramID, Accounts: metas, Data: data}
}

func (ix VenueInstruction) Instruction() solana.Instruction {
	return solana.NewInstruction(ix.ProgramID, ix.Accounts, ix.Data)
}

// Step is one fund movement of a settlement.
type Step struct {
	Kind        StepKind          `json:"kind"`
	Account     solana.PublicKey  `json:"account,omitempty"`
	Owner       solana.PublicKey  `json:"owner,omitempty"`
	Mint        solana.PublicKey  `json:"mint,omitempty"`
	IfMissing   bool              `json:"ifMissing,omitempty"`
	From        solana.PublicKey  `json:"from,omitempty"`
	To          solana.PublicKey  `json:"to,omitempty"`
	Amount      uint64            `json:"amount,omitempty"`
	Authority   solana.PublicKey  `json:"authority,omitempty"`
	Destination solana.PublicKey  `json:"destination,omitempty"`
	Instruction *VenueInstruction `json:"instruction,omitempty"`
}

// Settlement is the ordered list of fund movements of one operation. It is applied
// all-or-nothing by the settler.
type Settlement struct {
	Label string           `json:"label"`
	Payer solana.PublicKey `json:"payer"`
	Steps []Step           `json:"steps"`
}

func NewSettlement(label string, payer solana.PublicKey) *Settlement {
	return &Settlement{Label: label, Payer: payer}
}

// Open creates a token account. With ifMissing an existing account of the same owner and
// mint is accepted as is.
func (s *Settlement) Open(account, owner, mint solana.PublicKey, ifMissing bool) *Settlement {
	s.Steps = append(s.Steps, Step{Kind: StepOpen, Account: account, Owner: owner, Mint: mint, IfMissing: ifMissing})
	return s
}

// Transfer of zero is skipped.
func (s *Settlement) Transfer(from, to solana.PublicKey, amount uint64, authority solana.PublicKey) *Settlement {
	if amount == 0 {
		return s
	}
	s.Steps = append(s.Steps, Step{Kind: StepTransfer, From: from, To: to, Amount: amount, Authority: authority})
	return s
}

func (s *Settlement) Close(account, destination, authority solana.PublicKey) *Settlement {
	s.Steps = append(s.Steps, Step{Kind: StepClose, Account: account, Destination: destination, Authority: authority})
	return s
}

func (s *Settlement) Execute(ix VenueInstruction) *Settlement {
	s.Steps = append(s.Steps, Step{Kind: StepExecute, Instruction: &ix})
	return s
}

func (s *Settlement) Empty() bool {
	return len(s.Steps) == 0
}
