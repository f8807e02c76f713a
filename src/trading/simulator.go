package trading

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
	"gitlab.com/crypto_project/core/delegate_vault/src/service/route"
	"gitlab.com/crypto_project/core/delegate_vault/src/sources/ledger"
)

// Simulator fills venue instructions at their quoted amounts against a ledger, for local
// builds and tests. Exact-in routes spend Amount and receive QuotedAmount; exact-out
// routes spend QuotedAmount and receive Amount.
type Simulator struct {
	Table route.Table
}

func NewSimulator(table route.Table) *Simulator {
	return &Simulator{Table: table}
}

func (s *Simulator) Execute(ix models.VenueInstruction, book *ledger.Book) error {
	_, entry, err := s.Table.Decode(ix.Data)
	if err != nil {
		return err
	}
	layout, ok := s.Table.Layout(entry.Family)
	if !ok {
		return errors.Errorf("no layout for %s", entry.Family)
	}
	keys := ix.Keys()
	for _, i := range []int{layout.TransferAuthority, layout.Source, layout.Destination, layout.DestinationMint} {
		if i >= len(keys) {
			return errors.Errorf("instruction has %d accounts", len(keys))
		}
	}
	args := route.DecodeArgs(ix.Data, entry.ExactOut)
	if args == nil {
		return errors.New("instruction carries no amounts")
	}

	source, ok := book.Account(keys[layout.Source])
	if !ok {
		return errors.Errorf("unknown source %s", keys[layout.Source])
	}
	if !signs(ix, source.Owner) {
		return errors.Errorf("source owner %s did not sign", source.Owner)
	}
	destination, ok := book.Account(keys[layout.Destination])
	if !ok {
		return errors.Errorf("unknown destination %s", keys[layout.Destination])
	}
	if !destination.Mint.Equals(keys[layout.DestinationMint]) {
		return errors.Errorf("destination holds %s, route pays %s", destination.Mint, keys[layout.DestinationMint])
	}

	in, out := args.Amount, args.QuotedAmount
	if args.ExactOut {
		in, out = args.QuotedAmount, args.Amount
	}
	if err := book.Debit(source.Address, in); err != nil {
		return err
	}
	if err := book.Credit(destination.Address, out); err != nil {
		return err
	}
	log.Debug("simulated fill",
		zap.String("variant", entry.Variant.String()),
		zap.Uint64("in", in),
		zap.Uint64("out", out),
	)
	return nil
}

func signs(ix models.VenueInstruction, key solana.PublicKey) bool {
	for _, meta := range ix.Accounts {
		if meta != nil && meta.IsSigner && meta.PublicKey.Equals(key) {
			return true
		}
	}
	return false
}
