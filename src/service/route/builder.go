package route

import (
	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// Build assembles an instruction with an empty route plan. Clients and the local venue
// simulator use it; production instructions come from the aggregator quote API.
func (t Table) Build(programID solana.PublicKey, v Variant, keys []solana.PublicKey, args Args) (models.VenueInstruction, bool) {
	sig, ok := t.SignatureOf(v)
	if !ok {
		return models.VenueInstruction{}, false
	}
	metas := make(solana.AccountMetaSlice, 0, len(keys))
	for _, k := range keys {
		metas = append(metas, solana.NewAccountMeta(k, true, false))
	}
	data := append(sig[:], EncodeArgs(args)...)
	return models.VenueInstruction{ProgramID: programID, Accounts: metas, Data: data}, true
}

// Participants returns a key list of n entries with the four inspected slots of family set.
// Remaining entries are fresh placeholder keys.
func (t Table) Participants(f Family, n int, authority, source, destination, mint solana.PublicKey) []solana.PublicKey {
	l := t.Layouts[f]
	if n <= l.maxIndex() {
		n = l.maxIndex() + 1
	}
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}
	keys[l.TransferAuthority] = authority
	keys[l.Source] = source
	keys[l.Destination] = destination
	keys[l.DestinationMint] = mint
	return keys
}
