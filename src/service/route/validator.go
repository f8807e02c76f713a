package route

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// argsTailLen covers amount u64, quoted amount u64, slippage bps u16 and platform fee bps u8,
// the common tail of every v6 route argument list.
const argsTailLen = 8 + 8 + 2 + 1

// Args is the decoded argument tail. For exact-out variants Amount is the output amount
// and QuotedAmount the quoted input.
type Args struct {
	Amount         uint64
	QuotedAmount   uint64
	SlippageBps    uint16
	PlatformFeeBps uint8
	ExactOut       bool
}

// Route is a venue instruction that passed validation.
type Route struct {
	Signature         Signature
	Variant           Variant
	Family            Family
	TransferAuthority solana.PublicKey
	Source            solana.PublicKey
	Destination       solana.PublicKey
	DestinationMint   solana.PublicKey
	// DestinationTolerated is set when the destination is outside the vault set and the
	// deposit-asset exception let it through.
	DestinationTolerated bool
	Args                 *Args
}

// Expectation is what the operation knows about the vaults the instruction may touch.
type Expectation struct {
	Manager       solana.PublicKey
	Vaults        []solana.PublicKey
	OutputMint    solana.PublicKey
	CostBasisMint solana.PublicKey
	DepositMint   solana.PublicKey
	// StrictDestination disables the deposit-asset destination exception.
	StrictDestination bool
}

func (e Expectation) isVault(key solana.PublicKey) bool {
	for _, v := range e.Vaults {
		if v.Equals(key) {
			return true
		}
	}
	return false
}

func (e Expectation) toleratesDestination() bool {
	return !e.StrictDestination && !e.DepositMint.IsZero() && e.CostBasisMint.Equals(e.DepositMint)
}

// Validator proves a venue instruction only moves funds between the manager's vaults.
type Validator struct {
	ProgramID solana.PublicKey
	Table     Table
}

func NewValidator(programID solana.PublicKey, table Table) *Validator {
	if programID.IsZero() {
		programID = models.VenueProgramID
	}
	return &Validator{ProgramID: programID, Table: table}
}

// Validate runs the containment checks in a fixed order and stops at the first failure.
func (v *Validator) Validate(ix models.VenueInstruction, exp Expectation) (*Route, error) {
	if !ix.ProgramID.Equals(v.ProgramID) {
		return nil, errcode.Newf(errcode.JupiterProgramNotExpected, "program %s", ix.ProgramID)
	}
	sig, entry, err := v.Table.Decode(ix.Data)
	if err != nil {
		return nil, err
	}
	keys := ix.Keys()
	if len(keys) < v.Table.MinAccounts {
		return nil, errcode.Newf(errcode.InvalidRemainingAccounts, "%d accounts, need %d", len(keys), v.Table.MinAccounts)
	}
	layout, ok := v.Table.Layout(entry.Family)
	if !ok {
		return nil, errcode.Newf(errcode.InvalidRoute, "no layout for %s in %s", entry.Family, v.Table.Version)
	}
	authority, source, destination, mint, err := layout.slots(keys)
	if err != nil {
		return nil, err
	}

	r := &Route{
		Signature:         sig,
		Variant:           entry.Variant,
		Family:            entry.Family,
		TransferAuthority: authority,
		Source:            source,
		Destination:       destination,
		DestinationMint:   mint,
	}
	if !authority.Equals(exp.Manager) {
		return nil, errcode.Newf(errcode.InvalidTransferAuthority, "authority %s", authority)
	}
	if !exp.isVault(source) {
		return nil, errcode.Newf(errcode.InvalidSourceTokenAccount, "source %s", source)
	}
	if !exp.isVault(destination) {
		if !exp.toleratesDestination() {
			return nil, errcode.Newf(errcode.InvalidDestinationTokenAccount, "destination %s", destination)
		}
		r.DestinationTolerated = true
	}
	if !mint.Equals(exp.OutputMint) {
		return nil, errcode.Newf(errcode.IncorrectMint, "destination mint %s, want %s", mint, exp.OutputMint)
	}
	r.Args = DecodeArgs(ix.Data, entry.ExactOut)
	return r, nil
}

// DecodeArgs reads the argument tail. It returns nil when data is too short to hold one.
func DecodeArgs(data []byte, exactOut bool) *Args {
	if len(data) < SignatureLen+argsTailLen {
		return nil
	}
	dec := bin.NewBorshDecoder(data[len(data)-argsTailLen:])
	args := &Args{ExactOut: exactOut}
	var err error
	if args.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil
	}
	if args.QuotedAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return nil
	}
	if args.SlippageBps, err = dec.ReadUint16(bin.LE); err != nil {
		return nil
	}
	if args.PlatformFeeBps, err = dec.ReadUint8(); err != nil {
		return nil
	}
	return args
}

// EncodeArgs builds the argument tail. Callers append it to a signature and route plan.
func EncodeArgs(a Args) []byte {
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)
	// writes to a bytes.Buffer do not fail
	_ = enc.WriteUint64(a.Amount, bin.LE)
	_ = enc.WriteUint64(a.QuotedAmount, bin.LE)
	_ = enc.WriteUint16(a.SlippageBps, bin.LE)
	_ = enc.WriteUint8(a.PlatformFeeBps)
	return buf.Bytes()
}
