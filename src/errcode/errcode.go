package errcode

import (
	"errors"
	"fmt"
)

// Kind groups codes by how a caller is expected to react to them.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuthorization is a wrong signer, wrong owner or delegate overreach.
	KindAuthorization
	// KindValidation is a malformed or unapproved external instruction.
	KindValidation
	// KindArithmetic is an overflow in fee or subscription math.
	KindArithmetic
	// KindState is an empty vault, a wrong payment tier or a stale reference.
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "AuthorizationError"
	case KindValidation:
		return "ValidationError"
	case KindArithmetic:
		return "ArithmeticError"
	case KindState:
		return "StateError"
	default:
		return "UnknownError"
	}
}

// Code numbering starts where program custom errors start, in declaration order.
type Code uint32

const (
	JupiterProgramNotExpected Code = 6000 + iota
	IncorrectSigner
	IncorrectMint
	IncorrectOwner
	NumericalOverflow
	IncorrectFee
	IncorrectProject
	IncorrectManager
	DelegateNotAllowed
	InvalidRemainingAccounts
	InvalidTokenProgram
	DuplicateMints
	InvalidSourceTokenAccount
	InvalidDestinationTokenAccount
	InvalidTransferAuthority
	InvalidJupiterRoute
	EmptyOrderVault
	IncorrectConfig
	IncorrectReceiver
	IncorrectPaymentMint
	IncorrectPaymentAmount
	ArithmeticOverflow
	IncorrectOrderVault
	InvalidOrderState
	AccountNotFound
	AccountAlreadyExists
	InvalidSignature
)

// InvalidRoute is the name the routing validator uses for an unknown or short signature.
const InvalidRoute = InvalidJupiterRoute

// EmptyVault is raised when a withdrawal finds nothing to withdraw.
const EmptyVault = EmptyOrderVault

type entry struct {
	name string
	kind Kind
	msg  string
}

var table = map[Code]entry{
	JupiterProgramNotExpected:      {"JupiterProgramNotExpected", KindValidation, "Jupiter program is not the expected one"},
	IncorrectSigner:                {"IncorrectSigner", KindAuthorization, "Signer has no permission to perform this action"},
	IncorrectMint:                  {"IncorrectMint", KindValidation, "You are providing an incorrect mint"},
	IncorrectOwner:                 {"IncorrectOwner", KindAuthorization, "You are providing an incorrect owner"},
	NumericalOverflow:              {"NumericalOverflow", KindArithmetic, "Numerical overflow occurred during calculation"},
	IncorrectFee:                   {"IncorrectFee", KindState, "Performance fee is too high"},
	IncorrectProject:               {"IncorrectProject", KindState, "Incorrect project"},
	IncorrectManager:               {"IncorrectManager", KindAuthorization, "Incorrect manager"},
	DelegateNotAllowed:             {"DelegateNotAllowed", KindAuthorization, "Delegate is not allowed"},
	InvalidRemainingAccounts:       {"InvalidRemainingAccounts", KindValidation, "Invalid remaining accounts provided"},
	InvalidTokenProgram:            {"InvalidTokenProgram", KindValidation, "Invalid token program provided"},
	DuplicateMints:                 {"DuplicateMints", KindValidation, "Duplicate mints not allowed"},
	InvalidSourceTokenAccount:      {"InvalidSourceTokenAccount", KindValidation, "Invalid source token account"},
	InvalidDestinationTokenAccount: {"InvalidDestinationTokenAccount", KindValidation, "Invalid destination token account"},
	InvalidTransferAuthority:       {"InvalidTransferAuthority", KindValidation, "Invalid transfer authority"},
	InvalidJupiterRoute:            {"InvalidJupiterRoute", KindValidation, "Invalid Jupiter route instruction"},
	EmptyOrderVault:                {"EmptyOrderVault", KindState, "Order vault is empty"},
	IncorrectConfig:                {"IncorrectConfig", KindState, "Incorrect config"},
	IncorrectReceiver:              {"IncorrectReceiver", KindState, "Incorrect payment receiver"},
	IncorrectPaymentMint:           {"IncorrectPaymentMint", KindState, "Incorrect payment mint"},
	IncorrectPaymentAmount:         {"IncorrectPaymentAmount", KindState, "Payment amount must match the monthly or yearly subscription price"},
	ArithmeticOverflow:             {"ArithmeticOverflow", KindArithmetic, "Arithmetic overflow occurred"},
	IncorrectOrderVault:            {"IncorrectOrderVault", KindState, "Incorrect order vault"},
	InvalidOrderState:              {"InvalidOrderState", KindState, "Order is not in a state that allows this operation"},
	AccountNotFound:                {"AccountNotFound", KindState, "Account does not exist"},
	AccountAlreadyExists:           {"AccountAlreadyExists", KindState, "Account already exists"},
	InvalidSignature:               {"InvalidSignature", KindAuthorization, "Request signature does not match the signer"},
}

func (c Code) String() string {
	if e, ok := table[c]; ok {
		return e.name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

func (c Code) Kind() Kind {
	return table[c].kind
}

func (c Code) Message() string {
	return table[c].msg
}

// Error is the single discriminated failure every operation returns.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Code.Message())
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Code.Message(), e.Detail)
}

// Is matches any *Error carrying the same code, so errors.Is(err, errcode.New(c)) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code Code) error {
	return &Error{Code: code}
}

func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// KindOf returns KindUnknown for errors that carry no code.
func KindOf(err error) Kind {
	code, ok := CodeOf(err)
	if !ok {
		return KindUnknown
	}
	return code.Kind()
}

// Has reports whether err carries the given code.
func Has(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
