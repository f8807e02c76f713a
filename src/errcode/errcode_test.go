package errcode

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodesKeepProgramNumbering(t *testing.T) {
	assert.Equal(t, Code(6000), JupiterProgramNotExpected)
	assert.Equal(t, Code(6001), IncorrectSigner)
	assert.Equal(t, Code(6008), DelegateNotAllowed)
	assert.Equal(t, Code(6015), InvalidJupiterRoute)
	assert.Equal(t, Code(6021), ArithmeticOverflow)
	assert.Equal(t, Code(6022), IncorrectOrderVault)
}

func TestEveryCodeHasAKind(t *testing.T) {
	for code := JupiterProgramNotExpected; code <= InvalidSignature; code++ {
		assert.NotEqual(t, KindUnknown, code.Kind(), code.String())
		assert.NotEmpty(t, code.Message(), code.String())
	}
}

func TestCodeOfUnwrapsInfrastructureWrapping(t *testing.T) {
	err := pkgerrors.Wrap(Newf(IncorrectOwner, "vault %s", "abc"), "authorize liquidation")

	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, IncorrectOwner, code)
	assert.Equal(t, KindAuthorization, KindOf(err))
	assert.True(t, errors.Is(err, New(IncorrectOwner)))
	assert.False(t, errors.Is(err, New(IncorrectSigner)))
	assert.Contains(t, err.Error(), "IncorrectOwner")
}

func TestPlainErrorsHaveNoCode(t *testing.T) {
	_, ok := CodeOf(errors.New("boom"))
	assert.False(t, ok)
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, "Code(1)", Code(1).String())
}
