package fees

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

func TestComputeOnProfit(t *testing.T) {
	fee, err := Compute(1_000_000, 800_000, 2000)
	require.NoError(t, err)
	assert.Equal(t, Fee{Profit: 200_000, Amount: 40_000, Net: 960_000, RateBps: 2000}, fee)
	assert.Equal(t, "20", fee.Percent())
}

func TestNoFeeOnLossOrBreakEven(t *testing.T) {
	for _, tc := range []struct{ balance, cost uint64 }{
		{1, 1}, {500, 800}, {800_000, 800_000}, {1, math.MaxUint64},
	} {
		fee, err := Compute(tc.balance, tc.cost, 10000)
		require.NoError(t, err)
		assert.Zero(t, fee.Amount)
		assert.Zero(t, fee.Profit)
		assert.Equal(t, tc.balance, fee.Net)
	}
}

func TestFeeIsFloored(t *testing.T) {
	fee, err := Compute(1_000_009, 1_000_000, 250)
	require.NoError(t, err)
	// 9 * 250 / 10000 = 0.225
	assert.Zero(t, fee.Amount)
	assert.Equal(t, uint64(1_000_009), fee.Net)

	fee, err = Compute(101, 0, 9999)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), fee.Amount)
	assert.Equal(t, "99.99", fee.Percent())
}

func TestEmptyVaultRejected(t *testing.T) {
	_, err := Compute(0, 0, 100)
	assert.True(t, errcode.Has(err, errcode.EmptyVault))
	assert.Equal(t, errcode.KindState, errcode.KindOf(err))
}

func TestFullWidthProduct(t *testing.T) {
	// max profit at full rate does not wrap
	fee, err := Compute(math.MaxUint64, 0, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), fee.Amount)
	assert.Zero(t, fee.Net)

	fee, err = Compute(math.MaxUint64, 0, 5000)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), fee.Amount)
}

func TestRateAboveHundredPercentOverflows(t *testing.T) {
	_, err := Compute(math.MaxUint64, 0, math.MaxUint16)
	assert.True(t, errcode.Has(err, errcode.ArithmeticOverflow))

	_, err = Compute(100, 0, 20000)
	assert.True(t, errcode.Has(err, errcode.ArithmeticOverflow))
}

func TestSelectRate(t *testing.T) {
	config := &models.Config{PerformanceFee: 2000, SubscribedPerformanceFee: 500}
	manager := &models.Manager{SubscriptionEnd: 1000}

	assert.Equal(t, uint16(500), SelectRate(manager, config, nil, 999))
	assert.Equal(t, uint16(2000), SelectRate(manager, config, nil, 1000))
	assert.Equal(t, uint16(2000), SelectRate(&models.Manager{}, config, nil, 0))

	project := &models.Project{PerformanceFee: 1000}
	assert.Equal(t, uint16(1000), SelectRate(manager, config, project, 2000))
	assert.Equal(t, uint16(500), SelectRate(manager, config, project, 10))

	cheap := &models.Project{PerformanceFee: 100}
	assert.Equal(t, uint16(100), SelectRate(manager, config, cheap, 10))
}
