package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	eth, err := Find("eth")
	require.NoError(t, err)
	assert.Equal(t, "ETH", eth.Symbol)
	assert.True(t, eth.Native)
	assert.Equal(t, uint8(18), eth.Decimals)

	usdc, err := Find(" USDC ")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), usdc.Decimals)

	_, err = Find("DOGE")
	assert.Error(t, err)
}

func TestFindByAddress(t *testing.T) {
	usdc, err := FindByAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	require.NoError(t, err)
	assert.Equal(t, "USDC", usdc.Symbol)

	_, err = FindByAddress("0x0000000000000000000000000000000000000000")
	assert.Error(t, err)
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	require.NotEmpty(t, list)
	list[0].Symbol = "MUTATED"

	again := All()
	assert.NotEqual(t, "MUTATED", again[0].Symbol)
}
