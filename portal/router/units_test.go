package router_test

import (
	"math/big"
	"testing"

	router "github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/zeebo/assert"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.5", "1500000000000000000"},
		{"1", "1000000000000000000"},
		{"0", "0"},
		{".5", "500000000000000000"},
		{"2.", "2000000000000000000"},
		{"0.000000000000000001", "1"},
		{" 3.25 ", "3250000000000000000"},
		{"123456789.123456789123456789", "123456789123456789123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := router.ParseEther(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, got.String(), tt.want)
		})
	}
}

func TestParseEtherRejects(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"-1",
		"+1",
		"1e18",
		"abc",
		"1.2.3",
		".",
		"0x10",
		"1,5",
		"0.0000000000000000001",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := router.ParseEther(in)
			assert.Error(t, err)
		})
	}
}

func TestParseUnitsOtherPrecision(t *testing.T) {
	got, err := router.ParseUnits("12.345678", 6)
	assert.NoError(t, err)
	assert.Equal(t, got.String(), "12345678")

	_, err = router.ParseUnits("1.1234567", 6)
	assert.Error(t, err)
}

func TestFormatEther(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	assert.True(t, ok)
	assert.Equal(t, router.FormatEther(wei), "1.5")
	assert.Equal(t, router.FormatEther(big.NewInt(1)), "0.000000000000000001")
	assert.Equal(t, router.FormatEther(nil), "0")
}
