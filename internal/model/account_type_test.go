package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTypeRanges(t *testing.T) {
	all := AllAccountTypes()
	require.Len(t, all, 9)

	// Ranges are disjoint and cover 1,000,000 codes each.
	for i, accountType := range all {
		assert.True(t, accountType.Valid())
		assert.Equal(t, (i+1)*1_000_000, accountType.RangeStart())
		assert.Equal(t, (i+2)*1_000_000-1, accountType.RangeEnd())

		assert.True(t, accountType.ContainsCode(accountType.RangeStart()))
		assert.True(t, accountType.ContainsCode(accountType.RangeEnd()))
		assert.False(t, accountType.ContainsCode(accountType.RangeStart()-1))
		assert.False(t, accountType.ContainsCode(accountType.RangeEnd()+1))
	}
}

func TestTypeForCode(t *testing.T) {
	got, ok := TypeForCode(1_500_000)
	require.True(t, ok)
	assert.Equal(t, TypeAsset, got)

	got, ok = TypeForCode(9_999_999)
	require.True(t, ok)
	assert.Equal(t, TypeExtraordinaryExpense, got)

	_, ok = TypeForCode(999_999)
	assert.False(t, ok)

	_, ok = TypeForCode(10_000_000)
	assert.False(t, ok)
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType("COST_OF_SALES")
	require.NoError(t, err)
	assert.Equal(t, TypeCostOfSales, got)

	_, err = ParseAccountType("cost_of_sales")
	assert.Error(t, err)

	_, err = ParseAccountType("")
	assert.Error(t, err)
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketHigh, BucketFor(0.95))
	assert.Equal(t, BucketHigh, BucketFor(0.9))
	assert.Equal(t, BucketMedium, BucketFor(0.89))
	assert.Equal(t, BucketMedium, BucketFor(0.7))
	assert.Equal(t, BucketLow, BucketFor(0.69))
	assert.Equal(t, BucketLow, BucketFor(0))
}

func TestLegacyAccountDisplayName(t *testing.T) {
	named := LegacyAccount{OriginalName: "Petty Cash", Description: "cash box"}
	assert.Equal(t, "Petty Cash", named.DisplayName())

	unnamed := LegacyAccount{Description: "cash box"}
	assert.Equal(t, "cash box", unnamed.DisplayName())
}
