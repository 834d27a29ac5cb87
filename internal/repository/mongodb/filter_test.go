package mongodb

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

func TestBuildLowStockFilterThresholdOnly(t *testing.T) {
	got := BuildLowStockFilter(models.LowStockFilter{Threshold: 7})

	want := bson.D{{Key: "stock", Value: bson.D{{Key: "$lt", Value: 7}}}}
	assert.Equal(t, want, got)
}

func TestBuildLowStockFilterKeepsZeroAndNegativeThresholds(t *testing.T) {
	for _, threshold := range []int{0, -3} {
		got := BuildLowStockFilter(models.LowStockFilter{Threshold: threshold})

		require.Len(t, got, 1)
		assert.Equal(t, bson.D{{Key: "$lt", Value: threshold}}, got[0].Value, "threshold %d", threshold)
	}
}

func TestBuildLowStockFilterTextFilters(t *testing.T) {
	got := BuildLowStockFilter(models.LowStockFilter{Threshold: 10, Type: "Red", Brand: " ", Category: "alcohol"})

	require.Len(t, got, 3, "blank brand filter must be skipped")
	assert.Equal(t, "type", got[1].Key)
	assert.Equal(t, bson.D{{Key: "$regex", Value: "^Red$"}, {Key: "$options", Value: "i"}}, got[1].Value)
	assert.Equal(t, "category", got[2].Key)
}

func TestExactFoldMatchesWholeFieldOnly(t *testing.T) {
	cases := []struct {
		filter string
		stored string
		match  bool
	}{
		{"red", "Red", true},
		{"RED", "Red", true},
		{"re", "Red", false},
		{"red", "Red wine", false},
		{"r.d", "Red", false},
		{"a+b", "A+B", true},
	}

	for _, tc := range cases {
		pattern := exactFold(tc.filter)[0].Value.(string)
		re := regexp.MustCompile("(?i)" + pattern)
		assert.Equal(t, tc.match, re.MatchString(tc.stored), "filter %q vs stored %q", tc.filter, tc.stored)
	}
}
