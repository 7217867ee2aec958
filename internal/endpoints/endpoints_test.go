package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathStableAcrossLookups(t *testing.T) {
	for _, op := range Operations() {
		first, ok := Path(op)
		require.True(t, ok, "operation %s missing", op)
		require.NotEmpty(t, first)

		for i := 0; i < 3; i++ {
			again, ok := Path(op)
			require.True(t, ok)
			assert.Equal(t, first, again)
		}
	}
}

func TestPathUnknownOperation(t *testing.T) {
	_, ok := Path(Operation("does_not_exist"))
	assert.False(t, ok)

	assert.Panics(t, func() { MustPath(Operation("does_not_exist")) })
}

func TestClosedSet(t *testing.T) {
	want := map[Operation]string{
		FinancialSnapshot:    "/api/snapshot",
		FileUpload:           "/api/uploads",
		TransactionList:      "/api/transactions",
		TransactionExportCSV: "/api/transactions/export",
		IntelligenceQuery:    "/api/intelligence/query",
		IntelligenceInsights: "/api/intelligence/insights",
		IntelligenceForecast: "/api/intelligence/forecast",
	}
	assert.Len(t, Operations(), len(want))
	for op, path := range want {
		got, ok := Path(op)
		require.True(t, ok)
		assert.Equal(t, path, got)
	}
}
