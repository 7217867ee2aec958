// Package endpoints is the static registry of logical operation names the
// dashboard frontend depends on, mapped to backend paths. The server mounts
// its routes from this same table so the registry and the router cannot
// drift.
package endpoints

// Operation is a logical operation name from the closed set below.
type Operation string

const (
	FinancialSnapshot    Operation = "financial_snapshot"
	FileUpload           Operation = "file_upload"
	TransactionList      Operation = "transaction_list"
	TransactionExportCSV Operation = "transaction_export_csv"
	IntelligenceQuery    Operation = "intelligence_query"
	IntelligenceInsights Operation = "intelligence_insights"
	IntelligenceForecast Operation = "intelligence_forecast"
)

var registry = map[Operation]string{
	FinancialSnapshot:    "/api/snapshot",
	FileUpload:           "/api/uploads",
	TransactionList:      "/api/transactions",
	TransactionExportCSV: "/api/transactions/export",
	IntelligenceQuery:    "/api/intelligence/query",
	IntelligenceInsights: "/api/intelligence/insights",
	IntelligenceForecast: "/api/intelligence/forecast",
}

// Path returns the backend path for op. The registry is immutable; repeated
// lookups always return the identical string.
func Path(op Operation) (string, bool) {
	path, ok := registry[op]
	return path, ok
}

// MustPath returns the backend path for op and panics on an unknown
// operation. Route registration uses this so a typo fails at startup.
func MustPath(op Operation) string {
	path, ok := registry[op]
	if !ok {
		panic("endpoints: unknown operation " + string(op))
	}
	return path
}

// Operations returns the closed set of operation names.
func Operations() []Operation {
	ops := make([]Operation, 0, len(registry))
	for op := range registry {
		ops = append(ops, op)
	}
	return ops
}
