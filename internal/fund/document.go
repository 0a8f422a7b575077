// Package fund defines the indexed fund document and the builder that
// derives it from raw catalog records.
package fund

// Plan distinguishes direct and distributor share classes.
type Plan string

const (
	PlanDirect  Plan = "Direct"
	PlanRegular Plan = "Regular"
)

// Option is the payout option encoded in the scheme name.
type Option string

const (
	OptionGrowth           Option = "Growth"
	OptionIDCWPayout       Option = "IDCW Payout"
	OptionIDCWReinvestment Option = "IDCW Reinvestment"
)

// RawRecord is the minimal shape of one object in the catalog feed. Extra
// fields in the feed are ignored. The numeric fields are optional; when the
// feed omits them the builder fills in synthetic values.
type RawRecord struct {
	SchemeCode   int64    `json:"schemeCode"`
	SchemeName   string   `json:"schemeName"`
	NAV          *float64 `json:"nav,omitempty"`
	AUM          *float64 `json:"aum,omitempty"`
	ExpenseRatio *float64 `json:"expenseRatio,omitempty"`
}

// Document is the indexed unit. All categorical fields are derived from the
// scheme name at build time; the numeric fields are opaque sortable
// attributes.
type Document struct {
	ID           string   `json:"id"`
	SchemeCode   int64    `json:"schemeCode"`
	SchemeName   string   `json:"schemeName"`
	FundHouse    string   `json:"fundHouse"`
	Category     string   `json:"category"`
	SubCategory  string   `json:"subCategory"`
	Plan         Plan     `json:"plan"`
	Option       Option   `json:"option"`
	RiskLevel    int      `json:"riskLevel"`
	AUM          float64  `json:"aum"`
	ExpenseRatio float64  `json:"expenseRatio"`
	NAV          float64  `json:"nav"`
	SearchTokens []string `json:"searchTokens"`

	// TokenCounts holds per-token occurrence counts over the full token
	// stream (before deduplication into SearchTokens); TotalTokens is the
	// stream length. Both feed term-frequency scoring and are not part of
	// the wire shape.
	TokenCounts map[string]int `json:"-"`
	TotalTokens int            `json:"-"`
}
