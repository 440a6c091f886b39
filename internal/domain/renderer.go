package domain

// ChartType is the kind of chart a renderer produces.
type ChartType string

// Chart types
const (
	ChartLine   ChartType = "linegraph"
	ChartPie    ChartType = "piechart"
	ChartNoData ChartType = "nodata"
)

// Capabilities are the static flags a renderer declares. The orchestrator branches on them.
type Capabilities struct {
	RequiresUser      bool
	RequiresAdmin     bool
	UsesDays          bool
	CanHaveTechnicals bool
	HasSubheading     bool
	UsesSummaries     bool
	ChartType         ChartType
}

// Metadata holds the display fields of a renderer.
type Metadata struct {
	Title     string
	TitleArgs map[string]string
	URL       string
	Label     string
	Classes   string
	H1        string
	H2        string
	NoHeader  bool
}

// NoDataKind identifies why a renderer had nothing to return.
type NoDataKind string

// No-data kinds
const (
	NoDataNone              NoDataKind = ""
	NoDataMissingAccounts   NoDataKind = "missing_accounts"
	NoDataMissingCurrencies NoDataKind = "missing_currencies"
)
