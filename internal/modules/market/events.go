package market

// MarketEvent is a cosmetic sector headline surfaced on some days
type MarketEvent struct {
	Sector   string `json:"sector"`
	Headline string `json:"headline"`
}

var sectorHeadlines = map[string][]string{
	"Technology": {
		"Tech giants unveil next-generation chips",
		"New data privacy rules worry software makers",
		"Cloud spending surges across the industry",
	},
	"Energy": {
		"Government announces renewable energy subsidies",
		"Oil supply disruption rattles energy markets",
		"Solar panel costs hit a record low",
	},
	"Healthcare": {
		"Breakthrough drug trial results announced",
		"Hospital networks report rising patient volumes",
		"Regulators tighten medical device approvals",
	},
	"Finance": {
		"Central bank hints at an interest rate change",
		"Banks post strong quarterly earnings",
		"New lending rules take effect next month",
	},
}

const genericHeadline = "Analysts debate the sector outlook"

func headlineFor(sector string, u float64) string {
	headlines := sectorHeadlines[sector]
	if len(headlines) == 0 {
		return genericHeadline
	}
	return headlines[pick(len(headlines), u)]
}

// pick maps a uniform draw in [0,1) to an index in [0,n)
func pick(n int, u float64) int {
	idx := int(u * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
