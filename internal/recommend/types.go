package recommend

type Strategy string

const (
	StrategyCollaborative Strategy = "collaborative_filtering"
	StrategyContent       Strategy = "content_based"
	StrategyCoPurchase    Strategy = "co_purchase"
	StrategyPopular       Strategy = "popular_products"
)

type RankedProduct struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Name      string  `json:"product_name"`
	Price     float64 `json:"price"`
}

// Result pairs a ranking with the strategy that produced it.
type Result struct {
	Strategy Strategy        `json:"strategy"`
	Items    []RankedProduct `json:"recommendations"`
}

// ContentAnchor selects the category to recommend from: a product's own
// category when ProductID is set, otherwise CategoryID.
type ContentAnchor struct {
	ProductID  string
	CategoryID string
}
