package domain

// Product is a single catalog entry. The upstream sheet keys products by
// their display name; Slug is the URL-safe identity derived from it.
type Product struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`

	// SalePrice is nil when the sheet has no numeric price ("price on
	// request" items, rendered as "Consulte").
	SalePrice *float64 `json:"sale_price,omitempty"`
}

// HasPrice reports whether the product carries a numeric sale price.
func (p Product) HasPrice() bool {
	return p.SalePrice != nil
}

// ScoredProduct is a product annotated with a relevance score for the
// duration of a single search. Score is 0 when the query was empty.
type ScoredProduct struct {
	Product
	Score int `json:"score"`
}
