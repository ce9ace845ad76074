package domain

import "time"

// Cart is a visitor's shopping cart, keyed by session.
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartItem is a single product line in the cart.
type CartItem struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	PhotoURL  string   `json:"photo_url"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	Quantity  int      `json:"quantity"`
}

// Subtotal returns the line total. Items without a numeric price contribute
// zero; they are quoted separately by the store.
func (i CartItem) Subtotal() float64 {
	if i.UnitPrice == nil {
		return 0
	}
	return *i.UnitPrice * float64(i.Quantity)
}

// HasPrice reports whether the item carries a numeric unit price.
func (i CartItem) HasPrice() bool {
	return i.UnitPrice != nil
}

// TotalAmount sums the subtotals of all priced items.
func (c *Cart) TotalAmount() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItemIndex returns the index of the line for the given product slug,
// or -1 when the product is not in the cart.
func (c *Cart) FindItemIndex(slug string) int {
	for i := range c.Items {
		if c.Items[i].Slug == slug {
			return i
		}
	}
	return -1
}
