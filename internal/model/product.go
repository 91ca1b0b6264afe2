package model

// Product represents a book as returned by the bookstore backend.
type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	SalePrice    *int64 `json:"sale_price,omitempty"`
	Image        string `json:"image"`
	Author       string `json:"author"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Stock        int    `json:"stock"`
}

// EffectivePrice returns the sale price when one is set, otherwise the list price.
func (p Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}
