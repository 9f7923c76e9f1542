package domain

// Product is the catalogue entry referenced by work entries.
type Product struct {
	Reference   string
	Description string
	Price       float64
	NoStock     bool
}

// Stock is the quantity on hand of a product in a warehouse.
type Stock struct {
	Reference     string
	WarehouseCode string
	Quantity      float64
}
