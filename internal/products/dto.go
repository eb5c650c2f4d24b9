package products

// ListFilters narrows catalog listings.
type ListFilters struct {
	Category    string
	Search      string
	Recommended *bool
	Featured    *bool
}

// CreateProductInput is the admin payload for a new listing.
type CreateProductInput struct {
	Name            string   `json:"name" validate:"required"`
	Category        string   `json:"category" validate:"required"`
	PriceCents      int      `json:"price_cents" validate:"required,gt=0"`
	DiscountPercent int      `json:"discount_percent" validate:"gte=0,lte=100"`
	ImageURL        string   `json:"image_url" validate:"required,url"`
	HoverImageURL   *string  `json:"hover_image_url,omitempty" validate:"omitempty,url"`
	Images          []string `json:"images" validate:"dive,url"`
	Sizes           []string `json:"sizes" validate:"required,min=1,dive,required"`
	Recommended     bool     `json:"recommended"`
	IsFeatured      bool     `json:"is_featured"`
}

// UpdateProductInput carries optional admin edits; nil fields are untouched.
type UpdateProductInput struct {
	Name            *string         `json:"name,omitempty"`
	Category        *string         `json:"category,omitempty"`
	PriceCents      *int            `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	DiscountPercent *int            `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	ImageURL        *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	HoverImageURL   *string         `json:"hover_image_url,omitempty" validate:"omitempty,url"`
	Images          *[]string       `json:"images,omitempty"`
	Sizes           *[]string       `json:"sizes,omitempty"`
	Inventory       *map[string]int `json:"inventory,omitempty"`
	Recommended     *bool           `json:"recommended,omitempty"`
	IsFeatured      *bool           `json:"is_featured,omitempty"`
}
