package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Variant attribute names understood by the catalog.
const (
	AttrColor    = "color"
	AttrSize     = "size"
	AttrMaterial = "material"
)

// Variants maps a variant attribute name to the chosen value.
// A nil map and an empty map both mean "no variant selected".
type Variants map[string]string

// Clone returns a copy that does not share storage with v.
func (v Variants) Clone() Variants {
	if len(v) == 0 {
		return nil
	}
	out := make(Variants, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Equal reports whether both selections hold the same attribute/value pairs.
func (v Variants) Equal(o Variants) bool {
	if len(v) != len(o) {
		return false
	}
	for k, val := range v {
		other, ok := o[k]
		if !ok || other != val {
			return false
		}
	}
	return true
}

type Variant struct {
	ID              string          `json:"id"`
	Color           string          `json:"color,omitempty"`
	Size            string          `json:"size,omitempty"`
	Material        string          `json:"material,omitempty"`
	Stock           int             `json:"stock"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
}

// Attributes returns the non-empty attributes of the variant as a selection.
func (v Variant) Attributes() Variants {
	attrs := Variants{}
	if v.Color != "" {
		attrs[AttrColor] = v.Color
	}
	if v.Size != "" {
		attrs[AttrSize] = v.Size
	}
	if v.Material != "" {
		attrs[AttrMaterial] = v.Material
	}
	return attrs
}

// Matches reports whether the selection picks exactly this variant.
func (v Variant) Matches(selected Variants) bool {
	return v.Attributes().Equal(selected)
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	ShopID      string          `json:"shopId"`
	ShopName    string          `json:"shopName"`
	Rating      float64         `json:"rating,omitempty"`
	Variants    []Variant       `json:"variants,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Image returns the primary image reference, if any.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// FindVariant returns the variant picked by the selection, or nil.
func (p *Product) FindVariant(selected Variants) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Matches(selected) {
			return &p.Variants[i]
		}
	}
	return nil
}

// ResolveVariant validates a selection against the product's options.
// Products without variants accept only an empty selection and resolve to nil.
func (p *Product) ResolveVariant(selected Variants) (*Variant, error) {
	if len(p.Variants) == 0 {
		if len(selected) > 0 {
			return nil, InvalidInput("product has no variant options")
		}
		return nil, nil
	}
	if len(selected) == 0 {
		if len(p.Variants) == 1 && len(p.Variants[0].Attributes()) == 0 {
			return &p.Variants[0], nil
		}
		return nil, InvalidInput("please select a variant option")
	}
	v := p.FindVariant(selected)
	if v == nil {
		return nil, InvalidInput("selected variant is not available for this product")
	}
	return v, nil
}

// UnitPrice is the base price plus the adjustment of the variant the selection picks.
func (p *Product) UnitPrice(selected Variants) decimal.Decimal {
	if v := p.FindVariant(selected); v != nil {
		return p.Price.Add(v.PriceAdjustment)
	}
	return p.Price
}

// AvailableStock is the stock of the picked variant, or the product stock.
func (p *Product) AvailableStock(v *Variant) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}

type Shop struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Logo         string    `json:"logo,omitempty"`
	OwnerID      string    `json:"ownerId"`
	Rating       float64   `json:"rating"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Catalog is the remote query interface for products and shops.
type Catalog interface {
	ListProducts(ctx context.Context, filter ListingFilter) (Page[Product], error)
	ListShops(ctx context.Context, filter ListingFilter) (Page[Shop], error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListPromotions(ctx context.Context) ([]Promotion, error)
}
