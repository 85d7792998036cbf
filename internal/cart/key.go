package cart

import (
	"net/url"

	"storefront/internal/domain"
)

// VariantKey identifies a line item by product and variant selection.
type VariantKey string

// Key derives the identity of (productID, variants). Attribute order does not
// matter; nil and empty selections share a key distinct from any non-empty one.
func Key(productID string, variants domain.Variants) VariantKey {
	vals := make(url.Values, len(variants))
	for k, v := range variants {
		vals.Set(k, v)
	}
	// Encode sorts by attribute name and escapes the separators.
	return VariantKey(url.QueryEscape(productID) + "?" + vals.Encode())
}
