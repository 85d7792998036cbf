package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

func TestKey_OrderIndependent(t *testing.T) {
	a := Key("p1", domain.Variants{"color": "red", "size": "M"})
	b := Key("p1", domain.Variants{"size": "M", "color": "red"})
	assert.Equal(t, a, b)
}

func TestKey_NilEqualsEmpty(t *testing.T) {
	assert.Equal(t, Key("p1", nil), Key("p1", domain.Variants{}))
	assert.NotEqual(t, Key("p1", nil), Key("p1", domain.Variants{"color": "red"}))
}

func TestKey_Distinguishes(t *testing.T) {
	cases := []struct {
		name string
		a, b VariantKey
	}{
		{"different product", Key("p1", nil), Key("p2", nil)},
		{"different value", Key("p1", domain.Variants{"color": "red"}), Key("p1", domain.Variants{"color": "blue"})},
		{"different attribute", Key("p1", domain.Variants{"color": "M"}), Key("p1", domain.Variants{"size": "M"})},
		{"superset", Key("p1", domain.Variants{"color": "red"}), Key("p1", domain.Variants{"color": "red", "size": "M"})},
		{"separator in value", Key("p1", domain.Variants{"color": "red&size=M"}), Key("p1", domain.Variants{"color": "red", "size": "M"})},
		{"separator in product id", Key("p1?color=red", nil), Key("p1", domain.Variants{"color": "red"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, tc.a, tc.b)
		})
	}
}
