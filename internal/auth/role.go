package auth

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Role is the closed set of marketplace roles.
type Role int

const (
	RoleGuest Role = iota
	RoleBuyer
	RoleShopOwner
	RoleAdmin
)

// Roles lists every role in ascending privilege.
var Roles = []Role{RoleGuest, RoleBuyer, RoleShopOwner, RoleAdmin}

// ParseRole accepts both the plain ("admin") and the prefixed ("ROLE_ADMIN") spellings.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "role_")
	switch name {
	case "", "guest", "anonymous":
		return RoleGuest, nil
	case "buyer", "user", "customer":
		return RoleBuyer, nil
	case "shop_owner", "shopowner", "seller", "vendor":
		return RoleShopOwner, nil
	case "admin", "administrator":
		return RoleAdmin, nil
	}
	return RoleGuest, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleBuyer:
		return "buyer"
	case RoleShopOwner:
		return "shop_owner"
	case RoleAdmin:
		return "admin"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// CanCheckout reports whether the role may place orders.
func (r Role) CanCheckout() bool {
	switch r {
	case RoleBuyer, RoleShopOwner, RoleAdmin:
		return true
	case RoleGuest:
		return false
	}
	return false
}

// CanManageShop reports whether the role may manage shop content.
func (r Role) CanManageShop() bool {
	switch r {
	case RoleShopOwner, RoleAdmin:
		return true
	case RoleGuest, RoleBuyer:
		return false
	}
	return false
}

// CanModerate reports whether the role may moderate the marketplace.
func (r Role) CanModerate() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleGuest, RoleBuyer, RoleShopOwner:
		return false
	}
	return false
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
