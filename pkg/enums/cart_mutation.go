package enums

import "fmt"

// CartMutation names an operation that changes a cart's contents or drawer state.
type CartMutation string

const (
	CartMutationAdd    CartMutation = "add"
	CartMutationRemove CartMutation = "remove"
	CartMutationUpdate CartMutation = "update_quantity"
	CartMutationClear  CartMutation = "clear"
	CartMutationOpen   CartMutation = "open"
	CartMutationClose  CartMutation = "close"
	CartMutationToggle CartMutation = "toggle"
)

var validCartMutations = []CartMutation{
	CartMutationAdd,
	CartMutationRemove,
	CartMutationUpdate,
	CartMutationClear,
	CartMutationOpen,
	CartMutationClose,
	CartMutationToggle,
}

// String implements fmt.Stringer.
func (m CartMutation) String() string {
	return string(m)
}

// IsValid reports whether the value is a known CartMutation.
func (m CartMutation) IsValid() bool {
	for _, candidate := range validCartMutations {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCartMutation converts raw input into a CartMutation.
func ParseCartMutation(value string) (CartMutation, error) {
	for _, candidate := range validCartMutations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart mutation %q", value)
}
