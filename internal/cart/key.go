package cart

// LineKey identifies a cart line: one product with one optional base colour.
// An empty CustomizationID means the lamp ships with its default base.
type LineKey struct {
	ProductID       string
	CustomizationID string
}

// NewLineKey builds a key from a product id and an optional customization id.
func NewLineKey(productID string, customizationID *string) LineKey {
	key := LineKey{ProductID: productID}
	if customizationID != nil {
		key.CustomizationID = *customizationID
	}
	return key
}

// HasCustomization reports whether the key carries a base colour.
func (k LineKey) HasCustomization() bool {
	return k.CustomizationID != ""
}
