package cart

import (
	cartsvc "github.com/angelmondragon/lumina-backend/internal/cart"
)

type itemRequest struct {
	ProductID       string  `json:"product_id" validate:"required,max=64"`
	CustomizationID *string `json:"customization_id,omitempty" validate:"omitempty,max=64"`
}

type quantityRequest struct {
	ProductID       string  `json:"product_id" validate:"required,max=64"`
	CustomizationID *string `json:"customization_id,omitempty" validate:"omitempty,max=64"`
	Quantity        *int    `json:"quantity" validate:"required"`
}

func (r itemRequest) input() cartsvc.ItemInput {
	return cartsvc.ItemInput{ProductID: r.ProductID, CustomizationID: r.CustomizationID}
}

func (r quantityRequest) input() cartsvc.ItemInput {
	return cartsvc.ItemInput{ProductID: r.ProductID, CustomizationID: r.CustomizationID}
}
