package server

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/tournevent/mondialrelay/pkg/shipper"
)

// Metadata keys read from storefront payloads.
const (
	metaOptionType   = "type"
	metaPrintInStore = "print"
	metaIsLocker     = "isLocker"
	dataPickupPoint  = "parcel_shop_id"

	printInStoreValue = "in_store"
)

// Storefront payloads carry loosely typed metadata: booleans may arrive as
// "true", numbers as strings. Values are coerced with cast at this boundary.

type addressInput struct {
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Company     string         `json:"company"`
	Address1    string         `json:"address_1"`
	Address2    string         `json:"address_2"`
	City        string         `json:"city"`
	PostalCode  string         `json:"postal_code"`
	CountryCode string         `json:"country_code"`
	Phone       string         `json:"phone"`
	Metadata    map[string]any `json:"metadata"`
}

type lineItemInput struct {
	ID            string `json:"id"`
	Quantity      any    `json:"quantity"`
	VariantWeight any    `json:"variant_weight"`
}

type shippingOptionInput struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

type orderInput struct {
	ID              string          `json:"id"`
	DisplayID       any             `json:"display_id"`
	Email           string          `json:"email"`
	ShippingAddress *addressInput   `json:"shipping_address"`
	Items           []lineItemInput `json:"items"`
}

type priceInput struct {
	ShippingOption  shippingOptionInput `json:"shipping_option"`
	Items           []lineItemInput     `json:"items"`
	ShippingAddress *addressInput       `json:"shipping_address"`
}

type fulfillmentInput struct {
	FulfillmentID  string              `json:"fulfillment_id"`
	Order          orderInput          `json:"order"`
	Items          []lineItemInput     `json:"items"`
	ShippingOption shippingOptionInput `json:"shipping_option"`
	Data           map[string]any      `json:"data"`
}

type cancelInput struct {
	FulfillmentID string         `json:"fulfillment_id"`
	Data          map[string]any `json:"data"`
}

func addressInputToModel(input *addressInput) shipper.Address {
	if input == nil {
		return shipper.Address{}
	}
	return shipper.Address{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Company:     input.Company,
		Address1:    input.Address1,
		Address2:    input.Address2,
		City:        input.City,
		PostalCode:  input.PostalCode,
		CountryCode: input.CountryCode,
		Phone:       input.Phone,
		Locker:      cast.ToBool(input.Metadata[metaIsLocker]),
	}
}

func lineItemsInputToModel(inputs []lineItemInput) ([]shipper.LineItem, error) {
	result := make([]shipper.LineItem, 0, len(inputs))
	for i, in := range inputs {
		quantity, err := cast.ToIntE(orDefault(in.Quantity, 1))
		if err != nil {
			return nil, fmt.Errorf("%w: items[%d].quantity: %v", shipper.ErrInvalidRequest, i, err)
		}
		weight, err := cast.ToFloat64E(orDefault(in.VariantWeight, 0))
		if err != nil {
			return nil, fmt.Errorf("%w: items[%d].variant_weight: %v", shipper.ErrInvalidRequest, i, err)
		}
		result = append(result, shipper.LineItem{
			ID:            in.ID,
			Quantity:      quantity,
			VariantWeight: weight,
		})
	}
	return result, nil
}

func shippingOptionInputToModel(input shippingOptionInput) shipper.ShippingOption {
	return shipper.ShippingOption{
		ID:           input.ID,
		Name:         input.Name,
		DeliveryType: deliveryTypeToModel(cast.ToString(input.Metadata[metaOptionType])),
		PrintInStore: printInStore(input.Metadata[metaPrintInStore]),
	}
}

// printInStore reads the "print" metadata: "in_store", or a plain boolean.
func printInStore(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return cast.ToString(v) == printInStoreValue
}

func deliveryTypeToModel(s string) shipper.DeliveryType {
	switch s {
	case "home", "domicile":
		return shipper.DeliveryHome
	case "":
		return ""
	default:
		return shipper.DeliveryPickupPoint
	}
}

func priceInputToModel(input *priceInput) (*shipper.PriceRequest, error) {
	items, err := lineItemsInputToModel(input.Items)
	if err != nil {
		return nil, err
	}
	req := &shipper.PriceRequest{
		ShippingOption: shippingOptionInputToModel(input.ShippingOption),
		Items:          items,
	}
	if input.ShippingAddress != nil {
		req.CountryCode = input.ShippingAddress.CountryCode
	}
	return req, nil
}

func fulfillmentInputToModel(input *fulfillmentInput) (*shipper.FulfillmentRequest, error) {
	items, err := lineItemsInputToModel(input.Items)
	if err != nil {
		return nil, err
	}
	orderItems, err := lineItemsInputToModel(input.Order.Items)
	if err != nil {
		return nil, err
	}
	data := dataToModel(input.Data)

	return &shipper.FulfillmentRequest{
		FulfillmentID: input.FulfillmentID,
		Order: shipper.Order{
			ID:              input.Order.ID,
			DisplayID:       cast.ToString(input.Order.DisplayID),
			Email:           input.Order.Email,
			ShippingAddress: addressInputToModel(input.Order.ShippingAddress),
			Items:           orderItems,
		},
		Items:          items,
		ShippingOption: shippingOptionInputToModel(input.ShippingOption),
		PickupPointID:  data[dataPickupPoint],
		Data:           data,
	}, nil
}

func cancelInputToModel(input *cancelInput) *shipper.CancelRequest {
	return &shipper.CancelRequest{
		FulfillmentID: input.FulfillmentID,
		Data:          dataToModel(input.Data),
	}
}

func dataToModel(data map[string]any) map[string]string {
	if len(data) == 0 {
		return nil
	}
	result := make(map[string]string, len(data))
	for k, v := range data {
		result[k] = cast.ToString(v)
	}
	return result
}

// orDefault substitutes def for a field absent from the payload.
func orDefault(v any, def int) any {
	if v == nil {
		return def
	}
	return v
}
