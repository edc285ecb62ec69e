package mondialrelay

import (
	"github.com/tournevent/mondialrelay/pkg/shipper"
)

// BusinessAddress is the merchant address used as sender of outbound
// shipments and recipient of returns.
type BusinessAddress struct {
	Title       string
	Firstname   string
	Lastname    string
	Streetname  string
	AddressAdd1 string
	AddressAdd2 string
	CountryCode string
	PostCode    string
	City        string
	MobileNo    string
	Email       string
	// ReturnLocation is the pickup point where customer returns are delivered.
	ReturnLocation string
}

// shipmentParams are the per-call values a shipment is built from.
type shipmentParams struct {
	orderNo     string
	content     string
	weightGrams int
	mode        DeliveryMode
	sender      Address
	recipient   Address
}

func businessToAPI(b BusinessAddress) Address {
	return Address{
		Title:       b.Title,
		Firstname:   b.Firstname,
		Lastname:    b.Lastname,
		Streetname:  b.Streetname,
		AddressAdd1: b.AddressAdd1,
		AddressAdd2: b.AddressAdd2,
		CountryCode: b.CountryCode,
		PostCode:    b.PostCode,
		City:        b.City,
		MobileNo:    b.MobileNo,
		Email:       b.Email,
	}
}

// customerToAPI maps an order shipping address. The company line is not sent.
func customerToAPI(addr shipper.Address, email string) Address {
	return Address{
		Firstname:   addr.FirstName,
		Lastname:    addr.LastName,
		Streetname:  addr.Address1,
		AddressAdd2: addr.Address2,
		CountryCode: addr.CountryCode,
		PostCode:    addr.PostalCode,
		City:        addr.City,
		MobileNo:    addr.Phone,
		Email:       email,
	}
}

func (c *Client) requestContext() RequestContext {
	return RequestContext{
		Login:      c.config.Login,
		Password:   c.config.Password,
		CustomerID: c.config.CustomerID,
		Culture:    c.config.Culture,
		VersionAPI: VersionAPI,
	}
}

// outputFor prints a QR code when the label is printed in store, a PDF otherwise.
func outputFor(opt shipper.ShippingOption) OutputOptions {
	if opt.PrintInStore {
		return QRCodeOutput()
	}
	return PDFOutput(PaperA4)
}

func (c *Client) buildShipmentRequest(output OutputOptions, p shipmentParams) *ShipmentRequest {
	return &ShipmentRequest{
		Context: c.requestContext(),
		Output:  output,
		Shipments: []Shipment{
			{
				OrderNo:        p.orderNo,
				ParcelCount:    1,
				DeliveryMode:   p.mode,
				CollectionMode: ResolveCollectionMode(),
				Parcels: []Parcel{
					{
						Content: p.content,
						Weight:  Weight{Value: p.weightGrams, Unit: WeightUnitGrams},
					},
				},
				Sender:    p.sender,
				Recipient: p.recipient,
			},
		},
	}
}

// pickupPointID prefers the point chosen on the storefront, then the
// second address line where some storefronts store it.
func pickupPointID(req *shipper.FulfillmentRequest) string {
	if req.PickupPointID != "" {
		return req.PickupPointID
	}
	return req.Order.ShippingAddress.Address2
}

// returnDeliveryMode delivers returns to the configured return location,
// never to a point chosen by the customer.
func returnDeliveryMode(home, locker bool, returnLocation string) DeliveryMode {
	switch {
	case home:
		return HomeDelivery(ModeHome)
	case locker:
		return PointDelivery(ModeLocker, returnLocation)
	default:
		return PointDelivery(ModePointRelay, returnLocation)
	}
}

func toFulfillmentResponse(existing map[string]string, result *ShipmentResult) *shipper.FulfillmentResponse {
	data := make(map[string]string, len(existing)+3)
	for k, v := range existing {
		data[k] = v
	}
	data[shipper.DataShipmentNumber] = result.ShipmentNumber
	data[shipper.DataShipmentLabel] = result.Label
	data[shipper.DataShipmentRawContent] = result.RawContent

	labels := []shipper.Label{}
	if result.Label != "" {
		labels = append(labels, shipper.Label{
			TrackingNumber: result.ShipmentNumber,
			TrackingURL:    "",
			LabelURL:       result.Label,
		})
	}

	return &shipper.FulfillmentResponse{Data: data, Labels: labels}
}
