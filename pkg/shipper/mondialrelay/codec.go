package mondialrelay

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Namespaces of the shipment creation documents.
const (
	RequestNamespace  = "http://www.example.org/Request"
	ResponseNamespace = "http://www.example.org/Response"
)

// ============================================================================
// XML Request/Response structures for the Mondial Relay API
// ============================================================================

type xmlShipmentRequest struct {
	XMLName   xml.Name      `xml:"ShipmentCreationRequest"`
	Xmlns     string        `xml:"xmlns,attr"`
	Context   xmlContext    `xml:"Context"`
	Output    xmlOutput     `xml:"OutputOptions"`
	Shipments []xmlShipment `xml:"ShipmentsList>Shipment"`
}

type xmlContext struct {
	Login      string `xml:"Login"`
	Password   string `xml:"Password"`
	CustomerID string `xml:"CustomerId"`
	Culture    string `xml:"Culture"`
	VersionAPI string `xml:"VersionAPI"`
}

type xmlOutput struct {
	OutputFormat string `xml:"OutputFormat,omitempty"`
	OutputType   string `xml:"OutputType"`
}

type xmlShipment struct {
	OrderNo             string      `xml:"OrderNo"`
	CustomerNo          string      `xml:"CustomerNo"`
	ParcelCount         int         `xml:"ParcelCount"`
	DeliveryMode        xmlMode     `xml:"DeliveryMode"`
	CollectionMode      xmlMode     `xml:"CollectionMode"`
	Parcels             []xmlParcel `xml:"Parcels>Parcel"`
	DeliveryInstruction string      `xml:"DeliveryInstruction"`
	Sender              xmlAddress  `xml:"Sender>Address"`
	Recipient           xmlAddress  `xml:"Recipient>Address"`
}

type xmlMode struct {
	Mode     string `xml:"Mode,attr"`
	Location string `xml:"Location,attr"`
}

type xmlParcel struct {
	Content string    `xml:"Content"`
	Weight  xmlWeight `xml:"Weight"`
}

type xmlWeight struct {
	Value int    `xml:"Value,attr"`
	Unit  string `xml:"Unit,attr"`
}

type xmlAddress struct {
	Title       string `xml:"Title"`
	Firstname   string `xml:"Firstname"`
	Lastname    string `xml:"Lastname"`
	Streetname  string `xml:"Streetname"`
	AddressAdd2 string `xml:"AddressAdd2"`
	CountryCode string `xml:"CountryCode"`
	PostCode    string `xml:"PostCode"`
	City        string `xml:"City"`
	AddressAdd1 string `xml:"AddressAdd1"`
	MobileNo    string `xml:"MobileNo"`
	Email       string `xml:"Email"`
}

type xmlShipmentResponse struct {
	XMLName       xml.Name          `xml:"ShipmentCreationResponse"`
	Xmlns         string            `xml:"xmlns,attr,omitempty"`
	StatusList    *xmlStatusList    `xml:"StatusList"`
	ShipmentsList *xmlShipmentsList `xml:"ShipmentsList"`
}

type xmlStatusList struct {
	Status []xmlStatus `xml:"Status"`
}

type xmlStatus struct {
	Code    string `xml:"Code,attr"`
	Level   string `xml:"Level,attr"`
	Message string `xml:"Message,attr"`
}

type xmlShipmentsList struct {
	Shipment []xmlShipmentResult `xml:"Shipment"`
}

type xmlShipmentResult struct {
	ShipmentNumber string        `xml:"ShipmentNumber,attr"`
	LabelList      *xmlLabelList `xml:"LabelList"`
}

type xmlLabelList struct {
	Label []xmlLabel `xml:"Label"`
}

type xmlLabel struct {
	Output     string         `xml:"Output"`
	RawContent *xmlRawContent `xml:"RawContent"`
}

type xmlRawContent struct {
	Text string `xml:",chardata"`
}

// ============================================================================
// Encoding
// ============================================================================

// EncodeShipmentRequest renders a request document. Every value is escaped.
func EncodeShipmentRequest(req *ShipmentRequest) ([]byte, error) {
	doc := xmlShipmentRequest{
		Xmlns: RequestNamespace,
		Context: xmlContext{
			Login:      req.Context.Login,
			Password:   req.Context.Password,
			CustomerID: req.Context.CustomerID,
			Culture:    req.Context.Culture,
			VersionAPI: req.Context.VersionAPI,
		},
		Output: xmlOutput{
			OutputFormat: req.Output.Format(),
			OutputType:   req.Output.Type(),
		},
		Shipments: make([]xmlShipment, len(req.Shipments)),
	}

	for i, s := range req.Shipments {
		parcels := make([]xmlParcel, len(s.Parcels))
		for j, p := range s.Parcels {
			parcels[j] = xmlParcel{
				Content: p.Content,
				Weight:  xmlWeight{Value: p.Weight.Value, Unit: p.Weight.Unit},
			}
		}
		doc.Shipments[i] = xmlShipment{
			OrderNo:             s.OrderNo,
			CustomerNo:          s.CustomerNo,
			ParcelCount:         s.ParcelCount,
			DeliveryMode:        xmlMode{Mode: s.DeliveryMode.Mode(), Location: s.DeliveryMode.Location()},
			CollectionMode:      xmlMode{Mode: s.CollectionMode.Mode(), Location: s.CollectionMode.Location()},
			Parcels:             parcels,
			DeliveryInstruction: s.DeliveryInstruction,
			Sender:              addressToXML(s.Sender),
			Recipient:           addressToXML(s.Recipient),
		}
	}

	return marshalDocument(doc)
}

// EncodeShipmentResponse renders a response document, as the carrier would.
func EncodeShipmentResponse(resp *ShipmentResponse) ([]byte, error) {
	doc := xmlShipmentResponse{Xmlns: ResponseNamespace}

	if len(resp.Statuses) > 0 {
		doc.StatusList = &xmlStatusList{}
		for _, s := range resp.Statuses {
			doc.StatusList.Status = append(doc.StatusList.Status, xmlStatus(s))
		}
	}

	if resp.Shipments != nil {
		doc.ShipmentsList = &xmlShipmentsList{}
		for _, s := range resp.Shipments {
			res := xmlShipmentResult{ShipmentNumber: s.ShipmentNumber}
			if s.Label != "" || s.RawContent != "" {
				res.LabelList = &xmlLabelList{Label: []xmlLabel{{
					Output:     s.Label,
					RawContent: &xmlRawContent{Text: s.RawContent},
				}}}
			}
			doc.ShipmentsList.Shipment = append(doc.ShipmentsList.Shipment, res)
		}
	}

	return marshalDocument(doc)
}

func marshalDocument(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return buf.Bytes(), nil
}

// ============================================================================
// Decoding
// ============================================================================

// DecodeShipmentResponse parses a response document. Statuses are returned
// as-is; use ClassifyStatuses before reading shipments.
func DecodeShipmentResponse(body []byte) (*ShipmentResponse, error) {
	var doc xmlShipmentResponse
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, malformedError("failed to decode response", err)
	}

	resp := &ShipmentResponse{}
	if doc.StatusList != nil {
		for _, s := range doc.StatusList.Status {
			resp.Statuses = append(resp.Statuses, Status(s))
		}
	}

	if doc.ShipmentsList != nil {
		resp.Shipments = make([]ShipmentResult, 0, len(doc.ShipmentsList.Shipment))
		for _, s := range doc.ShipmentsList.Shipment {
			res := ShipmentResult{ShipmentNumber: s.ShipmentNumber}
			if s.LabelList != nil && len(s.LabelList.Label) > 0 {
				label := s.LabelList.Label[0]
				res.Label = strings.TrimSpace(label.Output)
				if label.RawContent != nil {
					res.RawContent = strings.TrimSpace(label.RawContent.Text)
				}
			}
			resp.Shipments = append(resp.Shipments, res)
		}
	}

	return resp, nil
}

// DecodeShipmentRequest parses a request document back into a ShipmentRequest.
func DecodeShipmentRequest(body []byte) (*ShipmentRequest, error) {
	var doc xmlShipmentRequest
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}

	output, err := parseOutputOptions(doc.Output.OutputType, doc.Output.OutputFormat)
	if err != nil {
		return nil, err
	}

	req := &ShipmentRequest{
		Context: RequestContext{
			Login:      doc.Context.Login,
			Password:   doc.Context.Password,
			CustomerID: doc.Context.CustomerID,
			Culture:    doc.Context.Culture,
			VersionAPI: doc.Context.VersionAPI,
		},
		Output:    output,
		Shipments: make([]Shipment, len(doc.Shipments)),
	}

	for i, s := range doc.Shipments {
		parcels := make([]Parcel, len(s.Parcels))
		for j, p := range s.Parcels {
			parcels[j] = Parcel{Content: p.Content, Weight: Weight{Value: p.Weight.Value, Unit: p.Weight.Unit}}
		}
		req.Shipments[i] = Shipment{
			OrderNo:             s.OrderNo,
			CustomerNo:          s.CustomerNo,
			ParcelCount:         s.ParcelCount,
			DeliveryMode:        parseDeliveryMode(s.DeliveryMode.Mode, s.DeliveryMode.Location),
			CollectionMode:      Collection(CollectionModeCode(s.CollectionMode.Mode)),
			Parcels:             parcels,
			DeliveryInstruction: s.DeliveryInstruction,
			Sender:              addressFromXML(s.Sender),
			Recipient:           addressFromXML(s.Recipient),
		}
	}

	return req, nil
}

func parseDeliveryMode(mode, location string) DeliveryMode {
	switch PointModeCode(mode) {
	case ModePointRelay, ModePointXL, ModePointXXL, ModeLocker:
		return PointDelivery(PointModeCode(mode), location)
	}
	return HomeDelivery(HomeModeCode(mode))
}

func parseOutputOptions(outputType, format string) (OutputOptions, error) {
	switch outputType {
	case OutputPdfURL:
		return PDFOutput(PaperFormat(format)), nil
	case OutputQRCode:
		return QRCodeOutput(), nil
	case OutputZplCode:
		return ZPLOutput(), nil
	case OutputIplCode:
		return IPLOutput(), nil
	}
	return OutputOptions{}, fmt.Errorf("unknown output type %q", outputType)
}

// ============================================================================
// Conversion helpers
// ============================================================================

func addressToXML(a Address) xmlAddress {
	return xmlAddress{
		Title:       a.Title,
		Firstname:   a.Firstname,
		Lastname:    a.Lastname,
		Streetname:  a.Streetname,
		AddressAdd2: a.AddressAdd2,
		CountryCode: strings.ToUpper(a.CountryCode),
		PostCode:    a.PostCode,
		City:        a.City,
		AddressAdd1: a.AddressAdd1,
		MobileNo:    a.MobileNo,
		Email:       a.Email,
	}
}

func addressFromXML(a xmlAddress) Address {
	return Address{
		Title:       a.Title,
		Firstname:   a.Firstname,
		Lastname:    a.Lastname,
		Streetname:  a.Streetname,
		AddressAdd1: a.AddressAdd1,
		AddressAdd2: a.AddressAdd2,
		CountryCode: a.CountryCode,
		PostCode:    a.PostCode,
		City:        a.City,
		MobileNo:    a.MobileNo,
		Email:       a.Email,
	}
}
