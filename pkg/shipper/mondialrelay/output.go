package mondialrelay

// PaperFormat is a PDF label paper size.
type PaperFormat string

// PDF paper formats.
const (
	PaperA4    PaperFormat = "A4"
	PaperA5    PaperFormat = "A5"
	Paper10x15 PaperFormat = "10*15"
)

// Label output types as sent on the wire.
const (
	OutputPdfURL  = "PdfUrl"
	OutputQRCode  = "QRCode"
	OutputZplCode = "ZplCode"
	OutputIplCode = "IplCode"
)

// Fixed formats for thermal printer outputs.
const (
	formatZPL = "Generic_ZPL_10x15_200dpi"
	formatIPL = "Generic_IPL_10x15_204dpi"
)

// OutputOptions selects the label output. The format is implied by the type;
// build values with PDFOutput, QRCodeOutput, ZPLOutput or IPLOutput.
type OutputOptions struct {
	outputType string
	format     string
}

// PDFOutput returns a PDF URL output on the given paper.
func PDFOutput(paper PaperFormat) OutputOptions {
	return OutputOptions{outputType: OutputPdfURL, format: string(paper)}
}

// QRCodeOutput returns a QR code output, which has no format.
func QRCodeOutput() OutputOptions {
	return OutputOptions{outputType: OutputQRCode}
}

// ZPLOutput returns a ZPL payload output.
func ZPLOutput() OutputOptions {
	return OutputOptions{outputType: OutputZplCode, format: formatZPL}
}

// IPLOutput returns an IPL payload output.
func IPLOutput() OutputOptions {
	return OutputOptions{outputType: OutputIplCode, format: formatIPL}
}

// Type returns the wire output type.
func (o OutputOptions) Type() string { return o.outputType }

// Format returns the wire output format, empty for QR codes.
func (o OutputOptions) Format() string { return o.format }
