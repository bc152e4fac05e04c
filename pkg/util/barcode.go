package util

import "strings"

// Symbology identifiers as emitted by the mobile scanner.
var supportedSymbologies = map[string]struct{}{
	"aztec":      {},
	"ean13":      {},
	"ean8":       {},
	"qr":         {},
	"pdf417":     {},
	"upc_e":      {},
	"datamatrix": {},
	"code39":     {},
	"code93":     {},
	"itf14":      {},
	"codabar":    {},
	"code128":    {},
	"upc_a":      {},
}

// IsSupportedSymbology reports whether a scanned barcode type can be
// looked up. Unknown symbologies are rejected before any resolution runs.
func IsSupportedSymbology(symbology string) bool {
	_, ok := supportedSymbologies[strings.ToLower(strings.TrimSpace(symbology))]
	return ok
}

// SupportedSymbologies returns the accepted symbology identifiers
func SupportedSymbologies() []string {
	out := make([]string, 0, len(supportedSymbologies))
	for s := range supportedSymbologies {
		out = append(out, s)
	}
	return out
}
