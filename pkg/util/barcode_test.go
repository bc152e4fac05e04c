package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupportedSymbology(t *testing.T) {
	tests := []struct {
		name      string
		symbology string
		want      bool
	}{
		{"EAN-13", "ean13", true},
		{"UPC-A", "upc_a", true},
		{"QR", "qr", true},
		{"Uppercase input", "EAN13", true},
		{"Padded input", " code128 ", true},
		{"Unknown symbology", "maxicode", false},
		{"Empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupportedSymbology(tt.symbology))
		})
	}
}

func TestSupportedSymbologies(t *testing.T) {
	symbologies := SupportedSymbologies()
	assert.Len(t, symbologies, 13)
	assert.Contains(t, symbologies, "ean13")
	assert.Contains(t, symbologies, "pdf417")
}
