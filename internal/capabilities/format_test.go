package capabilities

import (
	"testing"

	"github.com/lakescan-io/lakescan/internal/catalog"
)

func TestFormatSupportsTimeTravel(t *testing.T) {
	tests := []struct {
		format catalog.TableFormat
		want   bool
	}{
		{catalog.FormatIceberg, true},
		{catalog.FormatDelta, true},
		{catalog.FormatHudi, true},
		{catalog.FormatParquet, false},
		{catalog.FormatUnknown, false},
	}
	for _, tt := range tests {
		if got := FormatSupportsTimeTravel(tt.format); got != tt.want {
			t.Errorf("FormatSupportsTimeTravel(%s) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestEveryFormatCanRead(t *testing.T) {
	for format := range FormatCapabilities {
		if !FormatSupportsCapability(format, CapabilityRead) {
			t.Errorf("format %s lacks READ", format)
		}
	}
}

func TestGetFormatCapabilities_UnknownFallback(t *testing.T) {
	caps := GetFormatCapabilities(catalog.TableFormat("orc"))
	set := NewCapabilitySet(caps)
	if !set.Has(CapabilityRead) || set.Has(CapabilityTimeTravel) {
		t.Errorf("fallback capabilities = %v", caps)
	}
}

func TestParseCapability(t *testing.T) {
	if _, err := ParseCapability("time_travel"); err != nil {
		t.Errorf("ParseCapability(time_travel): %v", err)
	}
	if _, err := ParseCapability("FLY"); err == nil {
		t.Error("expected error for unknown capability")
	}
}
