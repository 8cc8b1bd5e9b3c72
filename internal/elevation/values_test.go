package elevation

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  int32
		want Elevation
	}{
		{"ordinary elevation", 125, 125},
		{"negative but plausible", -500, -500},
		{"legacy sentinel maps to sea level", -32768, seaLevel},
		{"no data sentinel", -9999, NoData},
		{"alt no data sentinel", -99999, NoData},
		{"int16 max sentinel", 32767, NoData},
		{"uint16 max sentinel", 65535, NoData},
		{"below plausible range", -10001, NoData},
		{"above plausible range", 90001, NoData},
		{"at lower plausible bound", -10000, -10000},
		{"at upper plausible bound", 90000, 90000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.raw); got != tt.want {
				t.Errorf("classify(%d) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}
