package booking

import "testing"

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  int64
	}{
		{"whole euros", 200.00, 20000},
		{"cents", 99.99, 9999},
		{"half cent rounds up", 0.125, 13},
		{"just below half cent rounds down", 0.1249, 12},
		{"zero", 0, 0},
		{"single night rate", 123.45, 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinorUnits(tt.total); got != tt.want {
				t.Errorf("MinorUnits(%v) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}
