package cli

import "testing"

func TestThresholdValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"0.5", 0.5, false},
		{"0", 0, false},
		{"1", 1, false},
		{"2.5", 2.5, false}, // range is checked after merging sources
		{"abc", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			var f float64
			v := newThresholdValue(0.3, &f)
			err := v.Set(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Set(%q) error = nil, want error", tt.input)
				}
				if f != 0.3 {
					t.Errorf("Set(%q) changed value to %v on error", tt.input, f)
				}
				return
			}
			if err != nil || f != tt.want {
				t.Errorf("Set(%q) = %v, %v; want %v", tt.input, f, err, tt.want)
			}
		})
	}
}

func TestThresholdValue_StringAndType(t *testing.T) {
	t.Parallel()

	var f float64
	v := newThresholdValue(0.3, &f)
	if v.String() != "0.3" {
		t.Errorf("String() = %q, want 0.3", v.String())
	}
	if v.Type() != "seconds" {
		t.Errorf("Type() = %q, want seconds", v.Type())
	}
}
