package publisher

import "testing"

func TestSubjectToken(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "plain id passes through",
			in:       "BUS_101",
			expected: "BUS_101",
		},
		{
			name:     "spaces become underscores",
			in:       "bus 101",
			expected: "bus_101",
		},
		{
			name:     "wildcard characters are neutralized",
			in:       "a.b>c*d",
			expected: "a_b_c_d",
		},
		{
			name:     "slash is not a token separator",
			in:       "fleet/101",
			expected: "fleet_101",
		},
		{
			name:     "empty input yields a placeholder",
			in:       "   ",
			expected: "_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubjectToken(tt.in); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
