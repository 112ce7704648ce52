package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "display mask",
			input: "(212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "digits only",
			input: "2125551234",
			want:  "+12125551234",
		},
		{
			name:  "already E.164",
			input: "+12125551234",
			want:  "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  (212) 555-1234  ",
			want:  "+12125551234",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "letters",
			input: "call me",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
