package validation

import (
	"testing"

	"golang.org/x/text/language"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		expectErr bool
	}{
		{
			name:      "Valid pretty format",
			format:    "pretty",
			expectErr: false,
		},
		{
			name:      "Valid csv format",
			format:    "csv",
			expectErr: false,
		},
		{
			name:      "Valid json format",
			format:    "json",
			expectErr: false,
		},
		{
			name:      "Invalid format",
			format:    "xml",
			expectErr: true,
		},
		{
			name:      "Empty format",
			format:    "",
			expectErr: true,
		},
		{
			name:      "Case sensitive - uppercase",
			format:    "PRETTY",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.expectErr && err == nil {
				t.Errorf("ValidateOutputFormat(%q) expected error but got none", tt.format)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("ValidateOutputFormat(%q) unexpected error = %v", tt.format, err)
			}
		})
	}
}

func TestValidateViewMode(t *testing.T) {
	for _, mode := range []string{"", "single", "compare"} {
		if err := ValidateViewMode(mode); err != nil {
			t.Errorf("ValidateViewMode(%q) unexpected error = %v", mode, err)
		}
	}
	for _, mode := range []string{"overlay", "Compare"} {
		if err := ValidateViewMode(mode); err == nil {
			t.Errorf("ValidateViewMode(%q) expected error but got none", mode)
		}
	}
}

func TestParseLocale(t *testing.T) {
	tag, err := ParseLocale("")
	if err != nil || tag != language.English {
		t.Fatalf("ParseLocale(\"\") = %v, %v, expected English", tag, err)
	}

	tag, err = ParseLocale("de-DE")
	if err != nil {
		t.Fatalf("ParseLocale(de-DE) error = %v", err)
	}
	if base, _ := tag.Base(); base.String() != "de" {
		t.Errorf("ParseLocale(de-DE) base = %s, expected de", base)
	}

	if _, err := ParseLocale("not a locale!"); err == nil {
		t.Error("expected error for malformed locale")
	}
}
