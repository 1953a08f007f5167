package formatting_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/inspector/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"bytes unit", "512B", 512, false},
		{"kilobytes", "1KB", 1024, false},
		{"megabytes", "25MB", 25 * 1024 * 1024, false},
		{"gigabytes", "2GB", 2 * 1024 * 1024 * 1024, false},
		{"lowercase unit", "10mb", 10 * 1024 * 1024, false},
		{"iec alias", "25MiB", 25 * 1024 * 1024, false},
		{"iec lowercase", "4kib", 4 * 1024, false},
		{"fractional", "1.5MB", 1536 * 1024, false},
		{"with space", "100 MB", 100 * 1024 * 1024, false},
		{"surrounding whitespace", "  50MB  ", 50 * 1024 * 1024, false},
		{"zero", "0", 0, false},
		{"empty string", "", 0, true},
		{"unknown unit", "50XX", 0, true},
		{"no number", "MB", 0, true},
		{"negative", "-5MB", 0, true},
		{"terabytes", "1TB", 1 << 40, false},
		{"beyond terabytes", "1PB", 0, true},
		{"double dot", "1.2.3MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, formatting.ErrInvalidSize) {
				t.Errorf("ParseBytes(%q) error = %v, want ErrInvalidSize", tt.input, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name      string
		n         int64
		precision int
		want      string
	}{
		{"zero", 0, 2, "0 B"},
		{"negative", -10, 0, "0 B"},
		{"bytes", 500, 0, "500 B"},
		{"one KB", 1024, 0, "1 KB"},
		{"25 MB", 25 * 1024 * 1024, 0, "25 MB"},
		{"fractional MB", 1536 * 1024, 1, "1.5 MB"},
		{"negative precision clamped to zero", 1024, -1, "1 KB"},
		{"caps at TB", 2048 << 40, 0, "2048 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatting.FormatBytes(tt.n, tt.precision)
			if got != tt.want {
				t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
			}
		})
	}
}

func TestFormatThenParse(t *testing.T) {
	for _, n := range []int64{1024, 25 * 1024 * 1024, 1024 * 1024 * 1024} {
		formatted := formatting.FormatBytes(n, 0)
		parsed, err := formatting.ParseBytes(formatted)
		if err != nil {
			t.Fatalf("ParseBytes(%q): %v", formatted, err)
		}
		if parsed != n {
			t.Errorf("%d formatted as %q parsed back to %d", n, formatted, parsed)
		}
	}
}
