package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-05-01", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{" 2026-05-01 ", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-05-01 13:45:00", time.Date(2026, 5, 1, 13, 45, 0, 0, time.UTC)},
		{"2026-05-01T13:45:00", time.Date(2026, 5, 1, 13, 45, 0, 0, time.UTC)},
		{"2026-05-01T13:45:00Z", time.Date(2026, 5, 1, 13, 45, 0, 0, time.UTC)},
		{"2026-05-01T15:45:00.5+02:00", time.Date(2026, 5, 1, 13, 45, 0, 500000000, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2026-13-01", "2026-02-30", "01/05/2026"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", in)
		}
	}
}
