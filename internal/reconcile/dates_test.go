package reconcile

import "testing"

func TestNormalizeAwardDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"2024-05-18", "2024-05-18", true},
		{"2024/05/18", "2024-05-18", true},
		{"2024年05月18日", "2024-05-18", true},
		{"2024年05月18", "2024-05-18", true},
		{"2024.05.18", "2024-05-18", true},
		{"20240518", "2024-05-18", true},
		{"2024年5月18日", "2024-05-18", true},
		{"2024年5月8日", "2024-05-08", true},
		{"2024-5-8", "2024-05-08", true},
		{"2024/5/8", "2024-05-08", true},
		{"  2024-05-18  ", "2024-05-18", true},
		{"May 18, 2024", "", false},
		{"2024-13-40", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeAwardDate(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeAwardDate(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
