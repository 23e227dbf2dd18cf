package constants

import "testing"

func TestCanonicalizeAwardLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   AwardLevel
		wantOK bool
	}{
		{"一等奖", LevelFirst, true},
		{" 二等奖 ", LevelSecond, true},
		{"金奖", LevelGold, true},
		{"第一名", LevelFirst, true},
		{"优胜奖", LevelHonourable, true},
		{"四等奖", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizeAwardLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CanonicalizeAwardLevel(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCanonicalizeAwardCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   AwardCategory
		wantOK bool
	}{
		{"国家级", CategoryNational, true},
		{"全国", CategoryNational, true},
		{"省级", CategoryProvincial, true},
		{"省部级", CategoryProvincial, true},
		{"市级", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizeAwardCategory(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CanonicalizeAwardCategory(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMapExtToFormat(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"pdf", PDF},
		{".PDF", PDF},
		{"jpg", IMAGE},
		{"JPEG", IMAGE},
		{"png", IMAGE},
		{"bmp", IMAGE},
		{"gif", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MapExtToFormat(tt.ext); got != tt.want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}
