package brandcommit

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Taro Yamada", "taro-yamada"},
		{"  Spaced  Out  ", "spaced-out"},
		{"UPPER", "upper"},
		{"dots.and_underscores", "dots-and-underscores"},
		{"already-a-slug", "already-a-slug"},
		{"trailing!", "trailing"},
		{"123 numbers", "123-numbers"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", []string{"card", "alice"}, "https://example.com/card/alice"},
		{"https://example.com/", []string{"card", "alice"}, "https://example.com/card/alice"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestValidHexColor(t *testing.T) {
	valid := []string{"#fff", "#FFF", "#1a2b3c", "#ABCDEF"}
	invalid := []string{"", "fff", "#ff", "#ffff", "#1a2b3", "#gggggg", "#1a2b3c4d"}
	for _, v := range valid {
		if !ValidHexColor(v) {
			t.Errorf("ValidHexColor(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if ValidHexColor(v) {
			t.Errorf("ValidHexColor(%q) = true, want false", v)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", "", "  ", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("FilterEmpty = %v, want [a b]", got)
	}
}
