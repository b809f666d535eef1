package brandcommit

import (
	"strings"
	"testing"
)

func TestBuildVCardStructure(t *testing.T) {
	m := Member{
		Name:    "Taro Yamada",
		Title:   "Designer",
		Email:   "taro@example.com",
		Phone:   "+81-3-1234-5678",
		Website: "https://taro.example.com",
		Slug:    "taro-yamada",
	}
	card := buildVCard(m, "Acme Inc", "https://cards.example.com/card/taro-yamada")

	lines := strings.Split(card, "\r\n")
	if lines[0] != "BEGIN:VCARD" {
		t.Fatalf("first line = %q", lines[0])
	}
	if lines[1] != "VERSION:3.0" {
		t.Fatalf("second line = %q", lines[1])
	}
	if lines[len(lines)-2] != "END:VCARD" {
		t.Fatalf("closing line = %q", lines[len(lines)-2])
	}
	if lines[len(lines)-1] != "" {
		t.Fatal("vcard must end with CRLF")
	}

	for _, want := range []string{
		"FN:Taro Yamada",
		"ORG:Acme Inc",
		"TITLE:Designer",
		"TEL;TYPE=WORK,VOICE:+81-3-1234-5678",
		"EMAIL;TYPE=WORK:taro@example.com",
		"URL:https://taro.example.com",
		"URL:https://cards.example.com/card/taro-yamada",
	} {
		found := false
		for _, l := range lines {
			if l == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing line %q in:\n%s", want, card)
		}
	}
}

func TestBuildVCardOmitsEmptyFields(t *testing.T) {
	card := buildVCard(Member{Name: "Minimal"}, "", "")
	for _, forbidden := range []string{"ORG:", "TITLE:", "TEL", "EMAIL", "URL:"} {
		if strings.Contains(card, forbidden) {
			t.Errorf("card for empty fields should not contain %q:\n%s", forbidden, card)
		}
	}
}

func TestEscapeVCard(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain", "Plain"},
		{"Comma, Inc", `Comma\, Inc`},
		{"Semi;colon", `Semi\;colon`},
		{`Back\slash`, `Back\\slash`},
		{"Multi\nline", `Multi\nline`},
	}
	for _, tt := range tests {
		if got := escapeVCard(tt.in); got != tt.want {
			t.Errorf("escapeVCard(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
