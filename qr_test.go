package brandcommit

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestQRSizeClamp(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 512},
		{"abc", 512},
		{"256", 256},
		{"64", 128},
		{"128", 128},
		{"1024", 1024},
		{"4096", 1024},
		{"-5", 128},
	}
	for _, tt := range tests {
		if got := qrSize(tt.in); got != tt.want {
			t.Errorf("qrSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCardQRPNG(t *testing.T) {
	a := New(SiteConfig{URL: "https://cards.example.com"}, ViewFuncs{})
	png, err := a.cardQRPNG(Member{Slug: "alice"}, 256)
	if err != nil {
		t.Fatalf("cardQRPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatal("expected PNG magic bytes")
	}
}

func TestQRZipManifest(t *testing.T) {
	a := New(SiteConfig{URL: "https://cards.example.com"}, ViewFuncs{})
	members := []Member{{Slug: "alice"}, {Slug: "bob"}}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		png, err := a.cardQRPNG(m, qrDefaultSize)
		if err != nil {
			t.Fatalf("cardQRPNG: %v", err)
		}
		w, err := zw.Create(m.Slug + ".png")
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write(png); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip read: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 files, got %d", len(zr.File))
	}
	if zr.File[0].Name != "alice.png" || zr.File[1].Name != "bob.png" {
		t.Fatalf("unexpected manifest: %s, %s", zr.File[0].Name, zr.File[1].Name)
	}
}
