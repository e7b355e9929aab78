package helper

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/chai2010/webp"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestConvertToWebPDownscales(t *testing.T) {
	out, err := ConvertToWebP(pngBytes(t, 200, 100), "scan.png", WebPOptions{MaxW: 100, MaxH: 100, Quality: 80})
	if err != nil {
		t.Fatalf("ConvertToWebP: %v", err)
	}
	img, err := webp.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not webp: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("size = %dx%d", b.Dx(), b.Dy())
	}
	if ct := DetectContentType(out, "x.webp"); ct != "image/webp" {
		t.Fatalf("content type = %s", ct)
	}
}

func TestConvertToWebPRejectsNonImages(t *testing.T) {
	_, err := ConvertToWebP([]byte("%PDF-1.7 not an image"), "scan.pdf", WebPOptions{})
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildObjectKeyAndURL(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	key := BuildObjectKey("/applications/abc/transcript/", "My Transcript (1).PDF", now)
	if !strings.HasPrefix(key, "applications/abc/transcript/my-transcript-1_20250304_050607_") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("key = %s", key)
	}

	if got := PublicURL("", "docs", "https://oss-us-east-1.aliyuncs.com", "a/b.pdf"); got != "https://docs.oss-us-east-1.aliyuncs.com/a/b.pdf" {
		t.Fatalf("url = %s", got)
	}
	if got := PublicURL("https://cdn.example.com/", "docs", "oss", "a/b.pdf"); got != "https://cdn.example.com/a/b.pdf" {
		t.Fatalf("cdn url = %s", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Diplôma de Licenciatura": "diploma-de-licenciatura",
		"  __Résumé--final__ ":    "resume-final",
		"成绩单":                     "file",
		"":                        "file",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
