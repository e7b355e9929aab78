package helper

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

var ErrUnsupportedImage = errors.New("unsupported image format (use jpg, png or webp)")

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func envInt(key string, def int) int {
	if v := getEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := getEnv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			return float32(f)
		}
	}
	return def
}

/* =======================================================================
   WebP options (env driven)
======================================================================= */

type WebPOptions struct {
	MaxW     int     // resize keeping aspect when wider
	MaxH     int     // or taller
	Quality  float32 // lossy quality, 0..100
	TargetKB int     // 0 disables the size search
	MinQ     float32
	MaxQ     float32
}

// WebPOptionsFromEnv defaults favour legible scans over small files.
func WebPOptionsFromEnv() WebPOptions {
	return WebPOptions{
		MaxW:     envInt("DOCUMENT_WEBP_MAX_W", 2400),
		MaxH:     envInt("DOCUMENT_WEBP_MAX_H", 2400),
		Quality:  envFloat("DOCUMENT_WEBP_QUALITY", 85),
		TargetKB: envInt("DOCUMENT_WEBP_TARGET_KB", 0),
		MinQ:     envFloat("DOCUMENT_WEBP_MIN_Q", 60),
		MaxQ:     envFloat("DOCUMENT_WEBP_MAX_Q", 90),
	}
}

/* =======================================================================
   Decode / resize / encode
======================================================================= */

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	r := bytes.NewReader(all)

	// phone photos of documents carry their rotation in EXIF
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"):
		return imaging.Decode(r, imaging.AutoOrientation(true))
	case strings.Contains(ct, "webp"):
		return webp.Decode(r)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return imaging.Decode(r, imaging.AutoOrientation(true))
	case ".webp":
		return webp.Decode(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
}

func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encodeQ(img image.Image, q float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeToWebP encodes once at Quality, or binary-searches quality in
// [MinQ, MaxQ] for the best result under TargetKB.
func encodeToWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	if opt.TargetKB <= 0 {
		q := opt.Quality
		if q <= 0 {
			q = 85
		}
		return encodeQ(img, q)
	}

	target := opt.TargetKB * 1024
	low, high := opt.MinQ, opt.MaxQ
	if low <= 0 {
		low = 60
	}
	if high <= 0 || high < low {
		high = 90
	}

	var best []byte
	for i := 0; i < 7; i++ {
		q := (low + high) / 2
		data, err := encodeQ(img, q)
		if err != nil {
			return nil, err
		}
		if len(data) <= target {
			best = data
			low = q
		} else {
			high = q
		}
	}
	if best == nil {
		return encodeQ(img, opt.MinQ)
	}
	return best, nil
}

// ConvertToWebP decodes a jpg/png/webp upload, downsizes it if needed and
// re-encodes it as WebP.
func ConvertToWebP(data []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(data, filename)
	if err != nil {
		return nil, err
	}
	return encodeToWebP(downscaleIfNeeded(img, opt.MaxW, opt.MaxH), opt)
}
