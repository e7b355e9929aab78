package helper

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"golang.org/x/text/unicode/norm"
)

/* =======================================================================
   OSS Service
======================================================================= */

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string // optional, e.g. "fce"
	PublicBase string // ALI_OSS_PUBLIC_BASE, e.g. a CDN host
}

func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := getEnv("ALI_OSS_ENDPOINT")
	ak := getEnv("ALI_OSS_ACCESS_KEY")
	sk := getEnv("ALI_OSS_SECRET_KEY")
	sts := getEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := getEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var opts []oss.ClientOption
	if sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	if loc, err := client.GetBucketLocation(bucketName); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 {
			log.Printf("[OSS] warn: skip location check, access denied (bucket=%s)", bucketName)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[OSS] bucket %s location: %s", bucketName, loc)
	}

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
		PublicBase: getEnv("ALI_OSS_PUBLIC_BASE"),
	}, nil
}

// Put uploads r under key. Documents are private-by-URL and never change, so
// they are cached forever.
func (s *OSSService) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.Bucket.PutObject(key, r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
}

func (s *OSSService) Delete(ctx context.Context, key string) error {
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSService) PublicURL(key string) string {
	return PublicURL(s.PublicBase, s.BucketName, s.Endpoint, key)
}

// ObjectKey prefixes key with the service prefix.
func (s *OSSService) ObjectKey(key string) string {
	if s.Prefix == "" {
		return key
	}
	return s.Prefix + "/" + strings.TrimLeft(key, "/")
}

/* =======================================================================
   Key & URL utils
======================================================================= */

// PublicURL prefers base (CDN); otherwise https://<bucket>.<endpoint>/<key>.
func PublicURL(base, bucket, endpoint, key string) string {
	if key == "" {
		return ""
	}
	if base = strings.TrimSpace(base); base != "" {
		return strings.TrimRight(base, "/") + "/" + key
	}
	if endpoint == "" || bucket == "" {
		return ""
	}
	end := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", bucket, end, key)
}

// BuildObjectKey returns "<dir>/<slug>_<yyyymmdd_hhmmss>_<rand6><ext>".
func BuildObjectKey(dir, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	key := fmt.Sprintf("%s_%s_%s%s", Slugify(base), now.UTC().Format("20060102_150405"), randHex(3), ext)
	if dir = strings.Trim(dir, "/"); dir != "" {
		key = dir + "/" + key
	}
	return key
}

// Slugify folds accents (é → e) and keeps [a-z0-9-].
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r) || r == '—' || r == '–':
			b.WriteByte('-')
		}
	}
	s = strings.Trim(reHyphens.ReplaceAllString(b.String(), "-"), "-")
	if s == "" {
		return "file"
	}
	return s
}

var reHyphens = regexp.MustCompile(`-{2,}`)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// DetectContentType sniffs the first 512 bytes, trusting the extension only
// when sniffing is inconclusive.
func DetectContentType(data []byte, filename string) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	if ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			ct = byExt
		}
	}
	return ct
}

func init() {
	_ = mime.AddExtensionType(".webp", "image/webp")
}
