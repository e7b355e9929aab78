package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fcehub_backend/internals/constants"
	"fcehub_backend/internals/features/applications/lifecycle"
	"fcehub_backend/internals/features/applications/model"
	"fcehub_backend/internals/features/applications/repository"
	helperOSS "fcehub_backend/internals/helpers/oss"
)

var (
	ErrUnsupportedDocument = errors.New("only PDF, PNG, JPEG or WebP files are accepted")
	ErrInvalidDocumentKind = errors.New("document kind must be diploma, transcript, identity or other")
)

// BlobStore is where uploaded documents live. *helperOSS.OSSService satisfies it.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	ObjectKey(key string) string
}

type DocumentService struct {
	repo  *repository.ApplicationRepository
	blobs BlobStore
	webp  helperOSS.WebPOptions
	now   func() time.Time
}

func NewDocumentService(repo *repository.ApplicationRepository, blobs BlobStore, webp helperOSS.WebPOptions) *DocumentService {
	return &DocumentService{repo: repo, blobs: blobs, webp: webp, now: time.Now}
}

// Upload stores one file for a draft application. Images are re-encoded as
// WebP; PDFs are stored as-is after a content sniff.
func (s *DocumentService) Upload(ctx context.Context, appID uuid.UUID, kind model.DocumentKind, filename string, data []byte) (*model.ApplicationDocumentModel, error) {
	if !kind.Valid() {
		return nil, ErrInvalidDocumentKind
	}
	app, err := s.repo.Get(ctx, appID)
	if err != nil {
		return nil, storeErr("load application", err)
	}
	if err := lifecycle.CanEditDraft(app).Error(); err != nil {
		return nil, err
	}

	body, contentType, storedName, err := s.prepare(filename, data)
	if err != nil {
		return nil, err
	}

	dir := fmt.Sprintf("applications/%s/%s", appID, kind)
	key := s.blobs.ObjectKey(helperOSS.BuildObjectKey(dir, storedName, s.now()))
	if err := s.blobs.Put(ctx, key, bytes.NewReader(body), contentType); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	doc := &model.ApplicationDocumentModel{
		DocumentApplicationID: appID,
		DocumentKind:          kind,
		DocumentOriginalName:  filepath.Base(filename),
		DocumentObjectKey:     key,
		DocumentURL:           s.blobs.PublicURL(key),
		DocumentContentType:   contentType,
		DocumentSizeBytes:     int64(len(body)),
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			log.Printf("[DOCUMENT] orphan object %s: %v", key, derr)
		}
		return nil, storeErr("save document", err)
	}
	log.Printf("[DOCUMENT] application=%s kind=%s key=%s size=%d", appID, kind, key, doc.DocumentSizeBytes)
	return doc, nil
}

func (s *DocumentService) prepare(filename string, data []byte) ([]byte, string, string, error) {
	switch constants.DetectDocumentKind(filename) {
	case constants.DocumentKindImage:
		out, err := helperOSS.ConvertToWebP(data, filename, s.webp)
		if err != nil {
			return nil, "", "", ErrUnsupportedDocument
		}
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)) + ".webp"
		return out, "image/webp", name, nil
	case constants.DocumentKindPDF:
		if http.DetectContentType(data) != "application/pdf" {
			return nil, "", "", ErrUnsupportedDocument
		}
		return data, "application/pdf", filepath.Base(filename), nil
	}
	return nil, "", "", ErrUnsupportedDocument
}
