package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentKind string

const (
	DocumentDiploma    DocumentKind = "diploma"
	DocumentTranscript DocumentKind = "transcript"
	DocumentIdentity   DocumentKind = "identity"
	DocumentOther      DocumentKind = "other"
)

func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentDiploma, DocumentTranscript, DocumentIdentity, DocumentOther:
		return true
	}
	return false
}

type ApplicationDocumentModel struct {
	DocumentID            uuid.UUID    `gorm:"column:document_id;type:uuid;primaryKey" json:"document_id"`
	DocumentApplicationID uuid.UUID    `gorm:"column:document_application_id;type:uuid;not null;index" json:"document_application_id"`
	DocumentKind          DocumentKind `gorm:"column:document_kind;type:varchar(20);not null" json:"document_kind"`

	DocumentOriginalName string `gorm:"column:document_original_name;type:varchar(255);not null" json:"document_original_name"`
	DocumentObjectKey    string `gorm:"column:document_object_key;type:varchar(500);not null" json:"document_object_key"`
	DocumentURL          string `gorm:"column:document_url;type:text;not null" json:"document_url"`
	DocumentContentType  string `gorm:"column:document_content_type;type:varchar(100);not null" json:"document_content_type"`
	DocumentSizeBytes    int64  `gorm:"column:document_size_bytes;not null" json:"document_size_bytes"`

	DocumentCreatedAt time.Time `gorm:"column:document_created_at;autoCreateTime" json:"document_created_at"`
}

func (ApplicationDocumentModel) TableName() string { return "application_documents" }

func (d *ApplicationDocumentModel) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == uuid.Nil {
		d.DocumentID = uuid.New()
	}
	return nil
}
