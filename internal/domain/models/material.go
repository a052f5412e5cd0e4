// internal/domain/models/material.go
package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Material is a study resource owned by a single user.
//
// The fields every material shares live on the struct; the type-specific
// payload lives in Body, which is exactly one of NoteBody, PDFBody or LinkBody.
// Type is derived from Body, so a material can never carry a note's content and
// a link's URL at the same time.
type Material struct {
	ID       primitive.ObjectID
	OwnerID  string
	Title    string
	Body     MaterialBody
	Tags     []string
	Priority string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaterialBody is the type-specific part of a Material.
type MaterialBody interface {
	materialType() string
}

// NoteBody is the payload of a "note" material.
type NoteBody struct {
	Content string
}

// PDFBody is the payload of a "pdf" material. FileID references a blob in
// object storage; FileSize is an optional cache of its byte count.
type PDFBody struct {
	FileID   string
	FileSize int64
}

// LinkBody is the payload of a "link" material.
type LinkBody struct {
	URL string
}

func (NoteBody) materialType() string { return MaterialTypeNote }
func (PDFBody) materialType() string  { return MaterialTypePDF }
func (LinkBody) materialType() string { return MaterialTypeLink }

// Type returns the material type identifier ("note", "pdf" or "link"), or ""
// when Body is unset.
func (m Material) Type() string {
	if m.Body == nil {
		return ""
	}
	return m.Body.materialType()
}

// Content returns the note text, or "" for other types.
func (m Material) Content() string {
	if b, ok := m.Body.(NoteBody); ok {
		return b.Content
	}
	return ""
}

// URL returns the link target, or "" for other types.
func (m Material) URL() string {
	if b, ok := m.Body.(LinkBody); ok {
		return b.URL
	}
	return ""
}

// FileID returns the blob reference, or "" for other types.
func (m Material) FileID() string {
	if b, ok := m.Body.(PDFBody); ok {
		return b.FileID
	}
	return ""
}

// FileSize returns the cached blob size for pdf materials.
func (m Material) FileSize() int64 {
	if b, ok := m.Body.(PDFBody); ok {
		return b.FileSize
	}
	return 0
}

// HasFile reports whether this material references a stored blob.
func (m Material) HasFile() bool {
	return m.FileID() != ""
}

// HasTag reports whether tag is a member of the material's tag set.
func (m Material) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// materialJSON is the wire shape of a Material.
type materialJSON struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	URL       string    `json:"url,omitempty"`
	FileID    string    `json:"fileId,omitempty"`
	FileSize  int64     `json:"fileSize,omitempty"`
	Tags      []string  `json:"tags"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON flattens Body into content/url/fileId fields.
func (m Material) MarshalJSON() ([]byte, error) {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(materialJSON{
		ID:        m.ID.Hex(),
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Type:      m.Type(),
		Content:   m.Content(),
		URL:       m.URL(),
		FileID:    m.FileID(),
		FileSize:  m.FileSize(),
		Tags:      tags,
		Priority:  m.Priority,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	})
}
