// internal/domain/models/groupfile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupFile is a file shared into a study group. FileID references the blob
// in object storage.
type GroupFile struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"groupId"`
	UploaderID string             `bson:"uploader_id" json:"uploaderId"`
	Name       string             `bson:"name" json:"name"`
	FileID     string             `bson:"file_id" json:"fileId"`
	FileSize   int64              `bson:"file_size" json:"fileSize"`
	MimeType   string             `bson:"mime_type,omitempty" json:"mimeType,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
