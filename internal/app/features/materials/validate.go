// internal/app/features/materials/validate.go
package materials

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/app/system/blobstore"
	"github.com/dalemusser/studypal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studypal/internal/app/system/inputval"
	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/domain/models"
)

// maxTags caps distinct tags per material, counted after normalization.
const maxTags = 20

// Input is the create payload as sent by the client.
type Input struct {
	Title    string  `json:"title" validate:"notblank,max=200" label:"Title"`
	Type     string  `json:"type" validate:"notblank" label:"Type"`
	Content  string  `json:"content,omitempty"`
	URL      string  `json:"url,omitempty"`
	FileID   string  `json:"fileId,omitempty"`
	FileSize int64   `json:"fileSize,omitempty"`
	Tags     TagList `json:"tags,omitempty"`
	Priority string  `json:"priority" validate:"notblank,priority" label:"Priority"`
}

// TagList accepts either a JSON array of strings or a single comma-separated
// string ("exam, week 3").
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = normalize.TagList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return errors.New("tags must be a string or a list of strings")
	}
	*t = list
	return nil
}

// Validate turns in into a Material owned by ownerID, or returns a
// validation error naming the first offending field.
//
// Checks run in a fixed order: title, type and priority are present and the
// priority is known; then the type-specific field; then tags are normalized
// and counted. Duplicate detection and the pdf blob lookup need the store and
// happen in Service.Create.
func Validate(in Input, ownerID string, now time.Time) (models.Material, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = normalize.Lower(in.Type)
	in.Priority = normalize.Lower(in.Priority)

	if res := inputval.Validate(in); res.HasErrors() {
		return models.Material{}, apierr.Validation(res.FirstField(), res.First())
	}

	body, err := bodyFor(in, ownerID)
	if err != nil {
		return models.Material{}, err
	}

	tags := normalize.Tags(in.Tags)
	if len(tags) > maxTags {
		return models.Material{}, apierr.Validation("tags", "Tags must contain at most 20 distinct tags.")
	}

	return models.Material{
		OwnerID:   ownerID,
		Title:     in.Title,
		Body:      body,
		Tags:      tags,
		Priority:  in.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func bodyFor(in Input, ownerID string) (models.MaterialBody, error) {
	switch in.Type {
	case models.MaterialTypeNote:
		content := htmlsanitize.Sanitize(strings.TrimSpace(in.Content))
		if strings.TrimSpace(htmlsanitize.StripTags(content)) == "" {
			return nil, apierr.Validation("content", "Content is required for notes.")
		}
		return models.NoteBody{Content: content}, nil

	case models.MaterialTypePDF:
		fileID := strings.TrimSpace(in.FileID)
		if fileID == "" {
			return nil, apierr.Validation("fileId", "A file is required for PDFs.")
		}
		if !blobstore.OwnedBy(fileID, ownerID) {
			return nil, apierr.Validation("fileId", "File reference is invalid.")
		}
		size := in.FileSize
		if size < 0 {
			size = 0
		}
		return models.PDFBody{FileID: fileID, FileSize: size}, nil

	case models.MaterialTypeLink:
		u := strings.TrimSpace(in.URL)
		if u == "" {
			return nil, apierr.Validation("url", "URL is required for links.")
		}
		if !inputval.IsValidHTTPURL(u) {
			return nil, apierr.Validation("url", "URL must be a valid absolute URL (e.g., https://example.com).")
		}
		return models.LinkBody{URL: u}, nil

	default:
		return nil, apierr.Validation("type", "Type must be one of: note, pdf, link.")
	}
}
