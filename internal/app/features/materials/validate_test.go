package materials

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/domain/models"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantField string
	}{
		{"missing title", Input{Type: "note", Content: "x", Priority: "low"}, "title"},
		{"blank title", Input{Title: "   ", Type: "note", Content: "x", Priority: "low"}, "title"},
		{"missing type", Input{Title: "T", Content: "x", Priority: "low"}, "type"},
		{"missing priority", Input{Title: "T", Type: "note", Content: "x"}, "priority"},
		{"unknown priority", Input{Title: "T", Type: "note", Content: "x", Priority: "urgent"}, "priority"},
		{"priority checked before type", Input{Title: "T", Type: "video", Priority: "urgent"}, "priority"},
		{"note without content", Input{Title: "T", Type: "note", Priority: "low"}, "content"},
		{"note with only markup", Input{Title: "T", Type: "note", Content: "<p> </p>", Priority: "low"}, "content"},
		{"pdf without fileId", Input{Title: "T", Type: "pdf", Priority: "low"}, "fileId"},
		{"pdf with someone else's file", Input{Title: "T", Type: "pdf", FileID: "u2/x.pdf", Priority: "low"}, "fileId"},
		{"link without url", Input{Title: "T", Type: "link", Priority: "low"}, "url"},
		{"link with malformed url", Input{Title: "T", Type: "link", URL: "not a url", Priority: "low"}, "url"},
		{"link with non-http url", Input{Title: "T", Type: "link", URL: "ftp://example.com/x", Priority: "low"}, "url"},
		{"unknown type", Input{Title: "T", Type: "video", Priority: "low"}, "type"},
		{"too many distinct tags", Input{Title: "T", Type: "note", Content: "x", Priority: "low", Tags: manyTags(21, true)}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.in, "u1", fixedNow)
			if !errors.Is(err, apierr.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			var ae *apierr.Error
			if errors.As(err, &ae) && ae.Field != tt.wantField {
				t.Errorf("field = %q, want %q (%s)", ae.Field, tt.wantField, ae.Message)
			}
		})
	}
}

func TestValidate_BuildsTypedBody(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want models.MaterialBody
	}{
		{"note", Input{Title: "Lecture 1", Type: "Note", Content: "<p>Cells</p><script>x()</script>", Priority: "HIGH"}, models.NoteBody{Content: "<p>Cells</p>"}},
		{"pdf", Input{Title: "Syllabus", Type: "pdf", FileID: "u1/abc.pdf", FileSize: 2048, Priority: "low"}, models.PDFBody{FileID: "u1/abc.pdf", FileSize: 2048}},
		{"link", Input{Title: "Docs", Type: "link", URL: " https://go.dev/doc ", Priority: "medium"}, models.LinkBody{URL: "https://go.dev/doc"}},
		{"link ignores stray content", Input{Title: "Docs", Type: "link", URL: "https://go.dev", Content: "ignored", FileID: "u1/x", Priority: "low"}, models.LinkBody{URL: "https://go.dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Validate(tt.in, "u1", fixedNow)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !reflect.DeepEqual(m.Body, tt.want) {
				t.Errorf("Body = %#v, want %#v", m.Body, tt.want)
			}
			if m.OwnerID != "u1" || !m.CreatedAt.Equal(fixedNow) || !m.UpdatedAt.Equal(fixedNow) {
				t.Errorf("header = %+v", m)
			}
			if !models.IsValidPriority(m.Priority) {
				t.Errorf("priority not normalized: %q", m.Priority)
			}
		})
	}
}

func TestValidate_TagNormalization(t *testing.T) {
	var in Input
	if err := json.Unmarshal([]byte(`{"title":"T","type":"note","content":"c","priority":"low","tags":"a, b, ,a"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m, err := Validate(in, "u1", fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(m.Tags, want) {
		t.Errorf("tags from string = %v, want %v", m.Tags, want)
	}

	in.Tags = TagList{" exam", "exam ", "", "week 3"}
	m, _ = Validate(in, "u1", fixedNow)
	if want := []string{"exam", "week 3"}; !reflect.DeepEqual(m.Tags, want) {
		t.Errorf("tags from list = %v, want %v", m.Tags, want)
	}

	in.Tags = nil
	m, _ = Validate(in, "u1", fixedNow)
	if m.Tags == nil || len(m.Tags) != 0 {
		t.Errorf("absent tags = %#v, want empty non-nil", m.Tags)
	}
}

func manyTags(n int, distinct bool) TagList {
	out := make(TagList, n)
	for i := range out {
		out[i] = "a"
		if distinct {
			out[i] = fmt.Sprintf("tag %d", i)
		}
	}
	return out
}

func TestValidate_TagLimitCountsDistinctTags(t *testing.T) {
	in := Input{Title: "T", Type: "note", Content: "x", Priority: "low", Tags: manyTags(21, false)}
	m, err := Validate(in, "u1", fixedNow)
	if err != nil {
		t.Fatalf("repeated tag rejected: %v", err)
	}
	if want := []string{"a"}; !reflect.DeepEqual(m.Tags, want) {
		t.Errorf("tags = %v, want %v", m.Tags, want)
	}

	in.Tags = manyTags(20, true)
	if _, err := Validate(in, "u1", fixedNow); err != nil {
		t.Errorf("20 distinct tags rejected: %v", err)
	}
}

func TestTagList_RejectsOtherShapes(t *testing.T) {
	var in Input
	if err := json.Unmarshal([]byte(`{"tags":42}`), &in); err == nil {
		t.Error("expected error for numeric tags")
	}
}
