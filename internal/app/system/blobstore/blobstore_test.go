package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNewKey(t *testing.T) {
	k := NewKey("user_1", "Lecture 3.PDF")
	if !strings.HasPrefix(k, "user_1/") || !strings.HasSuffix(k, ".pdf") {
		t.Errorf("NewKey = %q", k)
	}
	if NewKey("user_1", "a.pdf") == NewKey("user_1", "a.pdf") {
		t.Error("keys should be unique")
	}
}

func TestNewGroupKey(t *testing.T) {
	k := NewGroupKey("user_1", "64b000000000000000000001", "Slides.PDF")
	if !strings.HasPrefix(k, OwnerPrefix("user_1")+"groups/64b000000000000000000001/") || !strings.HasSuffix(k, ".pdf") {
		t.Errorf("NewGroupKey = %q", k)
	}
}

func TestMemory_Stat(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Put(ctx, "u/a.pdf", strings.NewReader("hello"), 5, "application/pdf")

	info, err := m.Stat(ctx, "u/a.pdf")
	if err != nil || info.Size != 5 || info.ContentType != "application/pdf" {
		t.Errorf("Stat = %+v, %v", info, err)
	}
	if _, err := m.Stat(ctx, "u/missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Stat(missing) err = %v, want ErrNotFound", err)
	}
}

func TestOwnedBy(t *testing.T) {
	tests := []struct {
		key, owner string
		want       bool
	}{
		{"user_1/abc.pdf", "user_1", true},
		{"user_2/abc.pdf", "user_1", false},
		{"user_1/nested/abc.pdf", "user_1", false},
		{NewGroupKey("user_1", "g1", "notes.pdf"), "user_1", false},
		{"user_10/abc.pdf", "user_1", false},
		{"abc.pdf", "", false},
	}
	for _, tt := range tests {
		if got := OwnedBy(tt.key, tt.owner); got != tt.want {
			t.Errorf("OwnedBy(%q, %q) = %v, want %v", tt.key, tt.owner, got, tt.want)
		}
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Put(ctx, "u/a.pdf", strings.NewReader("hello"), 5, "application/pdf"); err != nil {
		t.Fatal(err)
	}
	_ = m.Put(ctx, "u/b.pdf", strings.NewReader("xyz"), 3, "application/pdf")
	_ = m.Put(ctx, "v/c.pdf", strings.NewReader("1234567"), 7, "application/pdf")

	rc, info, err := m.Get(ctx, "u/a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "hello" || info.Size != 5 || info.ContentType != "application/pdf" {
		t.Errorf("Get = %q %+v", body, info)
	}

	if used, _ := m.Usage(ctx, "u/"); used != 8 {
		t.Errorf("Usage(u/) = %d, want 8", used)
	}

	if err := m.Delete(ctx, "u/a.pdf"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Get(ctx, "u/a.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
}
