package storage

import (
	"strings"
	"testing"

	"leadboard_backend/platform/apperr"
)

func TestValidateContentType(t *testing.T) {
	for _, ct := range []string{"image/png", "IMAGE/JPEG", "image/webp; charset=binary"} {
		if err := validateContentType(ct); err != nil {
			t.Fatalf("expected %q to be accepted: %v", ct, err)
		}
	}
	for _, ct := range []string{"application/pdf", "text/html", ""} {
		if err := validateContentType(ct); !apperr.Is(err, apperr.KindInvalidFileType) {
			t.Fatalf("expected %q to be rejected as invalid file type, got %v", ct, err)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := validateFileSize(10, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateFileSize(0, 100); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
	if err := validateFileSize(101, 100); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for oversized file, got %v", err)
	}
}

func TestUniqueNameKeepsExtension(t *testing.T) {
	a, b := uniqueName("Before Shot.PNG"), uniqueName("Before Shot.PNG")
	if a == b {
		t.Fatalf("expected unique keys, got %q twice", a)
	}
	if !strings.HasSuffix(a, ".png") || strings.Contains(a, " ") {
		t.Fatalf("unexpected key %q", a)
	}
}

func TestPublicURLRoundTrip(t *testing.T) {
	url := publicURL("https://cdn.example.com", "evidence", "abc.png")
	if url != "https://cdn.example.com/evidence/abc.png" {
		t.Fatalf("unexpected url %q", url)
	}
	key, ok := keyFromPublicURL("https://cdn.example.com", "evidence", url)
	if !ok || key != "abc.png" {
		t.Fatalf("unexpected key %q ok=%v", key, ok)
	}
	if _, ok := keyFromPublicURL("https://cdn.example.com", "evidence", "https://elsewhere/x.png"); ok {
		t.Fatalf("expected foreign url to be rejected")
	}
}
