package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestZipKeepsOrderAndContent(t *testing.T) {
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	out, err := Zip([]Entry{
		{Filename: "ai-generated-shot.png", Data: []byte("png")},
		{Filename: "sources/1-a.jpg", Data: []byte("jpg")},
	}, when)
	if err != nil {
		t.Fatalf("Zip returned error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	if zr.File[0].Name != "ai-generated-shot.png" || zr.File[1].Name != "sources/1-a.jpg" {
		t.Fatalf("unexpected order: %s, %s", zr.File[0].Name, zr.File[1].Name)
	}
	rc, err := zr.File[1].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "jpg" {
		t.Fatalf("content = %q", data)
	}
}

func TestZipIsDeterministic(t *testing.T) {
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []Entry{{Filename: "prompt.txt", Data: []byte("hello")}}
	a, err := Zip(entries, when)
	if err != nil {
		t.Fatalf("Zip returned error: %v", err)
	}
	b, _ := Zip(entries, when)
	if !bytes.Equal(a, b) {
		t.Fatalf("archives differ for identical input")
	}
}

func TestZipEmpty(t *testing.T) {
	out, err := Zip(nil, time.Time{})
	if err != nil {
		t.Fatalf("Zip returned error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil || len(zr.File) != 0 {
		t.Fatalf("expected empty archive, got err=%v", err)
	}
}
