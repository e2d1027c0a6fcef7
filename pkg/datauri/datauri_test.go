package datauri

import (
	"errors"
	"testing"
)

func TestFormatAndParse(t *testing.T) {
	uri := Format("image/png", []byte("png-bytes"))
	if uri != "data:image/png;base64,cG5nLWJ5dGVz" {
		t.Fatalf("Format() = %q", uri)
	}
	mime, data, err := Parse(uri)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if mime != "image/png" || string(data) != "png-bytes" {
		t.Fatalf("Parse() = %q, %q", mime, data)
	}
	if got := Payload(uri); got != "cG5nLWJ5dGVz" {
		t.Fatalf("Payload() = %q", got)
	}
	if got := MIMEType(uri); got != "image/png" {
		t.Fatalf("MIMEType() = %q", got)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "image/png;base64,AAAA", "data:image/png;base64", "data:text/plain,hello", "data:image/png;base64,@@@"} {
		if _, _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpeg"},
		{"image/webp", "webp"},
		{"image/", "png"},
		{"image", "png"},
		{"", "png"},
		{"image/webp; charset=binary", "webp"},
	}
	for _, tc := range tests {
		if got := Extension(tc.mime); got != tc.want {
			t.Fatalf("Extension(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
	if got := Filename("ai-generated-shot", "image/jpeg"); got != "ai-generated-shot.jpeg" {
		t.Fatalf("Filename() = %q", got)
	}
}
