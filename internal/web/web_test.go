package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestImageSrc(t *testing.T) {
	if got := imageSrc("data:image/png;base64,AAAA"); string(got) != "data:image/png;base64,AAAA" {
		t.Fatalf("imageSrc kept = %q", got)
	}
	for _, bad := range []string{"javascript:alert(1)", "data:text/html;base64,AAAA", "https://example.com/a.png"} {
		if got := imageSrc(bad); got != "" {
			t.Fatalf("imageSrc(%q) = %q, want empty", bad, got)
		}
	}
}

func TestRendererParsesEmbeddedTemplates(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "missing.html", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
	if buf.Len() != 0 {
		t.Fatalf("failed render wrote %d bytes", buf.Len())
	}
}

func TestStaticServesScript(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "clipboard") {
		t.Fatalf("unexpected script body")
	}
}
