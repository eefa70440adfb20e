package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Study visa France</w:t></w:r></w:p>
<w:p><w:r><w:t>Bring bank statements</w:t></w:r></w:p>
</w:body></w:document>`

func TestFromBytesDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": documentXML})

	res, err := FromBytes(context.Background(), data, "guide.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != KindDOCX || !strings.Contains(res.Text, "Study visa France\n") || !strings.Contains(res.Text, "Bring bank statements") {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Unknown extension falls back to content sniffing.
	sniffed, err := FromBytes(context.Background(), data, "guide.bin")
	if err != nil || sniffed.Kind != KindDOCX {
		t.Fatalf("expected sniffed docx, got %+v %v", sniffed, err)
	}
}

func TestFromBytesHTMLCollectsMeta(t *testing.T) {
	page := `<html><head>
<meta name="origin_country" content="CM">
<meta name="Language" content=" FR ">
<style>body{color:red}</style>
</head><body><h1>Visa etudiant</h1>
<script>var x = 1;</script>
<p>France   campus   inscription</p></body></html>`

	res, err := FromBytes(context.Background(), []byte(page), "study.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Meta["origin_country"] != "CM" || res.Meta["language"] != "FR" {
		t.Fatalf("unexpected meta: %v", res.Meta)
	}
	if strings.Contains(res.Text, "var x") || strings.Contains(res.Text, "color") {
		t.Fatalf("script or style leaked into text: %q", res.Text)
	}
	if !strings.Contains(res.Text, "France campus inscription") {
		t.Fatalf("expected collapsed paragraph, got %q", res.Text)
	}
}

func TestFromBytesRejectsUnsupported(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})
	_, err := FromBytes(context.Background(), data, "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if Supported("image.png") || !Supported("guide.MD") {
		t.Fatalf("unexpected Supported results")
	}
}

func TestFromBytesBrokenPDF(t *testing.T) {
	if _, err := FromBytes(context.Background(), []byte("%PDF-1.4 broken"), "guide.pdf"); err == nil {
		t.Fatalf("expected error for truncated pdf")
	}
}

func TestFromBytesMarkdownPassthrough(t *testing.T) {
	res, err := FromBytes(context.Background(), []byte("---\nlanguage: FR\n---\nBonjour"), "fr.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "---\nlanguage: FR\n---\nBonjour" {
		t.Fatalf("text must pass through untouched, got %q", res.Text)
	}
}
