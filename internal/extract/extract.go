package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// Kind identifies how a knowledge base file is decoded.
type Kind string

const (
	KindText Kind = "text"
	KindHTML Kind = "html"
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

var ErrUnsupported = errors.New("unsupported document type")

// Result is the decoded text of a document plus any metadata the format
// carries natively (HTML <meta name=...> tags).
type Result struct {
	Kind Kind
	Text string
	Meta map[string]string
}

// Detect maps a file name, falling back to content sniffing, to a Kind.
func Detect(fileName string, data []byte) (Kind, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".md", ".markdown", ".txt":
		return KindText, nil
	case ".html", ".htm":
		return KindHTML, nil
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return KindPDF, nil
	}
	if isDOCX(data) {
		return KindDOCX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, fileName)
}

// Supported reports whether fileName has an extension the loader decodes.
func Supported(fileName string) bool {
	_, err := Detect(fileName, nil)
	return err == nil
}

// FromBytes extracts text from an in-memory payload.
func FromBytes(ctx context.Context, data []byte, fileName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	kind, err := Detect(fileName, data)
	if err != nil {
		return Result{}, err
	}
	res := Result{Kind: kind}
	switch kind {
	case KindText:
		res.Text = strings.ToValidUTF8(string(data), "")
	case KindHTML:
		res.Text, res.Meta, err = extractHTML(data)
	case KindPDF:
		res.Text, err = extractPDF(data)
	case KindDOCX:
		res.Text, err = extractDOCX(data)
	}
	if err != nil {
		return Result{}, fmt.Errorf("extract %s file=%s: %w", kind, fileName, err)
	}
	if !utf8.ValidString(res.Text) {
		res.Text = strings.ToValidUTF8(res.Text, "")
	}
	return res, nil
}

func extractHTML(data []byte) (string, map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	meta := map[string]string{}
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, ok := s.Attr("content")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || !ok {
			return
		}
		meta[name] = strings.TrimSpace(content)
	})
	doc.Find("script, style, noscript").Remove()
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return collapseLines(root.Text()), meta, nil
}

func collapseLines(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if trimmed := strings.Join(strings.Fields(line), " "); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	docFile := findZipEntry(zr, "word/document.xml")
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func isDOCX(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return findZipEntry(zr, "word/document.xml") != nil
}

func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return f
		}
	}
	return nil
}
