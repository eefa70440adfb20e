package kb

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// Passage is one retrievable knowledge base text with its filter parsed at
// load time.
type Passage struct {
	Key    string
	Title  string
	Ref    string
	Body   string
	Filter Filter
}

// ParsePassage splits an optional front-matter header from text and builds
// the passage. Values in native (for example HTML meta tags or admin
// columns) override header values with the same key.
func ParsePassage(key, text string, native map[string]string) Passage {
	meta, body := SplitFrontMatter(text)
	for k, v := range native {
		if v == "" {
			continue
		}
		if meta == nil {
			meta = make(map[string]string, len(native))
		}
		meta[k] = v
	}
	return Passage{
		Key:    key,
		Title:  TitleFromKey(key),
		Ref:    key,
		Body:   body,
		Filter: NewFilter(meta),
	}
}

// SplitFrontMatter returns the header fields and the body. Text that does
// not start with the delimiter, or has no closing delimiter, is returned
// unchanged with no metadata. Otherwise the body is trimmed.
func SplitFrontMatter(text string) (map[string]string, string) {
	if !strings.HasPrefix(text, frontMatterDelim) {
		return nil, text
	}
	parts := strings.SplitN(text, frontMatterDelim, 3)
	if len(parts) != 3 {
		return nil, text
	}
	header, body := parts[1], parts[2]
	meta, ok := parseYAMLHeader(header)
	if !ok {
		meta = parseLineHeader(header)
	}
	return meta, strings.TrimSpace(body)
}

func parseYAMLHeader(header string) (map[string]string, bool) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		return nil, false
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = strings.Trim(strings.TrimSpace(val), ` "`)
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, fmt.Sprint(item))
			}
			out[k] = strings.Join(items, ",")
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, true
}

// parseLineHeader accepts loose "key: value" lines that are not valid YAML.
func parseLineHeader(header string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(header, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), ` "`)
	}
	return out
}

// TitleFromKey turns "guides/cm_to_fr.md" into "Cm To Fr".
func TitleFromKey(key string) string {
	base := path.Base(key)
	stem := strings.TrimSuffix(base, path.Ext(base))
	return titleCase(strings.ReplaceAll(stem, "_", " "))
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
