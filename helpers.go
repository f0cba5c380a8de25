package blogadmin

import (
	"net/url"
	"path"
	"strings"
	"time"
)

// timestampLayout is the storage format for created_at columns.
const timestampLayout = "2006-01-02 15:04:05"

func nowTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// FormatDate re-renders a stored created_at timestamp in the given layout.
// Unparseable input is returned unchanged.
func FormatDate(createdAt, layout string) string {
	t, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format(layout)
}

// StripTags removes HTML tags from s, keeping the text between them.
func StripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Truncate shortens s to at most n runes, appending "..." when something
// was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// ShortDescription derives the feed preview text: the first n runes of the
// tag-stripped content with an ellipsis marker always appended.
func ShortDescription(content string, n int) string {
	runes := []rune(StripTags(content))
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// uploadURL resolves a stored filename to its absolute public URL.
func uploadURL(base, urlPath, name string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + path.Join(urlPath, name)
	}
	u.Path = path.Join(u.Path, urlPath, name)
	return u.String()
}
