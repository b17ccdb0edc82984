// Package attach turns local files and URLs into task attachments.
package attach

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/taskplan/internal/model"
)

var (
	ErrRead      = errors.New("attach: read document")
	ErrTooLarge  = errors.New("attach: document too large")
	ErrEmptyURL  = errors.New("attach: link url is required")
	ErrBadScheme = errors.New("attach: unsupported url scheme")
)

// MaxDocumentBytes bounds a single attachment; documents live inside the
// persisted snapshot.
const MaxDocumentBytes = 5 << 20

// IsTextFile reports whether a document is kept as plain text rather than a
// data URI.
func IsTextFile(mimeType, name string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md")
}

// ReadDocument loads path into a Document without id or addedAt; the store
// assigns those when the document is attached.
func ReadDocument(path string) (model.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if info.IsDir() {
		return model.Document{}, fmt.Errorf("%w: %s is a directory", ErrRead, path)
	}
	if info.Size() > MaxDocumentBytes {
		return model.Document{}, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %w", ErrRead, err)
	}

	name := filepath.Base(path)
	mimeType := DetectType(name, raw)
	doc := model.Document{
		Name:     name,
		FileName: name,
		Size:     int64(len(raw)),
		Type:     mimeType,
		IsText:   IsTextFile(mimeType, name),
	}
	if doc.IsText {
		doc.FileContent = string(raw)
	} else {
		doc.FileContent = "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
	}
	return doc, nil
}

// DetectType resolves a MIME type from the extension and falls back to
// content sniffing.
func DetectType(name string, content []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(content)
}

// NewLink normalizes a link before it is attached. The title defaults to the
// url.
func NewLink(title, rawURL string) (model.Link, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return model.Link{}, ErrEmptyURL
	}
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "mailto", "file":
		default:
			return model.Link{}, fmt.Errorf("%w: %s", ErrBadScheme, u.Scheme)
		}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = rawURL
	}
	return model.Link{Title: title, URL: rawURL}, nil
}

// Preview builds a local preview from the url alone.
func Preview(rawURL string) model.LinkPreview {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return model.LinkPreview{Error: true}
	}
	domain := strings.TrimPrefix(u.Hostname(), "www.")
	return model.LinkPreview{
		Title:       domain + " Link",
		Description: "Link preview",
		Domain:      domain,
		URL:         rawURL,
	}
}
