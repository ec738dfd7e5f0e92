// ABOUTME: Image input for the enrichment adapter
// ABOUTME: Accepts only JPEG and PNG, checked against both the declared and the sniffed type
package enrichment

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported image content type")
	ErrEmptyImage             = errors.New("image is empty")
)

// Image is an uploaded file carrying details about the client or a conversation.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// normalizeContentType maps accepted declared types onto their canonical form.
// Browsers report image/jpg for some JPEG uploads.
func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	}
	return ""
}

// ValidateImage rejects anything that is not a non-empty JPEG or PNG.
func ValidateImage(img *Image) error {
	if img == nil || len(img.Data) == 0 {
		return ErrEmptyImage
	}

	declared := normalizeContentType(img.ContentType)
	if declared == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedContentType, img.ContentType)
	}

	sniffed := http.DetectContentType(img.Data)
	if sniffed != declared {
		return fmt.Errorf("%w: declared %s but content is %s", ErrUnsupportedContentType, declared, sniffed)
	}

	return nil
}

// MIMEType returns the canonical content type of a validated image.
func (img *Image) MIMEType() string {
	return normalizeContentType(img.ContentType)
}

// LoadImage reads an image from disk, deriving its declared type from the extension.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var contentType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	default:
		contentType = http.DetectContentType(data)
	}

	img := &Image{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}
	if err := ValidateImage(img); err != nil {
		return nil, err
	}
	return img, nil
}
