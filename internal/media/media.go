// Package media handles the inline image attachments of a quotation
// (logos and stamps), stored as base64 data URLs.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"
)

// ErrUnsupportedImage is returned for anything other than PNG, JPEG or GIF.
var ErrUnsupportedImage = errors.New("unsupported image format, use PNG, JPG or GIF")

var allowed = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/gif":  "gif",
}

// Attachment is a decoded data URL.
type Attachment struct {
	MIME string
	// Format is the canonical short name: png, jpeg or gif.
	Format string
	Data   []byte
}

// Extension returns the file extension for the attachment, with the dot.
func (a Attachment) Extension() string {
	if a.Format == "jpeg" {
		return ".jpg"
	}
	return "." + a.Format
}

// Parse decodes a data URL and checks that both the declared MIME type and
// the actual bytes are an accepted image format. A bare base64 payload
// without the "data:" prefix is accepted and typed from its content.
func Parse(dataURL string) (Attachment, error) {
	declared, payload := "", dataURL
	if strings.HasPrefix(dataURL, "data:") {
		header, body, ok := strings.Cut(dataURL, ",")
		if !ok {
			return Attachment{}, fmt.Errorf("malformed data URL: %w", ErrUnsupportedImage)
		}
		meta := strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(meta, ";base64") {
			return Attachment{}, fmt.Errorf("data URL is not base64 encoded: %w", ErrUnsupportedImage)
		}
		declared = strings.ToLower(strings.TrimSuffix(meta, ";base64"))
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to decode image data: %w", ErrUnsupportedImage)
	}

	sniffed := http.DetectContentType(data)
	format, ok := allowed[sniffed]
	if !ok {
		return Attachment{}, fmt.Errorf("content type %q: %w", sniffed, ErrUnsupportedImage)
	}
	if declared != "" {
		want, ok := allowed[declared]
		if !ok {
			return Attachment{}, fmt.Errorf("declared type %q: %w", declared, ErrUnsupportedImage)
		}
		if want != format {
			return Attachment{}, fmt.Errorf("declared %q but content is %q: %w", declared, sniffed, ErrUnsupportedImage)
		}
	}

	return Attachment{MIME: sniffed, Format: format, Data: data}, nil
}

// Validate reports whether dataURL is an accepted image.
func Validate(dataURL string) error {
	_, err := Parse(dataURL)
	return err
}

// Decode parses dataURL and decodes the image it carries.
func Decode(dataURL string) (image.Image, error) {
	att, err := Parse(dataURL)
	if err != nil {
		return nil, err
	}
	return att.Image()
}

// Image decodes the attachment bytes.
func (a Attachment) Image() (image.Image, error) {
	r := bytes.NewReader(a.Data)
	var (
		img image.Image
		err error
	)
	switch a.Format {
	case "png":
		img, err = png.Decode(r)
	case "jpeg":
		img, err = jpeg.Decode(r)
	case "gif":
		img, err = gif.Decode(r)
	default:
		return nil, ErrUnsupportedImage
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", a.Format, err)
	}
	return img, nil
}

// EncodeDataURL wraps raw image bytes of the given MIME type in a data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
