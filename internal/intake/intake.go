// Package intake turns uploaded bytes into a validated image ready to be forwarded to
// the inference service.
package intake

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmpty    = errors.New("no image data received")
	ErrNotImage = errors.New("Please upload an image file.")
	ErrTooLarge = errors.New("image exceeds the upload size limit")
)

// Image is an uploaded image with its detected MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data: URI suitable for an <img> src.
func (i Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

func (i Image) Size() int { return len(i.Data) }

// Read consumes r up to limit bytes. declaredType is the client-supplied content type
// and is only consulted when sniffing cannot identify the format.
func Read(r io.Reader, declaredType string, limit int64) (Image, error) {
	if r == nil {
		return Image{}, ErrEmpty
	}
	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return Image{}, fmt.Errorf("read upload: %w", err)
	}
	return fromBytes(data, declaredType, limit)
}

// FromBase64 accepts either a bare base64 payload or a full data URI.
func FromBase64(payload, declaredType string, limit int64) (Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Image{}, ErrEmpty
	}
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok {
			return Image{}, fmt.Errorf("malformed data URI")
		}
		if declaredType == "" {
			declaredType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		payload = body
	}
	if limit > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > limit+2 {
		return Image{}, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("decode base64 image: %w", err)
		}
	}
	return fromBytes(data, declaredType, limit)
}

func fromBytes(data []byte, declaredType string, limit int64) (Image, error) {
	if len(data) == 0 {
		return Image{}, ErrEmpty
	}
	if limit > 0 && int64(len(data)) > limit {
		return Image{}, ErrTooLarge
	}
	mime := DetectType(data, declaredType)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, ErrNotImage
	}
	return Image{MIMEType: mime, Data: bytes.Clone(data)}, nil
}

// DetectType sniffs data and falls back to declared when the sniffer only finds a
// generic type.
func DetectType(data []byte, declared string) string {
	detected := mimetype.Detect(data)
	mime, _, _ := strings.Cut(detected.String(), ";")
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	declared, _, _ = strings.Cut(declared, ";")
	if mime == "application/octet-stream" && strings.HasPrefix(declared, "image/") {
		return declared
	}
	return mime
}
