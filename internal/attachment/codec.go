// Package attachment converts raw media into transport-ready attachments
// and back.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"dzine-mind/internal/domain"
)

// MaxSize bounds how many bytes Read will accept from a source.
const MaxSize = 20 << 20

var (
	// ErrEmpty is returned when there is no media to encode.
	ErrEmpty = errors.New("attachment: empty payload")
	// ErrRead is returned when the media source cannot be read.
	ErrRead = errors.New("attachment: read failed")
	// ErrTooLarge is returned when a source exceeds MaxSize.
	ErrTooLarge = errors.New("attachment: payload too large")
)

// Encode wraps raw bytes into an attachment using standard base64.
func Encode(mimeType string, raw []byte) (domain.Attachment, error) {
	if len(raw) == 0 {
		return domain.Attachment{}, ErrEmpty
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return domain.Attachment{}, errors.New("attachment: mime type is required")
	}
	return domain.Attachment{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Decode returns the raw bytes held by a.
func Decode(a domain.Attachment) ([]byte, error) {
	if a.Data == "" {
		return nil, ErrEmpty
	}
	raw, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("attachment: decode %s payload: %w", a.MIMEType, err)
	}
	return raw, nil
}

// Read consumes r fully and encodes its content. When mimeType is empty the
// type is sniffed from the content. A failing reader never yields a partial
// payload.
func Read(r io.Reader, mimeType string) (domain.Attachment, error) {
	if r == nil {
		return domain.Attachment{}, fmt.Errorf("%w: nil reader", ErrRead)
	}
	raw, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if len(raw) > MaxSize {
		return domain.Attachment{}, ErrTooLarge
	}
	if len(raw) == 0 {
		return domain.Attachment{}, ErrEmpty
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = sniff(raw)
	}
	return Encode(mimeType, raw)
}

// ReadFile encodes the file at path, taking the MIME type from its
// extension and falling back to content sniffing.
func ReadFile(path string) (domain.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return Read(f, mimeType)
}

// FromDataURL parses a "data:<mime>;base64,<payload>" string into an
// attachment, dropping the header.
func FromDataURL(s string) (domain.Attachment, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return domain.Attachment{}, errors.New("attachment: not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return domain.Attachment{}, errors.New("attachment: data URL has no payload separator")
	}
	mimeType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return domain.Attachment{}, fmt.Errorf("attachment: unsupported data URL encoding %q", encoding)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("attachment: decode data URL: %w", err)
	}
	if mimeType == "" {
		mimeType = sniff(raw)
	}
	return Encode(mimeType, raw)
}

// Validate checks that a carries a MIME type and a decodable payload.
func Validate(a domain.Attachment) error {
	if strings.TrimSpace(a.MIMEType) == "" {
		return errors.New("attachment: mime type is required")
	}
	_, err := Decode(a)
	return err
}

func sniff(raw []byte) string {
	ct := http.DetectContentType(raw)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}
