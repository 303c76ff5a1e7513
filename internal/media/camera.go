package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"dzine-mind/internal/attachment"
	"dzine-mind/internal/domain"
)

const deviceCamera = "camera"

// Camera opens a video stream. Each Stream must be closed by the caller.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream yields frames until closed.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// Format is the encoding used for captured stills.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// CaptureOptions controls still normalization. Zero values use defaults.
type CaptureOptions struct {
	// MaxDimension bounds the longer side in pixels; larger frames are
	// downscaled preserving aspect ratio.
	MaxDimension int
	Format       Format
	// JPEGQuality is in [1,100].
	JPEGQuality int
}

const (
	DefaultMaxDimension = 1536
	DefaultJPEGQuality  = 85
)

func (o CaptureOptions) withDefaults() CaptureOptions {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Format == "" {
		o.Format = FormatJPEG
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	return o
}

// CaptureStill opens cam, grabs one frame and releases the stream before
// returning, whatever the outcome.
func CaptureStill(ctx context.Context, cam Camera, opts CaptureOptions) (att domain.Attachment, err error) {
	if cam == nil {
		return domain.Attachment{}, deviceErr(deviceCamera, "open", ErrUnsupported)
	}
	opts = opts.withDefaults()

	stream, err := cam.Open(ctx)
	if err != nil {
		return domain.Attachment{}, deviceErr(deviceCamera, "open", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = deviceErr(deviceCamera, "release", cerr)
			att = domain.Attachment{}
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.Attachment{}, deviceErr(deviceCamera, "capture", err)
	}
	frame, err := stream.Frame(ctx)
	if err != nil {
		return domain.Attachment{}, deviceErr(deviceCamera, "capture", err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return domain.Attachment{}, deviceErr(deviceCamera, "capture", errors.New("empty frame"))
	}

	return EncodeStill(frame, opts)
}

// EncodeStill normalizes img and encodes it as an attachment.
func EncodeStill(img image.Image, opts CaptureOptions) (domain.Attachment, error) {
	opts = opts.withDefaults()

	b := img.Bounds()
	if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	var (
		buf      bytes.Buffer
		mimeType string
		err      error
	)
	switch opts.Format {
	case FormatPNG:
		mimeType = "image/png"
		err = imaging.Encode(&buf, img, imaging.PNG)
	case FormatJPEG:
		mimeType = "image/jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.JPEGQuality))
	default:
		return domain.Attachment{}, fmt.Errorf("media: unknown format %q", opts.Format)
	}
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("media: encode still: %w", err)
	}
	return attachment.Encode(mimeType, buf.Bytes())
}

// FileCamera serves a single still image from disk. It stands in for a
// physical camera in the CLI.
type FileCamera struct {
	Path string
}

func (c FileCamera) Open(_ context.Context) (Stream, error) {
	img, err := imaging.Open(c.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return &stillStream{img: img}, nil
}

type stillStream struct {
	img    image.Image
	closed bool
}

func (s *stillStream) Frame(ctx context.Context) (image.Image, error) {
	if s.closed {
		return nil, errors.New("stream closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.img, nil
}

func (s *stillStream) Close() error {
	s.closed = true
	return nil
}
