package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"dzine-mind/internal/attachment"
)

type fakeCamera struct {
	openErr  error
	frame    image.Image
	frameErr error
	closeErr error
	stream   *fakeStream
}

func (c *fakeCamera) Open(_ context.Context) (Stream, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.stream = &fakeStream{frame: c.frame, frameErr: c.frameErr, closeErr: c.closeErr}
	return c.stream, nil
}

type fakeStream struct {
	frame    image.Image
	frameErr error
	closeErr error
	frames   int
	closes   int
}

func (s *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	s.frames++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.frame, s.frameErr
}

func (s *fakeStream) Close() error {
	s.closes++
	return s.closeErr
}

func solid(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 90, A: 255})
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestCaptureStill_ReleasesOnSuccess(t *testing.T) {
	cam := &fakeCamera{frame: solid(64, 48)}
	att, err := CaptureStill(context.Background(), cam, CaptureOptions{})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", att.MIMEType)
	require.Equal(t, 1, cam.stream.frames)
	require.Equal(t, 1, cam.stream.closes)

	raw, err := attachment.Decode(att)
	require.NoError(t, err)
	w, h := decodeSize(t, raw)
	require.Equal(t, 64, w)
	require.Equal(t, 48, h)
}

func TestCaptureStill_ReleasesOnFrameError(t *testing.T) {
	cam := &fakeCamera{frameErr: errors.New("sensor glitch")}
	_, err := CaptureStill(context.Background(), cam, CaptureOptions{})
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	require.ErrorContains(t, err, "sensor glitch")
	require.Equal(t, 1, cam.stream.closes)
}

func TestCaptureStill_ReleasesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cam := &fakeCamera{frame: solid(10, 10)}
	_, err := CaptureStill(ctx, cam, CaptureOptions{})
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, cam.stream.closes)
	require.Zero(t, cam.stream.frames)
}

func TestCaptureStill_ReleasesOnEmptyFrame(t *testing.T) {
	cam := &fakeCamera{frame: image.NewRGBA(image.Rect(0, 0, 0, 0))}
	_, err := CaptureStill(context.Background(), cam, CaptureOptions{})
	require.ErrorContains(t, err, "empty frame")
	require.Equal(t, 1, cam.stream.closes)
}

func TestCaptureStill_OpenDenied(t *testing.T) {
	denied := errors.New("permission denied")
	cam := &fakeCamera{openErr: denied}
	_, err := CaptureStill(context.Background(), cam, CaptureOptions{})

	var de *DeviceError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "camera", de.Device)
	require.Equal(t, "open", de.Op)
	require.ErrorIs(t, err, denied)
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	require.Nil(t, cam.stream)
}

func TestCaptureStill_NilCamera(t *testing.T) {
	_, err := CaptureStill(context.Background(), nil, CaptureOptions{})
	require.ErrorIs(t, err, ErrUnsupported)
	require.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestCaptureStill_ReleaseErrorWins(t *testing.T) {
	cam := &fakeCamera{frame: solid(8, 8), closeErr: errors.New("busy")}
	att, err := CaptureStill(context.Background(), cam, CaptureOptions{})
	require.ErrorContains(t, err, "release")
	require.Empty(t, att.Data)
}

func TestEncodeStill_DownscalesLargeFrames(t *testing.T) {
	att, err := EncodeStill(solid(4000, 2000), CaptureOptions{MaxDimension: 1024, Format: FormatPNG})
	require.NoError(t, err)
	require.Equal(t, "image/png", att.MIMEType)

	raw, err := attachment.Decode(att)
	require.NoError(t, err)
	w, h := decodeSize(t, raw)
	require.Equal(t, 1024, w)
	require.Equal(t, 512, h)
}

func TestEncodeStill_UnknownFormat(t *testing.T) {
	_, err := EncodeStill(solid(4, 4), CaptureOptions{Format: "gif"})
	require.ErrorContains(t, err, "unknown format")
}

func TestFileCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodboard.png")
	require.NoError(t, imaging.Save(solid(30, 20), path))

	att, err := CaptureStill(context.Background(), FileCamera{Path: path}, CaptureOptions{Format: FormatPNG})
	require.NoError(t, err)
	raw, err := attachment.Decode(att)
	require.NoError(t, err)
	w, h := decodeSize(t, raw)
	require.Equal(t, 30, w)
	require.Equal(t, 20, h)

	_, err = CaptureStill(context.Background(), FileCamera{Path: filepath.Join(t.TempDir(), "missing.png")}, CaptureOptions{})
	require.ErrorIs(t, err, ErrDeviceUnavailable)
	require.ErrorIs(t, err, os.ErrNotExist)
}
