package core

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// JPEGProcessor accepts JPEG and PNG photos, shrinks them to fit within MaxDimension on
// both sides and re-encodes them as JPEG.
type JPEGProcessor struct {
	MaxDimension int
	Quality      int
	MaxBytes     int64
}

// NewJPEGProcessor creates a JPEGProcessor.
func NewJPEGProcessor(maxDimension, quality int, maxBytes int64) *JPEGProcessor {
	return &JPEGProcessor{MaxDimension: maxDimension, Quality: quality, MaxBytes: maxBytes}
}

// Check reports ErrInvalidImage for payloads that are empty, too large or not JPEG/PNG.
// It returns the detected format.
func (p *JPEGProcessor) Check(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrInvalidImage, len(data), p.MaxBytes)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if format != "jpeg" && format != "png" {
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}
	return format, nil
}

// Process validates data, fits it within MaxDimension and re-encodes it as JPEG. It returns
// the encoded bytes and their content type.
func (p *JPEGProcessor) Process(data []byte) ([]byte, string, error) {
	format, err := p.Check(data)
	if err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	if p.MaxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > p.MaxDimension || b.Dy() > p.MaxDimension {
			img = imaging.Fit(img, p.MaxDimension, p.MaxDimension, imaging.Lanczos)
		}
	}
	if format == "png" {
		// JPEG has no alpha channel; flatten onto white.
		bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		img = imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
	}

	quality := p.Quality
	if quality <= 0 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
