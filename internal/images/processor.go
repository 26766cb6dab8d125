// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

// Package images processes uploaded tour and user photos: decode, resize
// to the canonical dimensions, and re-encode as JPEG. Originals are never
// stored; only the normalized JPEG output is written to disk.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders for the formats accepted on upload
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/tomtom215/trailhead/internal/config"
	"github.com/tomtom215/trailhead/internal/logging"
	"github.com/tomtom215/trailhead/internal/metrics"
)

// Canonical output dimensions.
const (
	TourImageWidth  = 2000
	TourImageHeight = 1333
	UserPhotoSize   = 500
)

// ErrNotAnImage is returned when the upload cannot be decoded as a
// supported image format.
var ErrNotAnImage = errors.New("file is not a supported image (jpeg, png, gif)")

// ErrTooLarge is returned when the upload exceeds the configured size cap.
var ErrTooLarge = errors.New("uploaded file exceeds the size limit")

// Processor resizes and stores uploaded images under the uploads directory.
type Processor struct {
	dir      string
	maxBytes int64
	quality  int
}

// NewProcessor creates an image processor and ensures the output
// directories exist.
func NewProcessor(cfg *config.UploadsConfig) (*Processor, error) {
	for _, sub := range []string{"tours", "users"} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, sub), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create uploads directory: %w", err)
		}
	}

	return &Processor{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxSizeBytes,
		quality:  cfg.JPEGQuality,
	}, nil
}

// decode reads at most maxBytes+1 from r and decodes the image.
func (p *Processor) decode(r io.Reader) (image.Image, error) {
	limited := io.LimitReader(r, p.maxBytes+1)

	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotAnImage
	}
	return img, nil
}

// save resizes img with a center-crop fill to the target dimensions and
// writes it as a JPEG at the configured quality.
func (p *Processor) save(img image.Image, relPath string, width, height int) error {
	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	outPath := filepath.Join(p.dir, relPath)
	if err := imaging.Save(resized, outPath, imaging.JPEGQuality(p.quality)); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

// ProcessTourCover stores a tour's cover image (2000x1333) and returns the
// stored filename.
func (p *Processor) ProcessTourCover(r io.Reader, tourID string) (string, error) {
	start := time.Now()

	img, err := p.decode(r)
	if err != nil {
		metrics.ImageProcessingErrors.WithLabelValues("tour_cover", classifyError(err)).Inc()
		return "", err
	}

	filename := fmt.Sprintf("tour-%s-%d-cover.jpg", tourID, time.Now().UnixMilli())
	if err := p.save(img, filepath.Join("tours", filename), TourImageWidth, TourImageHeight); err != nil {
		metrics.ImageProcessingErrors.WithLabelValues("tour_cover", "write").Inc()
		return "", err
	}

	metrics.ImageProcessingDuration.WithLabelValues("tour_cover").Observe(time.Since(start).Seconds())
	logger := logging.WithComponent("images")
	logger.Debug().Str("file", filename).Msg("Stored tour cover")
	return filename, nil
}

// ProcessTourImage stores one tour gallery image (2000x1333), indexed 1-3,
// and returns the stored filename.
func (p *Processor) ProcessTourImage(r io.Reader, tourID string, index int) (string, error) {
	start := time.Now()

	img, err := p.decode(r)
	if err != nil {
		metrics.ImageProcessingErrors.WithLabelValues("tour_image", classifyError(err)).Inc()
		return "", err
	}

	filename := fmt.Sprintf("tour-%s-%d-%d.jpg", tourID, time.Now().UnixMilli(), index)
	if err := p.save(img, filepath.Join("tours", filename), TourImageWidth, TourImageHeight); err != nil {
		metrics.ImageProcessingErrors.WithLabelValues("tour_image", "write").Inc()
		return "", err
	}

	metrics.ImageProcessingDuration.WithLabelValues("tour_image").Observe(time.Since(start).Seconds())
	return filename, nil
}

// ProcessUserPhoto stores a user's profile photo (500x500 square) and
// returns the stored filename.
func (p *Processor) ProcessUserPhoto(r io.Reader, userID string) (string, error) {
	start := time.Now()

	img, err := p.decode(r)
	if err != nil {
		metrics.ImageProcessingErrors.WithLabelValues("user_photo", classifyError(err)).Inc()
		return "", err
	}

	filename := fmt.Sprintf("user-%s-%d.jpg", userID, time.Now().UnixMilli())
	if err := p.save(img, filepath.Join("users", filename), UserPhotoSize, UserPhotoSize); err != nil {
		metrics.ImageProcessingErrors.WithLabelValues("user_photo", "write").Inc()
		return "", err
	}

	metrics.ImageProcessingDuration.WithLabelValues("user_photo").Observe(time.Since(start).Seconds())
	return filename, nil
}

func classifyError(err error) string {
	if errors.Is(err, ErrTooLarge) {
		return "too_large"
	}
	return "decode"
}
