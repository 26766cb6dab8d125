// Trailhead - Tour Booking and Reservation Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailhead

package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/tomtom215/trailhead/internal/config"
)

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := NewProcessor(&config.UploadsConfig{
		Dir:          t.TempDir(),
		MaxSizeBytes: 1 << 20,
		JPEGQuality:  90,
	})
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	return p
}

// testPNG renders a small gradient PNG in memory.
func testPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return &buf
}

func TestProcessTourCover(t *testing.T) {
	p := testProcessor(t)

	filename, err := p.ProcessTourCover(testPNG(t, 300, 200), "5c88fa8cf4afda39709c2955")
	if err != nil {
		t.Fatalf("ProcessTourCover failed: %v", err)
	}
	if !strings.HasSuffix(filename, "-cover.jpg") {
		t.Errorf("filename = %q, want -cover.jpg suffix", filename)
	}

	out, err := imaging.Open(filepath.Join(p.dir, "tours", filename))
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() != TourImageWidth || bounds.Dy() != TourImageHeight {
		t.Errorf("output dimensions = %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), TourImageWidth, TourImageHeight)
	}
}

func TestProcessUserPhotoIsSquare(t *testing.T) {
	p := testProcessor(t)

	filename, err := p.ProcessUserPhoto(testPNG(t, 640, 480), "abc123")
	if err != nil {
		t.Fatalf("ProcessUserPhoto failed: %v", err)
	}

	out, err := imaging.Open(filepath.Join(p.dir, "users", filename))
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	bounds := out.Bounds()
	if bounds.Dx() != UserPhotoSize || bounds.Dy() != UserPhotoSize {
		t.Errorf("output dimensions = %dx%d, want %dx%d square",
			bounds.Dx(), bounds.Dy(), UserPhotoSize, UserPhotoSize)
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	p := testProcessor(t)

	_, err := p.ProcessTourCover(strings.NewReader("definitely not an image"), "id")
	if !errors.Is(err, ErrNotAnImage) {
		t.Errorf("error = %v, want ErrNotAnImage", err)
	}
}

func TestProcessRejectsOversized(t *testing.T) {
	p, err := NewProcessor(&config.UploadsConfig{
		Dir:          t.TempDir(),
		MaxSizeBytes: 10, // everything is too large
		JPEGQuality:  90,
	})
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	_, err = p.ProcessUserPhoto(testPNG(t, 50, 50), "id")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge", err)
	}
}
