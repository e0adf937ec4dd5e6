// Cover image generation for epub export. Produces a deterministic banded
// pattern seeded from the conversation title, with the title and turn
// count overlaid.
package main

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	coverWidth  = 1200
	coverHeight = 1800
	coverMargin = 80
)

func generateCover(title string, turnCount int) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, coverWidth, coverHeight))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{0xFF}), image.Point{}, xdraw.Src)

	hash := sha256.Sum256([]byte(title))
	drawBands(img, hash)

	titleFace, err := loadFace(gobold.TTF, 60)
	if err != nil {
		return nil, fmt.Errorf("loading title font: %w", err)
	}
	labelFace, err := loadFace(goregular.TTF, 32)
	if err != nil {
		return nil, fmt.Errorf("loading label font: %w", err)
	}

	y := coverHeight/2 - 40
	for _, line := range wrapTitle(title, titleFace, coverWidth-2*coverMargin) {
		drawCentered(img, line, titleFace, y)
		y += 80
	}

	subtitle := fmt.Sprintf("%d turns", turnCount)
	if turnCount == 1 {
		subtitle = "1 turn"
	}
	drawCentered(img, subtitle, labelFace, y+40)
	drawCentered(img, "chatmd", labelFace, coverHeight-coverMargin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding cover PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBands fills the upper third with horizontal gray bands whose heights
// and shades derive from the title hash, so the same conversation always
// gets the same cover.
func drawBands(img *image.Gray, hash [sha256.Size]byte) {
	y := 0
	for i := 0; y < coverHeight/3; i++ {
		h := 24 + int(hash[i%sha256.Size])%64
		shade := color.Gray{0xB0 + hash[(i+11)%sha256.Size]%0x40}
		xdraw.Draw(img, image.Rect(0, y, coverWidth, y+h),
			image.NewUniform(shade), image.Point{}, xdraw.Src)
		y += h + 12
	}
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// wrapTitle breaks the title into lines that fit within maxWidth pixels,
// capped at four lines with an ellipsis.
func wrapTitle(title string, face font.Face, maxWidth int) []string {
	d := &font.Drawer{Face: face}
	var lines []string
	var current string
	for _, word := range strings.Fields(title) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if d.MeasureString(candidate).Ceil() <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
		if len(lines) == 4 {
			lines[3] += "…"
			return lines
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{"Conversation"}
	}
	return lines
}

func drawCentered(img *image.Gray, s string, face font.Face, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{0x10}),
		Face: face,
	}
	x := (coverWidth - d.MeasureString(s).Ceil()) / 2
	if x < coverMargin {
		x = coverMargin
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}
