// Image embedding for epub export. Remote images referenced by a
// transcript are downloaded, downscaled, flattened onto white, and
// re-encoded as JPEG before being added to the book.
package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	epub "github.com/go-shiori/go-epub"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	imageMaxWidth    = 800
	imageJPEGQuality = 75
)

// imageClient downloads transcript images with the browser fingerprint,
// since chat CDNs apply the same bot checks as the share pages.
var imageClient *http.Client

func init() {
	imageClient = newBrowserClient(30 * time.Second)
}

func fetchImageData(src string) ([]byte, string, error) {
	req, err := http.NewRequest("GET", src, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", defaultUA)
	resp, err := imageClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, src)
	}
	data, err := readLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// flattenOnWhite composites an image onto a white background so
// transparency doesn't turn black in JPEG.
func flattenOnWhite(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, src, b.Min, draw.Over)
	return dst
}

// shrinkToWidth downscales with BiLinear resampling when the image is
// wider than max; height scales proportionally.
func shrinkToWidth(src image.Image, max int) image.Image {
	b := src.Bounds()
	if b.Dx() <= max {
		return src
	}
	h := b.Dy() * max / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, max, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// optimizeImage decodes png/jpeg/gif/webp data and re-encodes it as a
// downscaled JPEG suitable for e-readers.
func optimizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img = shrinkToWidth(flattenOnWhite(img), imageMaxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: imageJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// embedImage registers an image with the epub and returns its internal
// path. Failures degrade to dropping the image, never to failing the
// export.
func embedImage(e *epub.Epub, src string, chapter, idx int) (string, bool) {
	if src == "" {
		return "", false
	}

	if strings.HasPrefix(src, "data:") {
		name := fmt.Sprintf("ch%03d_img%03d%s", chapter, idx, dataURIExt(src))
		path, err := e.AddImage(src, name)
		if err != nil {
			fmt.Fprintf(logOut, "Warning: could not embed image: %v\n", err)
			return "", false
		}
		return path, true
	}

	data, mime, err := fetchImageData(src)
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not fetch image %s: %v\n", src, err)
		return "", false
	}

	// SVG passes through untouched; there is no raster decode for it.
	if strings.Contains(mime, "svg") {
		uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data)
		name := fmt.Sprintf("ch%03d_img%03d.svg", chapter, idx)
		path, err := e.AddImage(uri, name)
		if err != nil {
			return "", false
		}
		return path, true
	}

	jpegData, err := optimizeImage(data)
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not optimize image %s: %v\n", src, err)
		return "", false
	}

	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
	name := fmt.Sprintf("ch%03d_img%03d.jpg", chapter, idx)
	path, err := e.AddImage(uri, name)
	if err != nil {
		fmt.Fprintf(logOut, "Warning: could not embed image: %v\n", err)
		return "", false
	}
	return path, true
}

func dataURIExt(uri string) string {
	switch {
	case strings.Contains(uri, "image/png"):
		return ".png"
	case strings.Contains(uri, "image/gif"):
		return ".gif"
	case strings.Contains(uri, "image/svg"):
		return ".svg"
	case strings.Contains(uri, "image/webp"):
		return ".webp"
	}
	return ".jpg"
}
