package helper

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	MaxUploadSize = int64(5 * 1024 * 1024)

	LogoMaxSide = 512
	LogoQuality = 85
)

var (
	ErrEmptyImage        = errors.New("empty image")
	ErrUnsupportedFormat = errors.New("unsupported image format, use jpg, png or webp")
)

// DecodeImage sniffs the content type and falls back to the file extension.
func DecodeImage(data []byte, filename string) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	format := sniffFormat(data)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}

	r := bytes.NewReader(data)
	switch format {
	case "jpeg", "jpg":
		return jpeg.Decode(r)
	case "png":
		return png.Decode(r)
	case "webp":
		return webp.Decode(r)
	}
	return nil, ErrUnsupportedFormat
}

func sniffFormat(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	switch {
	case strings.Contains(ct, "jpeg"):
		return "jpeg"
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "webp"):
		return "webp"
	}
	return ""
}

// ProcessLogo fits the image inside LogoMaxSide x LogoMaxSide, keeping the
// aspect ratio, and re-encodes it as lossy webp.
func ProcessLogo(data []byte, filename string) ([]byte, error) {
	src, err := DecodeImage(data, filename)
	if err != nil {
		if errors.Is(err, ErrEmptyImage) || errors.Is(err, ErrUnsupportedFormat) {
			return nil, err
		}
		return nil, ErrUnsupportedFormat
	}
	img := imaging.Fit(src, LogoMaxSide, LogoMaxSide, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: LogoQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
