package helper

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, G: 40, B: 40, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestProcessLogo(t *testing.T) {
	out, err := ProcessLogo(pngBytes(t, 1024, 600), "crest.png")
	require.NoError(t, err)
	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 300, cfg.Height)

	small, err := ProcessLogo(pngBytes(t, 100, 80), "small.png")
	require.NoError(t, err)
	cfg, err = webp.DecodeConfig(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width, "smaller images are not upscaled")
}

func TestProcessLogoRejects(t *testing.T) {
	_, err := ProcessLogo(nil, "x.png")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = ProcessLogo([]byte("GIF89a not really"), "x.gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ProcessLogo([]byte("garbage"), "x.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPublicURLAndKey(t *testing.T) {
	s := &OSSService{Endpoint: "https://oss-eu-central-1.aliyuncs.com", BucketName: "schoolhub"}
	url := s.PublicURL("schools/abc/logo_1.webp")
	assert.Equal(t, "https://schoolhub.oss-eu-central-1.aliyuncs.com/schools/abc/logo_1.webp", url)

	key, err := KeyFromPublicURL(url, "")
	require.NoError(t, err)
	assert.Equal(t, "schools/abc/logo_1.webp", key)

	s.PublicBase = "https://cdn.schoolhub.ng"
	assert.Equal(t, "https://cdn.schoolhub.ng/schools/abc/logo_1.webp", s.PublicURL("schools/abc/logo_1.webp"))
	key, err = KeyFromPublicURL("https://cdn.schoolhub.ng/schools/abc/logo_1.webp", s.PublicBase)
	require.NoError(t, err)
	assert.Equal(t, "schools/abc/logo_1.webp", key)

	_, err = KeyFromPublicURL("", "")
	assert.Error(t, err)
}
