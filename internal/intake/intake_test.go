package intake

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestReadDetectsPNG(t *testing.T) {
	data := samplePNG(t)
	img, err := Read(bytes.NewReader(data), "application/octet-stream", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, len(data), img.Size())
	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/png;base64,"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), img.Base64())
}

func TestReadRejectsNonImage(t *testing.T) {
	_, err := Read(strings.NewReader("just some text, not a picture"), "image/png", 1<<20)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestReadRejectsEmpty(t *testing.T) {
	_, err := Read(bytes.NewReader(nil), "image/png", 1<<20)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestReadEnforcesLimit(t *testing.T) {
	data := samplePNG(t)
	_, err := Read(bytes.NewReader(data), "", int64(len(data)-1))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Read(bytes.NewReader(data), "", int64(len(data)))
	assert.NoError(t, err)
}

func TestFromBase64AcceptsDataURI(t *testing.T) {
	data := samplePNG(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	img, err := FromBase64(uri, "", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, data, img.Data)
}

func TestFromBase64AcceptsBarePayload(t *testing.T) {
	data := samplePNG(t)
	img, err := FromBase64(base64.StdEncoding.EncodeToString(data), "image/png", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
}

func TestFromBase64RejectsGarbage(t *testing.T) {
	_, err := FromBase64("!!!not-base64!!!", "image/png", 1<<20)
	assert.Error(t, err)

	_, err = FromBase64("   ", "image/png", 1<<20)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestDetectTypeFallsBackToDeclared(t *testing.T) {
	unknown := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	assert.Equal(t, "image/heic", DetectType(unknown, "image/HEIC; charset=binary"))
	assert.Equal(t, "application/octet-stream", DetectType(unknown, "text/plain"))
}
