package media

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-videotube/internal/model"
)

func TestSniffContentTypeRewinds(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
	body := bytes.NewReader(png)

	mimeType, err := SniffContentType(body)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	rest, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, png, rest)
}

func TestImageChecks(t *testing.T) {
	assert.True(t, IsImageMIME(" Image/JPEG "))
	assert.False(t, IsImageMIME("text/plain"))
	assert.True(t, IsImageExtension(".WEBP"))
	assert.False(t, IsImageExtension(".exe"))
}

func TestObjectKeyFallsBackToMIMEExtension(t *testing.T) {
	key := objectKey(FolderAvatars, model.Upload{Filename: "blob", ContentType: "image/gif"})
	assert.Regexp(t, `^avatars/[0-9a-f-]{36}\.gif$`, key)
}

func TestKeyFromURL(t *testing.T) {
	key, ok := keyFromURL("https://cdn.example/", "https://cdn.example/avatars/a.png")
	assert.True(t, ok)
	assert.Equal(t, "avatars/a.png", key)

	_, ok = keyFromURL("https://cdn.example", "https://other.example/avatars/a.png")
	assert.False(t, ok)

	key, ok = keyFromURL("https://cdn.example", "/covers/b.png")
	assert.True(t, ok)
	assert.Equal(t, "covers/b.png", key)

	_, ok = keyFromURL("https://cdn.example", " ")
	assert.False(t, ok)
}

func TestInspectImage(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	require.NoError(t, png.Encode(&buf, img))
	body := bytes.NewReader(buf.Bytes())

	info, err := InspectImage(body)
	require.NoError(t, err)
	assert.Equal(t, ImageInfo{Format: "png", Width: 3, Height: 2}, info)

	pos, err := body.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos)

	_, err = InspectImage(bytes.NewReader([]byte("GIF89a-but-not-really")))
	assert.Error(t, err)
}

func TestInspectImageToleratesUnregisteredFormats(t *testing.T) {
	info, err := InspectImage(bytes.NewReader([]byte("not an image header at all")))
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.Format)
}
