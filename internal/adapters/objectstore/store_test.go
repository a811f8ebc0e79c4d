package objectstore

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	cases := []struct {
		folder, filename, want string
	}{
		{"shazam_imoveis", "fachada.JPG", "shazam_imoveis/id-1.jpg"},
		{"shazam_imoveis", "foto", "shazam_imoveis/id-1"},
		{"", "foto.png", "id-1.png"},
		{"a/b", "x.jpeg", "a/b/id-1.jpeg"},
		{"shazam_imoveis", "weird.extension-too-long", "shazam_imoveis/id-1"},
		{"shazam_imoveis", "evil.j g", "shazam_imoveis/id-1"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, objectKey(c.folder, "id-1", c.filename), "folder=%q file=%q", c.folder, c.filename)
	}
}

func TestPublicBaseURL_Endpoint(t *testing.T) {
	endpoint, _ := url.Parse("https://storage.example.com")
	base, err := publicBaseURL("", endpoint, "photos")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/photos/shazam_imoveis/a.jpg", objectURL(base, "shazam_imoveis/a.jpg"))
	assert.Equal(t, "https://storage.example.com", endpoint.String(), "endpoint must not be mutated")
}

func TestPublicBaseURL_Configured(t *testing.T) {
	endpoint, _ := url.Parse("http://minio:9000")
	base, err := publicBaseURL("https://cdn.example.com/media/", endpoint, "photos")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/shazam_imoveis/a.jpg", objectURL(base, "shazam_imoveis/a.jpg"))
}

func TestPublicBaseURL_Relative(t *testing.T) {
	endpoint, _ := url.Parse("http://minio:9000")
	_, err := publicBaseURL("cdn.example.com", endpoint, "photos")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "absolute"))
}

func TestObjectURL_EscapesFolder(t *testing.T) {
	base, _ := url.Parse("https://cdn.example.com")
	assert.Equal(t, "https://cdn.example.com/minhas%20fotos/a.jpg", objectURL(base, "minhas fotos/a.jpg"))
}
