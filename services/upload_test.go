package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *CloudinaryClient {
	client := NewCloudinaryClient(map[string]string{
		"CLOUDINARY_CLOUD_NAME": "demo",
		"CLOUDINARY_API_KEY":    "key-123",
		"CLOUDINARY_API_SECRET": "shhh",
	}).WithBaseURL(baseURL)
	client.now = func() time.Time { return time.Unix(1700000000, 0) }
	return client
}

func TestCloudinaryClient_Upload(t *testing.T) {
	var gotPath string
	var gotForm map[string]string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotForm = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			gotForm[key] = values[0]
		}

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.png", header.Filename)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"public_id":  "portfolio/photo",
			"secure_url": "https://res.example.com/portfolio/photo.webp",
			"width":      800,
			"height":     600,
			"format":     "webp",
			"bytes":      12345,
		})
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)

	result, err := client.Upload(context.Background(), strings.NewReader("fake image bytes"), "photo.png", UploadOptions{
		Width:  800,
		Height: 600,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1_1/demo/auto/upload", gotPath)
	assert.Equal(t, "portfolio", gotForm["folder"])
	assert.Equal(t, "c_fill,q_auto,f_auto,w_800,h_600", gotForm["transformation"])
	assert.Equal(t, "key-123", gotForm["api_key"])
	assert.Equal(t, "1700000000", gotForm["timestamp"])
	// The signature covers the signed params only.
	expectedSignature := signParams(map[string]string{
		"folder":         "portfolio",
		"timestamp":      "1700000000",
		"transformation": "c_fill,q_auto,f_auto,w_800,h_600",
	}, "shhh")
	assert.Equal(t, expectedSignature, gotForm["signature"])

	assert.Equal(t, "portfolio/photo", result.PublicID)
	assert.Equal(t, "https://res.example.com/portfolio/photo.webp", result.URL)
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, "webp", result.Format)
	assert.Equal(t, int64(12345), result.Bytes)
}

func TestCloudinaryClient_UploadCustomOptions(t *testing.T) {
	var gotForm map[string]string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotForm = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			gotForm[key] = values[0]
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"public_id": "x", "secure_url": "https://res.example.com/x"})
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)

	_, err := client.Upload(context.Background(), strings.NewReader("payload"), "clip.mp4", UploadOptions{
		Folder:  "showreel",
		Crop:    "fit",
		Quality: "80",
		Format:  "mp4",
	})
	require.NoError(t, err)

	assert.Equal(t, "showreel", gotForm["folder"])
	assert.Equal(t, "c_fit,q_80,f_mp4", gotForm["transformation"])
}

func TestCloudinaryClient_UploadUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Invalid Signature"},
		})
	}))
	defer upstream.Close()

	client := newTestClient(upstream.URL)

	result, err := client.Upload(context.Background(), strings.NewReader("payload"), "photo.png", UploadOptions{})
	assert.Nil(t, result)
	require.Error(t, err)

	var apiErr interface{ GetFullError() string }
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.GetFullError(), "Invalid Signature")
}

func TestCloudinaryClient_UploadUnreachableHost(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	_, err := client.Upload(context.Background(), strings.NewReader("payload"), "photo.png", UploadOptions{})
	require.Error(t, err)
}

func TestSignParams(t *testing.T) {
	// Keys are sorted before signing, so insertion order must not matter.
	a := signParams(map[string]string{"b": "2", "a": "1"}, "secret")
	b := signParams(map[string]string{"a": "1", "b": "2"}, "secret")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, signParams(map[string]string{"a": "1", "b": "2"}, "other-secret"))
	assert.NotEqual(t, a, signParams(map[string]string{"a": "1", "b": "3"}, "secret"))
}

func TestMediaTypeAllowed(t *testing.T) {
	tests := []struct {
		contentType string
		video       bool
		allowed     bool
	}{
		{"image/png", false, true},
		{"image/webp", false, true},
		{"video/mp4", false, false},
		{"video/mp4", true, true},
		{"image/png", true, true},
		{"application/pdf", false, false},
		{"text/plain", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.allowed, MediaTypeAllowed(tt.contentType, tt.video))
		})
	}
}

func TestUploadOptionsTransformation(t *testing.T) {
	assert.Equal(t, "c_fill,q_auto,f_auto", UploadOptions{}.withDefaults().transformation())
	assert.Equal(t, "c_fill,q_auto,f_auto,w_1200", UploadOptions{Width: 1200}.withDefaults().transformation())
	assert.Equal(t, "c_scale,q_90,f_png,w_100,h_50",
		UploadOptions{Crop: "scale", Quality: "90", Format: "png", Width: 100, Height: 50}.transformation())
}
