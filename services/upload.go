package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/config"
	"github.com/sfrosal/portfolio-api/errs"
)

// Upload size ceilings. Enforced at the HTTP boundary with MaxBytesReader
// before the payload is buffered.
const (
	MaxImageUploadBytes int64 = 10 * 1024 * 1024
	MaxVideoUploadBytes int64 = 100 * 1024 * 1024
)

var imageMimeTypes = []string{
	"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif",
}

var videoMimeTypes = []string{
	"video/mp4", "video/webm", "video/ogg", "video/avi", "video/mov", "video/quicktime",
}

// AllowedMediaTypes returns the MIME allow-list for an upload route. The
// video variant accepts both lists.
func AllowedMediaTypes(video bool) []string {
	if !video {
		return imageMimeTypes
	}
	return append(append([]string{}, imageMimeTypes...), videoMimeTypes...)
}

// MediaTypeAllowed reports whether the declared MIME type is acceptable.
func MediaTypeAllowed(contentType string, video bool) bool {
	for _, allowed := range AllowedMediaTypes(video) {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// UploadOptions are the optional transformation parameters forwarded to the
// media host. Zero values fall back to the documented defaults.
type UploadOptions struct {
	Folder  string // storage folder, default "portfolio"
	Width   int    // target width in pixels, default: source width
	Height  int    // target height in pixels, default: source height
	Crop    string // crop mode, default "fill"
	Quality string // output quality, default "auto"
	Format  string // output format, default "auto"
}

func (o UploadOptions) withDefaults() UploadOptions {
	if o.Folder == "" {
		o.Folder = "portfolio"
	}
	if o.Crop == "" {
		o.Crop = "fill"
	}
	if o.Quality == "" {
		o.Quality = "auto"
	}
	if o.Format == "" {
		o.Format = "auto"
	}
	return o
}

// transformation renders the comma-separated directive the upload API expects.
func (o UploadOptions) transformation() string {
	parts := []string{"c_" + o.Crop, "q_" + o.Quality, "f_" + o.Format}
	if o.Width > 0 {
		parts = append(parts, "w_"+strconv.Itoa(o.Width))
	}
	if o.Height > 0 {
		parts = append(parts, "h_"+strconv.Itoa(o.Height))
	}
	return strings.Join(parts, ",")
}

// UploadResult is the canonical description of a stored asset.
type UploadResult struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Bytes    int64  `json:"bytes"`
}

// cloudinaryUploadResponse is the subset of the upload API response we keep.
type cloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

type cloudinaryErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CloudinaryClient relays upload buffers to the Cloudinary upload API and
// returns the canonical URL and metadata of the stored asset.
type CloudinaryClient struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewCloudinaryClient builds a client from CLOUDINARY_CLOUD_NAME,
// CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET.
func NewCloudinaryClient(cfg map[string]string) *CloudinaryClient {
	cloudName := config.GetString(cfg, "CLOUDINARY_CLOUD_NAME", "")
	apiKey := config.GetString(cfg, "CLOUDINARY_API_KEY", "")
	apiSecret := config.GetString(cfg, "CLOUDINARY_API_SECRET", "")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Warn().Msg("Cloudinary credentials are not fully configured, uploads will fail")
	}

	return &CloudinaryClient{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    "https://api.cloudinary.com",
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		now:        time.Now,
	}
}

// WithBaseURL points the client at a different upload endpoint. Used by tests
// to stand in a local upstream.
func (c *CloudinaryClient) WithBaseURL(baseURL string) *CloudinaryClient {
	c.baseURL = baseURL
	return c
}

// Upload forwards the file to the media host with the given transformation
// parameters. The caller has already validated MIME type and size.
func (c *CloudinaryClient) Upload(ctx context.Context, file io.Reader, filename string, opts UploadOptions) (*UploadResult, error) {
	opts = opts.withDefaults()
	timestamp := strconv.FormatInt(c.now().Unix(), 10)

	// Every parameter except file, api_key and the signature itself is signed.
	signedParams := map[string]string{
		"folder":         opts.Folder,
		"timestamp":      timestamp,
		"transformation": opts.transformation(),
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range signedParams {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := writer.WriteField("signature", signParams(signedParams, c.apiSecret)); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to buffer upload payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/v1_1/%s/auto/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewUpstreamError("media host", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewUpstreamError("media host", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp cloudinaryErrorResponse
		if err := json.Unmarshal(respBytes, &errorResp); err == nil && errorResp.Error.Message != "" {
			return nil, errs.NewUpstreamError("media host",
				fmt.Errorf("upload API error (status %d): %s", resp.StatusCode, errorResp.Error.Message))
		}
		return nil, errs.NewUpstreamError("media host",
			fmt.Errorf("upload API error (status %d)", resp.StatusCode))
	}

	var uploadResp cloudinaryUploadResponse
	if err := json.Unmarshal(respBytes, &uploadResp); err != nil {
		return nil, errs.NewUpstreamError("media host", fmt.Errorf("unparseable upload API response: %w", err))
	}

	log.Info().
		Str("publicId", uploadResp.PublicID).
		Int64("bytes", uploadResp.Bytes).
		Msg("Uploaded file to media host")

	return &UploadResult{
		PublicID: uploadResp.PublicID,
		URL:      uploadResp.SecureURL,
		Width:    uploadResp.Width,
		Height:   uploadResp.Height,
		Format:   uploadResp.Format,
		Bytes:    uploadResp.Bytes,
	}, nil
}

// signParams implements the upload API request signature: the signed params
// sorted by key, joined with &, concatenated with the secret, SHA-1 hashed.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
