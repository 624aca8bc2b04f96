package api

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sfrosal/portfolio-api/services"
)

func TestUploadLimits(t *testing.T) {
	imageLimit, videoLimit := uploadLimits(map[string]string{})
	assert.Equal(t, services.MaxImageUploadBytes, imageLimit)
	assert.Equal(t, services.MaxVideoUploadBytes, videoLimit)

	imageLimit, videoLimit = uploadLimits(map[string]string{
		"MAX_UPLOAD_MB":       "2",
		"MAX_VIDEO_UPLOAD_MB": "50",
	})
	assert.Equal(t, int64(2*1024*1024), imageLimit)
	assert.Equal(t, int64(50*1024*1024), videoLimit)

	// Junk or non-positive overrides fall back to the defaults.
	imageLimit, videoLimit = uploadLimits(map[string]string{
		"MAX_UPLOAD_MB":       "-1",
		"MAX_VIDEO_UPLOAD_MB": "lots",
	})
	assert.Equal(t, services.MaxImageUploadBytes, imageLimit)
	assert.Equal(t, services.MaxVideoUploadBytes, videoLimit)
}
