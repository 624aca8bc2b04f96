package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sfrosal/portfolio-api/errs"
	"github.com/sfrosal/portfolio-api/services"
)

// uploader is the slice of the media-host client the handler needs.
type uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string, opts services.UploadOptions) (*services.UploadResult, error)
}

type uploadHandler struct {
	responder  Responder
	logger     zerolog.Logger
	uploader   uploader
	imageLimit int64
	videoLimit int64
}

func newUploadHandler(uploader uploader, imageLimit, videoLimit int64) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		uploader:   uploader,
		imageLimit: imageLimit,
		videoLimit: videoLimit,
	}
}

var cropModes = map[string]bool{"fill": true, "fit": true, "scale": true, "crop": true, "thumb": true}
var qualityModes = map[string]bool{"auto": true, "best": true, "good": true, "eco": true, "low": true}
var outputFormats = map[string]bool{"auto": true, "jpg": true, "png": true, "webp": true, "gif": true}

// parseUploadOptions reads the transformation parameters off the query
// string. Each has a documented default; unknown enum values are rejected.
func parseUploadOptions(r *http.Request) (services.UploadOptions, error) {
	q := r.URL.Query()
	opts := services.UploadOptions{
		Folder:  q.Get("folder"),
		Crop:    q.Get("crop"),
		Quality: q.Get("quality"),
		Format:  q.Get("format"),
	}

	if widthStr := q.Get("width"); widthStr != "" {
		width, err := strconv.Atoi(widthStr)
		if err != nil || width <= 0 {
			return opts, errs.NewInvalidFieldError("width", "must be a positive integer")
		}
		opts.Width = width
	}
	if heightStr := q.Get("height"); heightStr != "" {
		height, err := strconv.Atoi(heightStr)
		if err != nil || height <= 0 {
			return opts, errs.NewInvalidFieldError("height", "must be a positive integer")
		}
		opts.Height = height
	}

	if opts.Crop != "" && !cropModes[opts.Crop] {
		return opts, errs.NewInvalidFieldError("crop", "must be one of fill, fit, scale, crop, thumb")
	}
	if opts.Quality != "" && !qualityModes[opts.Quality] {
		return opts, errs.NewInvalidFieldError("quality", "must be one of auto, best, good, eco, low")
	}
	if opts.Format != "" && !outputFormats[opts.Format] {
		return opts, errs.NewInvalidFieldError("format", "must be one of auto, jpg, png, webp, gif")
	}

	return opts, nil
}

// uploadSingle relays one multipart file to the media host. The byte ceiling
// is enforced by MaxBytesReader before the payload is fully buffered, and the
// MIME check runs before the media host is ever contacted.
func (h uploadHandler) uploadSingle(video bool) http.HandlerFunc {
	limit := h.imageLimit
	if video {
		limit = h.videoLimit
	}

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		file, header, err := h.formFile(r, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !services.MediaTypeAllowed(contentType, video) {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(contentType, services.AllowedMediaTypes(video)))
			return
		}

		opts, err := parseUploadOptions(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.uploader.Upload(r.Context(), file, header.Filename, opts)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}

type batchUploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type batchUploadSuccess struct {
	Filename string                 `json:"filename"`
	Data     *services.UploadResult `json:"data"`
}

// uploadBatch relays every file of a multipart request and reports per-file
// successes and failures. One bad file never fails the whole request.
func (h uploadHandler) uploadBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.imageLimit*10)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			h.responder.WriteError(w, multipartError(err, h.imageLimit*10))
			return
		}

		opts, err := parseUploadOptions(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		results := []batchUploadSuccess{}
		failures := []batchUploadFailure{}

		for _, headers := range r.MultipartForm.File {
			for _, header := range headers {
				contentType := header.Header.Get("Content-Type")
				if !services.MediaTypeAllowed(contentType, false) {
					failures = append(failures, batchUploadFailure{
						Filename: header.Filename,
						Error:    "unsupported media type",
					})
					continue
				}
				if header.Size > h.imageLimit {
					failures = append(failures, batchUploadFailure{
						Filename: header.Filename,
						Error:    "file exceeds size limit",
					})
					continue
				}

				file, err := header.Open()
				if err != nil {
					failures = append(failures, batchUploadFailure{
						Filename: header.Filename,
						Error:    "unreadable file",
					})
					continue
				}

				result, err := h.uploader.Upload(r.Context(), file, header.Filename, opts)
				file.Close()
				if err != nil {
					h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Batch upload file failed")
					failures = append(failures, batchUploadFailure{
						Filename: header.Filename,
						Error:    "upload failed",
					})
					continue
				}

				results = append(results, batchUploadSuccess{Filename: header.Filename, Data: result})
			}
		}

		h.responder.WriteJSON(w, map[string]interface{}{
			"success": len(failures) == 0,
			"results": results,
			"errors":  failures,
		})
	}
}

// formFile fetches the single uploaded file, translating body-limit
// overruns into the payload-too-large error.
func (h uploadHandler) formFile(r *http.Request, limit int64) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, multipartError(err, limit)
	}
	return file, header, nil
}

func multipartError(err error, limit int64) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return errs.NewPayloadTooLargeError(limit)
	}
	return errs.NewMalformedPayloadError(err)
}
