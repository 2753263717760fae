package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"signage_server/internal/apperr"
	"signage_server/internal/assets"
	"signage_server/internal/models"
	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
)

// MediaController handles media uploads and metadata
type MediaController struct {
	catalog *services.CatalogService
}

// NewMediaController creates a new media controller
func NewMediaController(catalog *services.CatalogService) *MediaController {
	return &MediaController{catalog: catalog}
}

// formUpload opens an optional multipart file field; both results are nil when the field is absent
func formUpload(c *gin.Context, field string) (*assets.Upload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, apperr.Validation("Invalid %s upload: %v", field, err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &assets.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, file, nil
}

// CreateMedia accepts a multipart upload with title, description, media_type, duration, file and thumbnail
func (mc *MediaController) CreateMedia(c *gin.Context) {
	req := services.CreateMediaRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		MediaType:   models.MediaType(strings.ToLower(strings.TrimSpace(c.PostForm("media_type")))),
	}
	if raw := strings.TrimSpace(c.PostForm("duration")); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, apperr.Validation("duration must be an integer number of seconds").WithDetail("duration", raw))
			return
		}
		req.Duration = duration
	}

	file, fileBody, err := formUpload(c, "file")
	if err != nil {
		RespondError(c, err)
		return
	}
	if fileBody != nil {
		defer fileBody.Close()
	}
	thumb, thumbBody, err := formUpload(c, "thumbnail")
	if err != nil {
		RespondError(c, err)
		return
	}
	if thumbBody != nil {
		defer thumbBody.Close()
	}
	req.File = file
	req.Thumbnail = thumb

	media, err := mc.catalog.CreateMedia(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Media uploaded successfully", media, 0)
}

// GetMedia returns the caller's media
func (mc *MediaController) GetMedia(c *gin.Context) {
	media, err := mc.catalog.ListMedia(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Media retrieved successfully", media, len(media))
}

// GetMediaItem returns one media
func (mc *MediaController) GetMediaItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	media, err := mc.catalog.GetMedia(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Media retrieved successfully", media, 0)
}

// UpdateMedia applies a partial metadata update
func (mc *MediaController) UpdateMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateMediaRequest
	if !bindJSON(c, &req) {
		return
	}
	media, err := mc.catalog.UpdateMedia(c.Request.Context(), currentUser(c).ID, id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Media updated successfully", media, 0)
}

// DeleteMedia removes the media from every playlist and deletes it
func (mc *MediaController) DeleteMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := mc.catalog.DeleteMedia(c.Request.Context(), currentUser(c).ID, id); err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Media deleted successfully", nil, 0)
}
