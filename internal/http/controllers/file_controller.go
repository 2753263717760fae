package controllers

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"signage_server/internal/apperr"
	"signage_server/internal/assets"

	"github.com/gin-gonic/gin"
)

// FileController serves payloads kept by the local asset store
type FileController struct {
	store *assets.LocalStore
}

// NewFileController creates a new file controller
func NewFileController(store *assets.LocalStore) *FileController {
	return &FileController{store: store}
}

// ServeFile streams the payload named by the *ref path parameter
func (fc *FileController) ServeFile(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")
	path, err := fc.store.Path(ref)
	if err == nil {
		var info os.FileInfo
		info, err = os.Stat(path)
		if err == nil && info.IsDir() {
			err = fs.ErrNotExist
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			RespondError(c, apperr.NotFound("file not found"))
			return
		}
		RespondError(c, err)
		return
	}
	c.File(path)
}
