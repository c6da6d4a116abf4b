package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdantlab/planthub/internal/storage"
)

type BlobStore interface {
	Save(originalName string, size int64, r io.Reader) (string, error)
	Delete(name string) error
	MaxBytes() int64
}

// UploadsHandler fronts the two blob stores: plant/room images and
// trained model files.
type UploadsHandler struct {
	images BlobStore
	models BlobStore
}

func NewUploadsHandler(images, models BlobStore) *UploadsHandler {
	return &UploadsHandler{images: images, models: models}
}

type deleteFileRequest struct {
	Filename string `json:"filename" binding:"required"`
}

func (h *UploadsHandler) UploadImage(ctx *gin.Context) {
	h.upload(ctx, h.images, "image")
}

func (h *UploadsHandler) UploadModel(ctx *gin.Context) {
	h.upload(ctx, h.models, "model")
}

func (h *UploadsHandler) upload(ctx *gin.Context, store BlobStore, field string) {
	fileHeader, err := ctx.FormFile(field)

	if err != nil {
		RespondBadRequest(ctx, "no_file", "No file uploaded", nil)
		return
	}

	f, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	defer f.Close()

	name, err := store.Save(fileHeader.Filename, fileHeader.Size, f)

	if err != nil {
		switch {
		case errors.Is(err, storage.ErrBadExtension):
			RespondBadRequest(ctx, "bad_extension", "File extension is not allowed for this upload.", nil)
		case errors.Is(err, storage.ErrTooLarge):
			RespondBadRequest(ctx, "file_too_large", "File exceeds the size limit.", nil)
		case errors.Is(err, storage.ErrBadFilename):
			RespondBadRequest(ctx, "bad_filename", "Invalid filename.", nil)
		default:
			RespondInternal(ctx, "Could not store upload")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"filename": name,
	})
}

func (h *UploadsHandler) DeleteImage(ctx *gin.Context) {
	h.deleteFile(ctx, h.images)
}

func (h *UploadsHandler) DeleteModel(ctx *gin.Context) {
	h.deleteFile(ctx, h.models)
}

func (h *UploadsHandler) deleteFile(ctx *gin.Context, store BlobStore) {
	var req deleteFileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	err := store.Delete(req.Filename)

	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			RespondNotFound(ctx, "File not found")
		case errors.Is(err, storage.ErrBadFilename):
			RespondBadRequest(ctx, "bad_filename", "Invalid filename.", nil)
		default:
			RespondInternal(ctx, "Could not delete file")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "File deleted successfully",
	})
}
