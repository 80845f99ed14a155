package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/internal/services"
	"github.com/hanjob/resume-api/pkg/logger"
)

// MaxUploadRequestSize bounds a multipart upload request: the attachment
// ceiling plus room for multipart framing.
const MaxUploadRequestSize = draft.MaxAttachmentSize + 1<<20

type AttachmentHandler struct {
	service services.DraftSessionServiceInterface
}

func NewAttachmentHandler(service services.DraftSessionServiceInterface) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

type uploadForm struct {
	Source string `form:"source" binding:"omitempty,oneof=select drop"`
}

// Upload handles POST /api/v1/resume/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		if tooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, "File is too large", err)
			return
		}
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, "File is too large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "File is required", err)
		return
	}

	session, ok := lookupSession(c, h.service)
	if !ok {
		return
	}

	// Reject before opening the part so nothing is read for invalid files.
	if err := draft.CheckUpload(fh.Filename, fh.Size); err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read file", err)
		return
	}
	defer f.Close()

	file := models.UploadFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}

	var res models.UploadResult
	if models.UploadSource(form.Source) == models.UploadSourceDrop {
		res = session.DropFile(c.Request.Context(), file)
	} else {
		res = session.SelectFileForUpload(c.Request.Context(), file)
	}

	switch {
	case res.Success:
		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"message":    res.Message,
			"attachment": res.Attachment,
		})
	case res.Precondition:
		respondError(c, http.StatusBadRequest, res.Err.Error(), res.Err)
	case errors.Is(res.Err, draft.ErrUploadCanceled):
		respondError(c, http.StatusConflict, "Upload canceled", res.Err)
	default:
		logger.Warn("Attachment upload failed",
			zap.String("draft_id", session.DraftID()),
			zap.String("file_name", fh.Filename),
			zap.Error(res.Err))
		respondError(c, statusFor(res.Err), "Failed to upload file", res.Err)
	}
}

// Delete handles DELETE /api/v1/resume/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	session, ok := lookupSession(c, h.service)
	if !ok {
		return
	}

	res := session.DeleteFile(c.Request.Context(), c.Param("id"))
	if !res.Success {
		respondError(c, statusFor(res.Err), "Failed to delete file", res.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": res.Message})
}

// tooLarge reports whether err came from the body size limit. The multipart
// reader does not always wrap the limit error, so the message is checked too.
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
