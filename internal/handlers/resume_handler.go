package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/middleware"
	"github.com/hanjob/resume-api/internal/models"
	"github.com/hanjob/resume-api/internal/services"
)

// maxFieldLength caps a single form value.
const maxFieldLength = 5000

type ResumeHandler struct {
	service services.DraftSessionServiceInterface
	cookie  middleware.CookieConfig
}

func NewResumeHandler(service services.DraftSessionServiceInterface, cookie middleware.CookieConfig) *ResumeHandler {
	return &ResumeHandler{
		service: service,
		cookie:  cookie,
	}
}

type updateFieldRequest struct {
	Value *string `json:"value" binding:"required"`
}

type startSessionResponse struct {
	DraftID   string     `json:"draftId"`
	Token     string     `json:"token"`
	ExpiresIn int        `json:"expiresIn"`
	View      draft.View `json:"view"`
}

type commandResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	View    draft.View `json:"view"`
}

// StartSession handles POST /api/v1/resume/sessions
func (h *ResumeHandler) StartSession(c *gin.Context) {
	session, token, err := h.service.StartSession(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), "Failed to start draft session", err)
		return
	}

	middleware.SetSessionCookie(c, token, h.cookie)
	c.JSON(http.StatusCreated, startSessionResponse{
		DraftID:   session.DraftID(),
		Token:     token,
		ExpiresIn: h.cookie.TTLSeconds,
		View:      session.View(),
	})
}

// GetSession handles GET /api/v1/resume/session
func (h *ResumeHandler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// EndSession handles DELETE /api/v1/resume/session
func (h *ResumeHandler) EndSession(c *gin.Context) {
	draftID, err := middleware.GetDraftID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := h.service.EndSession(c.Request.Context(), draftID); err != nil {
		respondError(c, statusFor(err), "Failed to end draft session", err)
		return
	}

	middleware.ClearSessionCookie(c, h.cookie)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateField handles PUT /api/v1/resume/fields/:field
func (h *ResumeHandler) UpdateField(c *gin.Context) {
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}
	if len(*req.Value) > maxFieldLength {
		respondError(c, http.StatusBadRequest, "Value is too long", nil)
		return
	}

	session, ok := h.session(c)
	if !ok {
		return
	}

	if err := session.EditField(c.Param("field"), *req.Value); err != nil {
		if errors.Is(err, models.ErrUnknownField) {
			respondError(c, http.StatusBadRequest, "Unknown field", err)
			return
		}
		respondError(c, statusFor(err), err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, session.View())
}

// Save handles POST /api/v1/resume/save
func (h *ResumeHandler) Save(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	res := session.RequestSave(c.Request.Context())
	switch {
	case res.Success:
		c.JSON(http.StatusOK, commandResponse{Success: true, Message: res.Message, View: session.View()})
	case errors.Is(res.Err, draft.ErrValidation):
		respondValidationErrors(c, res.ValidationErrors)
	default:
		respondError(c, statusFor(res.Err), "Failed to save draft", res.Err)
	}
}

// Submit handles POST /api/v1/resume/submit
func (h *ResumeHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	res := session.RequestSubmit(c.Request.Context())
	switch {
	case res.Success:
		c.JSON(http.StatusOK, commandResponse{Success: true, Message: res.Message, View: session.View()})
	case errors.Is(res.Err, draft.ErrValidation):
		respondValidationErrors(c, res.ValidationErrors)
	case errors.Is(res.Err, draft.ErrSubmitInProgress):
		respondError(c, http.StatusConflict, "Submission already in progress", res.Err)
	default:
		respondError(c, statusFor(res.Err), "Failed to submit resume", res.Err)
	}
}

// OpenPreview handles POST /api/v1/resume/preview/open
func (h *ResumeHandler) OpenPreview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.OpenPreview()
	c.JSON(http.StatusOK, session.View())
}

// ClosePreview handles POST /api/v1/resume/preview/close
func (h *ResumeHandler) ClosePreview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.ClosePreview()
	c.JSON(http.StatusOK, session.View())
}

// GetPreview handles GET /api/v1/resume/preview
func (h *ResumeHandler) GetPreview(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Preview())
}

// GetOptions handles GET /api/v1/resume/options
func (h *ResumeHandler) GetOptions(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, models.DefaultFormOptions())
}

// session resolves the draft session of the request, writing the error
// response itself when it cannot.
func (h *ResumeHandler) session(c *gin.Context) (*draft.Session, bool) {
	return lookupSession(c, h.service)
}

func lookupSession(c *gin.Context, service services.DraftSessionServiceInterface) (*draft.Session, bool) {
	draftID, err := middleware.GetDraftID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, false
	}

	session, err := service.GetSession(c.Request.Context(), draftID)
	if err != nil {
		respondError(c, statusFor(err), "Failed to load draft", err)
		return nil, false
	}
	return session, true
}
