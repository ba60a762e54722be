package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-api/internal/application"
	"github.com/loopline-app/loopline-api/internal/interface/middleware"
	"github.com/loopline-app/loopline-api/pkg/response"
	"github.com/loopline-app/loopline-api/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Uploads *application.UploadService
	Logger  *logrus.Logger
}

func NewUserHandler(svc *application.UserService, uploads *application.UploadService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Uploads: uploads, Logger: logger}
}

// Me GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":                 u.ID,
		"email":              u.Email,
		"first_name":         u.FirstName,
		"last_name":          u.LastName,
		"about":              u.About,
		"profile_pic":        u.ProfilePic,
		"profile_background": u.ProfileBackground,
		"email_verified":     u.EmailVerified,
		"created_at":         u.CreatedAt,
		"updated_at":         u.UpdatedAt,
	}, "profile", nil)
}

type updateProfileRequest struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	About             string `json:"about"`
	ProfilePic        string `json:"profile_pic"`
	ProfileBackground string `json:"profile_background"`
}

// UpdateProfile PUT /api/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		About:             req.About,
		ProfilePic:        req.ProfilePic,
		ProfileBackground: req.ProfileBackground,
	})
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":                 u.ID,
		"email":              u.Email,
		"first_name":         u.FirstName,
		"last_name":          u.LastName,
		"about":              u.About,
		"profile_pic":        u.ProfilePic,
		"profile_background": u.ProfileBackground,
		"updated_at":         u.UpdatedAt,
	}, "profile updated", nil)
}

// UploadAvatar POST /api/me/avatar (multipart form, field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Uploads.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("avatar upload failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	if _, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{ProfilePic: url}); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to update profile", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile_pic": url}, "avatar updated", nil)
}

// Search GET /api/users/search?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing q parameter", nil)
		return
	}
	size := 10
	if s := c.Query("size"); s != "" {
		if n, err := atoiSafe(s); err == nil {
			size = n
		}
	}
	res, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("user search failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "search results", map[string]any{"count": len(res)})
}
