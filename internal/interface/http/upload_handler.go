package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-api/internal/application"
	"github.com/loopline-app/loopline-api/pkg/response"
)

type UploadHandler struct {
	Svc    *application.UploadService
	Logger *logrus.Logger
}

func NewUploadHandler(svc *application.UploadService, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{Svc: svc, Logger: logger}
}

// SignedUploadURL GET /api/uploader/signed-upload-url?contentType=image/png
func (h *UploadHandler) SignedUploadURL(c *gin.Context) {
	contentType := c.Query("contentType")
	if contentType == "" {
		response.Error[any](c, http.StatusBadRequest, "missing required contentType query param", nil)
		return
	}
	fileName, uploadURL, err := h.Svc.SignedUploadURL(contentType)
	if err != nil {
		if errors.Is(err, application.ErrBadContentType) {
			response.Error[any](c, http.StatusBadRequest, "unsupported content type", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Error("signed url issuance failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"file_name": fileName, "upload_url": uploadURL}, "signed upload url", nil)
}
