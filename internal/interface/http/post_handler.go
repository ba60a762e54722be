package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-api/internal/application"
	"github.com/loopline-app/loopline-api/internal/domain/entity"
	"github.com/loopline-app/loopline-api/internal/domain/repository"
	"github.com/loopline-app/loopline-api/internal/interface/middleware"
	"github.com/loopline-app/loopline-api/pkg/response"
	"github.com/loopline-app/loopline-api/pkg/validation"
)

type PostHandler struct {
	Svc    *application.FeedService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.FeedService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type imagePayload struct {
	URL string `json:"url" binding:"required"`
}

type createPostRequest struct {
	Content string         `json:"content" binding:"required"`
	Images  []imagePayload `json:"images" binding:"required,dive"`
}

// Create POST /api/posts
// Images is required but may be an empty list.
func (h *PostHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	images := make([]entity.Image, 0, len(req.Images))
	for _, im := range req.Images {
		images = append(images, entity.Image{URL: im.URL})
	}
	p, err := h.Svc.CreatePost(c.Request.Context(), uid, application.CreatePostInput{Content: req.Content, Images: images})
	if err != nil {
		h.fail(c, err, "create post failed")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"post_id": p.ID}, "post created", nil)
}

type contentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment POST /api/posts/:postId/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	commentID, err := h.Svc.AddComment(c.Request.Context(), c.Param("postId"), uid, req.Content)
	if err != nil {
		h.fail(c, err, "add comment failed")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"comment_id": commentID}, "comment added", nil)
}

// AddReply POST /api/posts/:postId/comments/:commentId/replies
func (h *PostHandler) AddReply(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Svc.AddReply(c.Request.Context(), c.Param("postId"), c.Param("commentId"), uid, req.Content)
	if err != nil {
		h.fail(c, err, "add reply failed")
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{"replied": true}, "reply added", nil)
}

// Like POST /api/posts/:postId/like
func (h *PostHandler) Like(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Like(c.Request.Context(), c.Param("postId"), uid); err != nil {
		h.fail(c, err, "like failed")
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"liked": true}, "post liked", nil)
}

// Unlike POST /api/posts/:postId/unlike
func (h *PostHandler) Unlike(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Unlike(c.Request.Context(), c.Param("postId"), uid); err != nil {
		h.fail(c, err, "unlike failed")
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"unliked": true}, "post unliked", nil)
}

// View POST /api/posts/:postId/view
func (h *PostHandler) View(c *gin.Context) {
	count, err := h.Svc.RecordView(c.Request.Context(), c.Param("postId"))
	if err != nil {
		h.fail(c, err, "record view failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"view_count": count}, "view recorded", nil)
}

// Feed GET /api/posts
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.Svc.Feed(c.Request.Context())
	if err != nil {
		h.fail(c, err, "feed failed")
		return
	}
	response.Success(c, http.StatusOK, posts, "feed", map[string]any{"count": len(posts)})
}

// MyPosts GET /api/posts/mine
func (h *PostHandler) MyPosts(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	posts, err := h.Svc.MyPosts(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err, "my posts failed")
		return
	}
	response.Success(c, http.StatusOK, posts, "my posts", map[string]any{"count": len(posts)})
}

// fail maps domain errors onto the response envelope; anything unexpected
// is logged and reported as a generic failure.
func (h *PostHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		response.Error[any](c, http.StatusNotFound, "post not found", nil)
	case errors.Is(err, entity.ErrCommentNotFound):
		response.Error[any](c, http.StatusNotFound, "comment not found", nil)
	case errors.Is(err, entity.ErrAlreadyLiked):
		response.Error[any](c, http.StatusConflict, "post already liked", nil)
	case errors.Is(err, entity.ErrNotLiked):
		response.Error[any](c, http.StatusConflict, "post not liked", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusUnauthorized, "user not authorized", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error(msg)
		}
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
	}
}

func atoiSafe(s string) (int, error) {
	return strconv.Atoi(s)
}
