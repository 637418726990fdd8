package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	articleRepository      repositories.ArticleRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	logger                 *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	articleRepo repositories.ArticleRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	logger *zap.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		articleRepository:      articleRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		logger:                 logger,
	}
}

// adjustCommentsCount updates an article's denormalized comment counter in
// the background. The request context is canceled as soon as the handler
// returns, so the update runs on its own context.
func (h *CommentHandler) adjustCommentsCount(articleID string, delta int) {
	go func() {
		var err error
		if delta > 0 {
			err = h.articleRepository.IncrementCommentsCount(context.Background(), articleID)
		} else {
			err = h.articleRepository.DecrementCommentsCount(context.Background(), articleID)
		}
		if err != nil {
			h.logger.Warn("failed to adjust comments count",
				zap.String("articleID", articleID), zap.Int("delta", delta), zap.Error(err))
		}
	}()
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/articles/:id/comments", h.CreateComment)
	g.GET("/articles/:id/comments", h.GetComments)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to an article
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	articleID := c.Param("id")
	article, err := h.articleRepository.GetArticleByID(c.Request().Context(), articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment := &models.Comment{
		ArticleID: articleID,
		UserID:    user.ID,
		Content:   req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.adjustCommentsCount(articleID, 1)

	// Notify the article author, unless they commented on their own article
	if h.notificationRepository != nil && article.AuthorID != user.ID {
		notif := &models.Notification{
			Type:        "comment",
			ActorID:     user.ID,
			RecipientID: article.AuthorID,
			TargetID:    articleID,
			TargetType:  "article",
			Message:     user.Name + " commented on your article",
		}
		h.notificationRepository.CreateNotification(notif)
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments lists one page of an article's comments in posting order
func (h *CommentHandler) GetComments(c echo.Context) error {
	articleID := c.Param("id")
	page, size := pageParams(c)

	comments, total, err := h.commentRepository.GetCommentsByArticleID(articleID, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"comments": comments,
		"total":    total,
		"page":     page,
	})
}

// DeleteComment deletes a comment owned by the authenticated user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the author of this comment")
	}

	if err := h.commentRepository.DeleteComment(uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.adjustCommentsCount(comment.ArticleID, -1)

	return c.NoContent(http.StatusNoContent)
}
