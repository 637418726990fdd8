package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/hchm/symphony/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ArticleHandler handles HTTP requests related to articles
type ArticleHandler struct {
	articleRepository repositories.ArticleRepository
	commentRepository repositories.CommentRepository
	voteRepository    repositories.VoteRepository
	userRepository    repositories.UserRepository
	followQueries     *services.FollowQueryService
	filler            services.UserAnnotator
	shareBaseURL      string
	logger            *zap.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(
	articleRepo repositories.ArticleRepository,
	commentRepo repositories.CommentRepository,
	voteRepo repositories.VoteRepository,
	userRepo repositories.UserRepository,
	followQueries *services.FollowQueryService,
	filler services.UserAnnotator,
	shareBaseURL string,
	logger *zap.Logger,
) *ArticleHandler {
	return &ArticleHandler{
		articleRepository: articleRepo,
		commentRepository: commentRepo,
		voteRepository:    voteRepo,
		userRepository:    userRepo,
		followQueries:     followQueries,
		filler:            filler,
		shareBaseURL:      shareBaseURL,
		logger:            logger,
	}
}

// bumpViewCount increments an article's view counter in the background.
// The request context is canceled as soon as the handler returns, so the
// update runs on its own context.
func (h *ArticleHandler) bumpViewCount(articleID string) {
	go func() {
		if err := h.articleRepository.IncrementViewCount(context.Background(), articleID); err != nil {
			h.logger.Warn("failed to increment view count",
				zap.String("articleID", articleID), zap.Error(err))
		}
	}()
}

// RegisterArticleRoutes registers article-related routes
func (h *ArticleHandler) RegisterArticleRoutes(g *echo.Group) {
	g.POST("/articles", h.CreateArticle)
	g.GET("/articles", h.GetArticles)
	g.GET("/articles/:id", h.GetArticlePage)
	g.PUT("/articles/:id", h.UpdateArticle)
	g.DELETE("/articles/:id", h.DeleteArticle)
	g.POST("/articles/:id/share", h.ShareArticle)
}

// CreateArticle creates a new article
func (h *ArticleHandler) CreateArticle(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	article := &models.Article{
		AuthorID: user.ID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	}
	if err := h.articleRepository.CreateArticle(c.Request().Context(), article); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, article)
}

// GetArticles lists articles, newest first, optionally filtered by author
func (h *ArticleHandler) GetArticles(c echo.Context) error {
	page, size := pageParams(c)
	skip := int64((page - 1) * size)

	var (
		articles []models.Article
		err      error
	)
	if author := c.QueryParam("author"); author != "" {
		authorID, parseErr := strconv.ParseUint(author, 10, 32)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		articles, err = h.articleRepository.GetArticlesByAuthorID(c.Request().Context(), uint(authorID), skip, int64(size))
	} else {
		articles, err = h.articleRepository.GetAllArticles(c.Request().Context(), skip, int64(size))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"articles": articles, "page": page})
}

// GetArticlePage returns the assembled article detail view: the article,
// its author, the first comments page, vote tallies, the viewer's vote and
// whether the viewer follows the author.
func (h *ArticleHandler) GetArticlePage(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	articleID := c.Param("id")
	ctx := c.Request().Context()

	article, err := h.articleRepository.GetArticleByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	page, size := pageParams(c)
	comments, _, err := h.commentRepository.GetCommentsByArticleID(articleID, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	up, down, err := h.voteRepository.CountVotes(articleID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	viewerVote, err := h.voteRepository.GetUserVote(articleID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Author may have deleted their account; the page still renders.
	var author *models.User
	if a, err := h.userRepository.GetUserByID(article.AuthorID); err == nil {
		h.filler.FillThumbnailURL(a)
		author = a
	}

	authorKey := strconv.FormatUint(uint64(article.AuthorID), 10)
	followingAuthor := h.followQueries.IsFollowing(user.ID, authorKey, models.FollowingTypeUser)

	h.bumpViewCount(articleID)

	return c.JSON(http.StatusOK, models.ArticlePage{
		Article:         article,
		Author:          author,
		Comments:        comments,
		UpVotes:         up,
		DownVotes:       down,
		ViewerVote:      viewerVote,
		FollowingAuthor: followingAuthor,
	})
}

// UpdateArticle updates an article owned by the authenticated user
func (h *ArticleHandler) UpdateArticle(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	articleID := c.Param("id")
	ctx := c.Request().Context()

	article, err := h.articleRepository.GetArticleByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if article.AuthorID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the author of this article")
	}

	var req models.UpdateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Title != "" {
		article.Title = req.Title
	}
	if req.Content != "" {
		article.Content = req.Content
	}
	if req.Tags != nil {
		article.Tags = req.Tags
	}

	if err := h.articleRepository.UpdateArticle(ctx, articleID, article); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, article)
}

// DeleteArticle deletes an article owned by the authenticated user
func (h *ArticleHandler) DeleteArticle(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	articleID := c.Param("id")
	ctx := c.Request().Context()

	article, err := h.articleRepository.GetArticleByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if article.AuthorID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the author of this article")
	}

	if err := h.articleRepository.DeleteArticle(ctx, articleID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// ShareArticle returns a stable share link for an article, generating the
// share code on first use.
func (h *ArticleHandler) ShareArticle(c echo.Context) error {
	if _, err := currentUser(c, h.userRepository); err != nil {
		return err
	}

	articleID := c.Param("id")
	ctx := c.Request().Context()

	article, err := h.articleRepository.GetArticleByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if article.ShareCode == "" {
		article.ShareCode = uuid.NewString()
		if err := h.articleRepository.SetShareCode(ctx, articleID, article.ShareCode); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"share_url": h.shareBaseURL + "/s/" + article.ShareCode,
	})
}

// GetSharedArticle resolves a share code to its article. Unauthenticated.
func (h *ArticleHandler) GetSharedArticle(c echo.Context) error {
	article, err := h.articleRepository.GetArticleByShareCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.bumpViewCount(article.ID.Hex())

	return c.JSON(http.StatusOK, article)
}
