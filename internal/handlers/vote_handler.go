package handlers

import (
	"errors"
	"net/http"

	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// VoteHandler handles HTTP requests related to article votes
type VoteHandler struct {
	voteRepository         repositories.VoteRepository
	articleRepository      repositories.ArticleRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(
	voteRepo repositories.VoteRepository,
	articleRepo repositories.ArticleRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
) *VoteHandler {
	return &VoteHandler{
		voteRepository:         voteRepo,
		articleRepository:      articleRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterVoteRoutes registers vote-related routes
func (h *VoteHandler) RegisterVoteRoutes(g *echo.Group) {
	g.PUT("/articles/:id/vote", h.Vote)
	g.DELETE("/articles/:id/vote", h.Unvote)
	g.GET("/articles/:id/vote", h.GetVoteState)
}

// Vote records the authenticated user's up or down vote on an article.
// Voting again with the other direction flips the vote.
func (h *VoteHandler) Vote(c echo.Context) error {
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

	var req models.VoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	direction := models.VoteUp
	if req.Direction == "down" {
		direction = models.VoteDown
	}

	vote, err := h.voteRepository.UpsertVote(articleID, user.ID, direction)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.notificationRepository != nil && direction == models.VoteUp && article.AuthorID != user.ID {
		notif := &models.Notification{
			Type:        "vote",
			ActorID:     user.ID,
			RecipientID: article.AuthorID,
			TargetID:    articleID,
			TargetType:  "article",
			Message:     user.Name + " upvoted your article",
		}
		h.notificationRepository.CreateNotification(notif)
	}

	return c.JSON(http.StatusOK, vote)
}

// Unvote removes the authenticated user's vote from an article
func (h *VoteHandler) Unvote(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	articleID := c.Param("id")
	if err := h.voteRepository.DeleteVote(articleID, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Vote not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// GetVoteState returns vote tallies plus the viewer's own vote
func (h *VoteHandler) GetVoteState(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	articleID := c.Param("id")
	up, down, err := h.voteRepository.CountVotes(articleID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	viewerVote, err := h.voteRepository.GetUserVote(articleID, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"up_votes":    up,
		"down_votes":  down,
		"viewer_vote": viewerVote,
	})
}
