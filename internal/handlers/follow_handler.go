package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/hchm/symphony/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow and follow graph query HTTP requests
type FollowHandler struct {
	followService *services.FollowService
	followQueries *services.FollowQueryService
	userRepo      repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService *services.FollowService, followQueries *services.FollowQueryService, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		followQueries: followQueries,
		userRepo:      userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follow/:type/:id", h.Follow)
	g.DELETE("/follow/:type/:id", h.Unfollow)
	g.GET("/follow/:type/:id/status", h.FollowStatus)
	g.GET("/following/tags", h.GetFollowingTags)
	g.GET("/users/:id/following", h.GetFollowingUsers)
	g.GET("/users/:id/followers", h.GetFollowerUsers)
	g.GET("/users/:id/follow-counts", h.GetFollowCounts)
}

func followTarget(c echo.Context) (models.FollowingType, string, error) {
	followingType, ok := models.ParseFollowingType(c.Param("type"))
	if !ok {
		return 0, "", echo.NewHTTPError(http.StatusBadRequest, "Invalid following type")
	}
	followingID := c.Param("id")
	if followingID == "" {
		return 0, "", echo.NewHTTPError(http.StatusBadRequest, "Missing target ID")
	}
	return followingType, followingID, nil
}

// Follow creates a follow edge from the authenticated user to the target
func (h *FollowHandler) Follow(c echo.Context) error {
	user, err := currentUser(c, h.userRepo)
	if err != nil {
		return err
	}

	followingType, followingID, err := followTarget(c)
	if err != nil {
		return err
	}

	if err := h.followService.Follow(c.Request().Context(), user.ID, followingID, followingType); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFollow):
			return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
		case errors.Is(err, services.ErrAlreadyFollowing):
			return echo.NewHTTPError(http.StatusConflict, "Already following this target")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// Unfollow removes the follow edge from the authenticated user to the target
func (h *FollowHandler) Unfollow(c echo.Context) error {
	user, err := currentUser(c, h.userRepo)
	if err != nil {
		return err
	}

	followingType, followingID, err := followTarget(c)
	if err != nil {
		return err
	}

	if err := h.followService.Unfollow(c.Request().Context(), user.ID, followingID, followingType); err != nil {
		if errors.Is(err, services.ErrNotFollowing) {
			return echo.NewHTTPError(http.StatusNotFound, "Follow relationship not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// FollowStatus reports whether the authenticated user follows the target
func (h *FollowHandler) FollowStatus(c echo.Context) error {
	user, err := currentUser(c, h.userRepo)
	if err != nil {
		return err
	}

	followingType, followingID, err := followTarget(c)
	if err != nil {
		return err
	}

	following := h.followQueries.IsFollowing(user.ID, followingID, followingType)
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// GetFollowingTags returns the tags the authenticated user follows
func (h *FollowHandler) GetFollowingTags(c echo.Context) error {
	user, err := currentUser(c, h.userRepo)
	if err != nil {
		return err
	}

	page, size := pageParams(c)
	tags := h.followQueries.GetFollowingTags(user.ID, page, size)
	return c.JSON(http.StatusOK, echo.Map{"tags": tags, "page": page})
}

// GetFollowingUsers returns the users a user follows, newest first
func (h *FollowHandler) GetFollowingUsers(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, size := pageParams(c)
	users := h.followQueries.GetFollowingUsers(uint(id), page, size)
	return c.JSON(http.StatusOK, echo.Map{"users": users, "page": page})
}

// GetFollowerUsers returns the users following a user, newest first
func (h *FollowHandler) GetFollowerUsers(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, size := pageParams(c)
	users := h.followQueries.GetFollowerUsers(uint(id), page, size)
	return c.JSON(http.StatusOK, echo.Map{"users": users, "page": page})
}

// GetFollowCounts returns follower and following counts for a user
func (h *FollowHandler) GetFollowCounts(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, echo.Map{
		"followers": h.followQueries.CountFollowers(ctx, uint(id)),
		"following": h.followQueries.CountFollowing(ctx, uint(id)),
	})
}
