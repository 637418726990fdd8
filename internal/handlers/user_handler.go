package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/hchm/symphony/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	filler         services.UserAnnotator
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, filler services.UserAnnotator) *UserHandler {
	return &UserHandler{userRepository: userRepo, filler: filler}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.POST("/profile", h.CreateProfile) // Bind a profile to the authenticated identity
	g.GET("/profile", h.GetProfile)     // Get own profile
	g.PUT("/profile", h.UpdateProfile)  // Update own profile
	g.DELETE("/profile", h.DeleteProfile)
	g.GET("/users/:id", h.GetUser) // Get other user's profile by ID
	g.GET("/users/search", h.SearchUsers)
}

// CreateProfile creates the local user record for a Firebase identity
func (h *UserHandler) CreateProfile(c echo.Context) error {
	uid, ok := c.Get("firebaseUID").(string)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Profile creation requires Firebase authentication")
	}

	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.FirebaseUID = uid
	if err := c.Validate(&req); err != nil {
		return err
	}

	if existing, err := h.userRepository.GetUserByFirebaseUID(uid); err == nil {
		h.filler.FillThumbnailURL(existing)
		return c.JSON(http.StatusOK, existing)
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		FirebaseUID: uid,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.filler.FillThumbnailURL(user)
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.filler.FillThumbnailURL(user)
	return c.JSON(http.StatusOK, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}
	h.filler.FillThumbnailURL(user)
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.filler.FillThumbnailURL(user)
	return c.JSON(http.StatusOK, user)
}

// DeleteProfile deletes the authenticated user's profile
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	if err := h.userRepository.DeleteUser(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// SearchUsers searches users by name or email
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query")
	}

	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	for i := range users {
		h.filler.FillThumbnailURL(&users[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}
