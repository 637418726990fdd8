package handlers

import (
	"net/http"
	"strconv"

	"github.com/hchm/symphony/internal/models"
	"github.com/hchm/symphony/internal/repositories"
	"github.com/labstack/echo/v4"
)

// currentUser resolves the authenticated user from whichever auth middleware
// ran: JWT claims carry the user id directly, Firebase leaves a UID that is
// looked up in the user store.
func currentUser(c echo.Context, users repositories.UserRepository) (*models.User, error) {
	if claims, ok := c.Get("user").(*models.JwtCustomClaims); ok {
		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found")
		}
		return user, nil
	}

	if uid, ok := c.Get("firebaseUID").(string); ok {
		user, err := users.GetUserByFirebaseUID(uid)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authenticated user not found")
		}
		return user, nil
	}

	return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
}

const maxPageQuerySize = 100

// pageParams reads 1-based "page" and "size" query parameters with defaults.
// Oversized "size" values are clamped so they never reach a repository limit.
func pageParams(c echo.Context) (page, size int) {
	page, size = 1, 20
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil && v > 0 {
		size = v
	}
	if size > maxPageQuerySize {
		size = maxPageQuerySize
	}
	return page, size
}
