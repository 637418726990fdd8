package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hchm/symphony/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// NotificationHandler handles HTTP requests related to notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications lists the authenticated user's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	page, size := pageParams(c)
	notifications, total, err := h.notificationRepository.GetByRecipientID(user.ID, page, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"total":         total,
		"page":          page,
	})
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkAsRead marks one of the authenticated user's notifications as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.notificationRepository.MarkAsRead(uint(id), user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks all of the authenticated user's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	if err := h.notificationRepository.MarkAllAsRead(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
