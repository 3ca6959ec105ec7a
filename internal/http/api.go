package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nanafox/user-management-system/internal/domain"
	"github.com/nanafox/user-management-system/internal/service"
)

const (
	defaultListLimit = 25

	internalErrorMessage = "An error while performing this action"
	internalErrorSteps   = "If the error persists, please contact the system administrator."
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users service.UserService
}

func NewHandler(users service.UserService) *Handler {
	return &Handler{users: users}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/status", h.status)
		api.POST("/users", h.createUser)
		api.GET("/users", h.getUsers)
		api.GET("/users/:id", h.getUserByID)
		api.PUT("/users", h.updateUserByUsername)
		api.PUT("/users/:id", h.updateUserByID)
		api.DELETE("/users", h.deleteUserByUsername)
		api.DELETE("/users/:id", h.deleteUserByID)
	}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

// UserResponse is the wire shape of a user. The password hash is never
// serialized.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Envelope is the response wrapper shared by all user endpoints.
type Envelope struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Data       any    `json:"data"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Envelope{
		Message:    "User created successfully",
		StatusCode: http.StatusCreated,
		Data:       userToResponse(*user),
	})
}

func (h *Handler) getUserByID(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Message:    "User data retrieval successful",
		StatusCode: http.StatusOK,
		Data:       userToResponse(*user),
	})
}

// getUsers lists users, or looks a single user up when the username query
// parameter is present.
func (h *Handler) getUsers(c *gin.Context) {
	if username := c.Query("username"); username != "" {
		user, err := h.users.GetByUsername(c.Request.Context(), username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, Envelope{
			Message:    "User data retrieval successful",
			StatusCode: http.StatusOK,
			Data:       userToResponse(*user),
		})
		return
	}

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skip parameter"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
		return
	}

	users, err := h.users.List(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, Envelope{
		Message:    "User data retrieval successful",
		StatusCode: http.StatusOK,
		Data:       resp,
	})
}

func (h *Handler) updateUserByID(c *gin.Context) {
	h.updateUser(c, service.SelectorID, c.Param("id"))
}

func (h *Handler) updateUserByUsername(c *gin.Context) {
	username, ok := requireUsernameQuery(c)
	if !ok {
		return
	}
	h.updateUser(c, service.SelectorUsername, username)
}

func (h *Handler) updateUser(c *gin.Context, by service.Selector, value string) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), by, value, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Envelope{
		Message:    "User updated successfully",
		StatusCode: http.StatusOK,
		Data:       userToResponse(*user),
	})
}

func (h *Handler) deleteUserByID(c *gin.Context) {
	h.deleteUser(c, service.SelectorID, c.Param("id"))
}

func (h *Handler) deleteUserByUsername(c *gin.Context) {
	username, ok := requireUsernameQuery(c)
	if !ok {
		return
	}
	h.deleteUser(c, service.SelectorUsername, username)
}

func (h *Handler) deleteUser(c *gin.Context, by service.Selector, value string) {
	if err := h.users.Delete(c.Request.Context(), by, value); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func requireUsernameQuery(c *gin.Context) (string, bool) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username query parameter is required"})
		return "", false
	}
	return username, true
}

// writeError maps service errors onto HTTP responses. Anything outside the
// known taxonomy is reported generically, without internal details.
func writeError(c *gin.Context, err error) {
	var validation service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      internalErrorMessage,
			"next_steps": internalErrorSteps,
		})
	}
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
