// Package api exposes the domain services over a JSON REST surface. Handlers
// stay thin: decode, resolve the actor, delegate to a service, map errors.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive-io/taskhive-ce/internal/auth"
	"github.com/taskhive-io/taskhive-ce/internal/models"
	"github.com/taskhive-io/taskhive-ce/internal/service"
)

// Server bundles the services the HTTP layer delegates to.
type Server struct {
	users    *service.UserService
	groups   *service.GroupService
	projects *service.ProjectService
	tasks    *service.TaskService
	jwt      *auth.JWTManager
}

func NewServer(users *service.UserService, groups *service.GroupService, projects *service.ProjectService, tasks *service.TaskService, jwt *auth.JWTManager) *Server {
	return &Server{
		users:    users,
		groups:   groups,
		projects: projects,
		tasks:    tasks,
		jwt:      jwt,
	}
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleLogin)

	authed := v1.Group("")
	authed.Use(s.requireAuth())
	{
		authed.GET("/users", s.handleListUsers)
		authed.GET("/users/me", s.handleCurrentUser)
		authed.GET("/users/:id", s.handleGetUser)
		authed.PATCH("/users/:id", s.handleUpdateUser)

		authed.POST("/groups", s.handleCreateGroup)
		authed.GET("/groups", s.handleListGroups)
		authed.GET("/groups/:id", s.handleGetGroup)
		authed.PATCH("/groups/:id", s.handleUpdateGroup)
		authed.DELETE("/groups/:id", s.handleDeleteGroup)
		authed.GET("/groups/:id/members", s.handleListMembers)
		authed.POST("/groups/:id/members", s.handleAddMember)
		authed.PATCH("/groups/:id/members/:userID", s.handleUpdateMemberRole)
		authed.DELETE("/groups/:id/members/:userID", s.handleRemoveMember)

		authed.POST("/projects", s.handleCreateProject)
		authed.GET("/projects", s.handleListProjects)
		authed.GET("/projects/:id", s.handleGetProject)
		authed.PATCH("/projects/:id", s.handleUpdateProject)
		authed.DELETE("/projects/:id", s.handleDeleteProject)

		authed.POST("/tasks", s.handleCreateTask)
		authed.GET("/tasks", s.handleListTasks)
		authed.GET("/tasks/:id", s.handleGetTask)
		authed.PATCH("/tasks/:id", s.handleUpdateTask)
		authed.POST("/tasks/:id/status", s.handleChangeTaskStatus)
		authed.DELETE("/tasks/:id", s.handleDeleteTask)
		authed.GET("/tasks/:id/comments", s.handleListComments)
		authed.POST("/tasks/:id/comments", s.handleAddComment)
		authed.DELETE("/tasks/:id/comments/:commentID", s.handleDeleteComment)
	}
}

// actor returns the authenticated user placed in the context by requireAuth.
func actor(c *gin.Context) *models.User {
	u, _ := c.MustGet(contextUserKey).(*models.User)
	return u
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func pagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return skip, limit
}

// writeError maps domain sentinel errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
