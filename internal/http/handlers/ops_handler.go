package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bridgeos/bridgeos/internal/http/response"
	"github.com/bridgeos/bridgeos/internal/pkg/logger"
	"github.com/bridgeos/bridgeos/internal/services/connection"
	"github.com/bridgeos/bridgeos/internal/services/tasks"
	"github.com/bridgeos/bridgeos/internal/services/usage"
)

// OpsHandler exposes the small bearer-JWT-protected read surface named in
// spec §6 for the out-of-scope admin dashboard to poll.
type OpsHandler struct {
	connections *connection.Service
	tasks       *tasks.Service
	usage       *usage.Service
	log         *logger.Logger
}

func NewOpsHandler(connections *connection.Service, tasksSvc *tasks.Service, usageSvc *usage.Service, log *logger.Logger) *OpsHandler {
	return &OpsHandler{connections: connections, tasks: tasksSvc, usage: usageSvc, log: log.With("handler", "OpsHandler")}
}

func (h *OpsHandler) ListConnections(c *gin.Context) {
	managerID, ok := parseInt64Query(c, "manager_id")
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", nil)
		return
	}
	rows, err := h.connections.ListActiveForManager(c.Request.Context(), managerID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_connections_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"connections": rows})
}

func (h *OpsHandler) ListTasks(c *gin.Context) {
	managerID, ok := parseInt64Query(c, "manager_id")
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", nil)
		return
	}
	rows, err := h.tasks.ListForManager(c.Request.Context(), managerID, nil)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_tasks_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": rows})
}

func (h *OpsHandler) GetUsage(c *gin.Context) {
	managerID, err := strconv.ParseInt(c.Param("manager_id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_manager_id", err)
		return
	}
	row, err := h.usage.Get(c.Request.Context(), managerID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "get_usage_failed", err)
		return
	}
	response.RespondOK(c, row)
}

func parseInt64Query(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
