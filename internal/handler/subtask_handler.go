package handler

import (
	"net/http"

	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateSubtask godoc
// @Summary      Add a subtask to a task
// @Description  Status defaults to "To Do" and priority to "Medium". The assignee is given by username.
// @Tags         subtasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.CreateSubtaskInput  true  "Subtask"
// @Success      201   {object}  service.SubtaskView
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /create_subtask [post]
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	var req service.CreateSubtaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}
	// the legacy tasklist route carries the task in the path
	if taskID := c.Param("taskID"); taskID != "" {
		req.TaskID = taskID
	}

	subtask, err := h.tasks.CreateSubtask(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

// GetSubtasks godoc
// @Summary      List a task's subtasks, oldest first
// @Tags         subtasks
// @Produce      json
// @Security     BearerAuth
// @Param        taskID  path      string  true  "Task ID"
// @Success      200     {object}  map[string][]service.SubtaskView
// @Failure      404     {object}  ErrorResponse
// @Router       /get_subtasks/{taskID} [get]
func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	subtasks, err := h.tasks.ListSubtasks(c.Request.Context(), c.Param("taskID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

// UpdateSubtask godoc
// @Summary      Update the given fields of a subtask
// @Tags         subtasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        subtaskID  path      string                      true  "Subtask ID"
// @Param        body       body      service.UpdateSubtaskInput  true  "Fields to change"
// @Success      200        {object}  service.SubtaskView
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /update_subtask/{subtaskID} [put]
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	var req service.UpdateSubtaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	subtask, err := h.tasks.UpdateSubtask(c.Request.Context(), c.Param("subtaskID"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

// DeleteSubtask godoc
// @Summary      Delete a subtask
// @Tags         subtasks
// @Produce      json
// @Security     BearerAuth
// @Param        subtaskID  path      string  true  "Subtask ID"
// @Success      200        {object}  map[string]interface{}
// @Failure      404        {object}  ErrorResponse
// @Router       /delete_subtask/{subtaskID} [delete]
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	if err := h.tasks.DeleteSubtask(c.Request.Context(), c.Param("subtaskID")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
