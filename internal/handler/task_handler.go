package handler

import (
	"net/http"

	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	tasks   *service.TaskService
	queries *service.QueryService
	log     logrus.FieldLogger
}

func NewTaskHandler(tasks *service.TaskService, queries *service.QueryService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, queries: queries, log: log}
}

// GetTasks godoc
// @Summary      List tasks of a project or of an assignee
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectID   query     string  false  "Project ID"
// @Param        assignedTo  query     string  false  "Assignee user ID"
// @Success      200         {object}  map[string][]service.TaskView
// @Failure      400         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /get_tasks [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := c.Query("projectID")
	assignedTo := c.Query("assignedTo")

	var (
		tasks []service.TaskView
		err   error
	)
	switch {
	case projectID != "":
		tasks, err = h.queries.ListTasksForProject(ctx, projectID, assignedTo)
	case assignedTo != "":
		tasks, err = h.queries.ListTasksForAssignee(ctx, assignedTo)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectID or assignedTo is required"})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Create godoc
// @Summary      Create a task
// @Description  New tasks start in the "To Do" column with "Medium" priority unless told otherwise.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.CreateTaskInput  true  "Task"
// @Success      201   {object}  service.TaskView
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /create_task [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary      Replace a task's editable fields
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskID  path      string                   true  "Task ID"
// @Param        body    body      service.UpdateTaskInput  true  "Task"
// @Success      200     {object}  service.TaskView
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /update_task/{taskID} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var req service.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("taskID"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Move godoc
// @Summary      Move a task one board column forward (1) or back (-1)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskID  path      string                 true  "Task ID"
// @Param        body    body      service.MoveTaskInput  true  "Direction"
// @Success      200     {object}  service.TaskView
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /tasks/{taskID}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	var req service.MoveTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	task, err := h.tasks.MoveTask(c.Request.Context(), c.Param("taskID"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task with its comments and subtasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        taskID  path      string  true  "Task ID"
// @Success      200     {object}  map[string]interface{}
// @Failure      404     {object}  ErrorResponse
// @Router       /delete_task/{taskID} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), c.Param("taskID")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
