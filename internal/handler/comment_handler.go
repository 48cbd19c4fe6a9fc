package handler

import (
	"net/http"

	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
)

// AddComment godoc
// @Summary      Comment on a task
// @Description  With a token the author is the caller, and any other userID is rejected.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.AddCommentInput  true  "Comment"
// @Success      201   {object}  service.CommentView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /add_comment [post]
func (h *TaskHandler) AddComment(c *gin.Context) {
	var req service.AddCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	comment, err := h.tasks.AddComment(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetComments godoc
// @Summary      List a task's comments, oldest first
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        taskID  query     string  true  "Task ID"
// @Success      200     {object}  map[string][]service.CommentView
// @Failure      404     {object}  ErrorResponse
// @Router       /get_comments [get]
func (h *TaskHandler) GetComments(c *gin.Context) {
	comments, err := h.tasks.ListComments(c.Request.Context(), c.Query("taskID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
