package handler

import (
	"net/http"

	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProjectHandler struct {
	projects *service.ProjectService
	queries  *service.QueryService
	log      logrus.FieldLogger
}

func NewProjectHandler(projects *service.ProjectService, queries *service.QueryService, log logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{projects: projects, queries: queries, log: log}
}

type addMemberRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// GetProjects godoc
// @Summary      One project by projectID, or every project of userID
// @Description  With projectID the response is {project, memberProfiles}. With userID it is {projects}. Without either the caller's projects are listed.
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  query     string  false  "Project ID"
// @Param        userID     query     string  false  "User ID"
// @Success      200        {object}  map[string]interface{}
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /get_projects [get]
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	ctx := c.Request.Context()

	if projectID := c.Query("projectID"); projectID != "" {
		project, err := h.queries.GetProject(ctx, projectID)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		profiles := project.MemberProfiles
		project.MemberProfiles = nil
		c.JSON(http.StatusOK, gin.H{"project": project, "memberProfiles": profiles})
		return
	}

	userID := c.Query("userID")
	if userID == "" {
		userID = actorID(c)
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userID or projectID is required"})
		return
	}

	projects, err := h.queries.ListProjectsForUser(ctx, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Create godoc
// @Summary      Create a project
// @Description  The owner is always added to the members. Unknown member IDs are listed in invalidMembers. With a token the caller is the owner.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.CreateProjectInput  true  "Project"
// @Success      201   {object}  service.ProjectView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /create_project [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Update godoc
// @Summary      Partially update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.UpdateProjectInput  true  "Changes"
// @Success      200   {object}  service.ProjectView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /update_project [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req service.UpdateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// AddMember godoc
// @Summary      Add a member to a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string            true  "Project ID"
// @Param        body       body      addMemberRequest  true  "Member"
// @Success      200        {object}  service.ProjectView
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /projects/{projectID}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	project, err := h.projects.AddMember(c.Request.Context(), actorID(c), c.Param("projectID"), req.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// RemoveMember godoc
// @Summary      Remove a member from a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  path      string  true  "Project ID"
// @Param        userID     path      string  true  "User ID"
// @Success      200        {object}  service.ProjectView
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /projects/{projectID}/members/{userID} [delete]
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, err := h.projects.RemoveMember(c.Request.Context(), actorID(c), c.Param("projectID"), c.Param("userID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Overview godoc
// @Summary      Project header with per-task comment counts
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectID  query     string  true  "Project ID"
// @Success      200        {object}  service.ProjectOverview
// @Failure      404        {object}  ErrorResponse
// @Router       /get_project_overview [get]
func (h *ProjectHandler) Overview(c *gin.Context) {
	overview, err := h.queries.ProjectOverview(c.Request.Context(), c.Query("projectID"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
