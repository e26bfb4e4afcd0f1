package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

// IssueHandler handles HTTP requests for issue operations.
type IssueHandler struct {
	service ports.IssueService
}

func NewIssueHandler(service ports.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// List returns issues matching the query filters, most recently updated first.
//
// @Summary      List issues
// @Tags         issues
// @Produce      json
// @Param        status      query  string  false  "Status filter"
// @Param        category    query  string  false  "Category filter"
// @Param        priority    query  string  false  "Priority filter"
// @Param        department  query  string  false  "Department filter"
// @Param        assignedTo  query  string  false  "Assignee filter"
// @Param        search      query  string  false  "Free-text search on title, description and address"
// @Success      200  {array}   domain.Issue
// @Failure      400  {object}  errorResponse
// @Router       /issues [get]
func (h *IssueHandler) List(c echo.Context) error {
	filter := domain.IssueFilter{
		Status:     domain.IssueStatus(c.QueryParam("status")),
		Category:   domain.IssueCategory(c.QueryParam("category")),
		Priority:   domain.IssuePriority(c.QueryParam("priority")),
		Department: c.QueryParam("department"),
		AssignedTo: c.QueryParam("assignedTo"),
		Search:     c.QueryParam("search"),
	}

	issues, err := h.service.ListIssues(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issues)
}

// Get returns a single issue.
//
// @Summary      Get issue
// @Tags         issues
// @Produce      json
// @Param        id   path      string  true  "Issue ID"
// @Success      200  {object}  domain.Issue
// @Failure      404  {object}  errorResponse
// @Router       /issues/{id} [get]
func (h *IssueHandler) Get(c echo.Context) error {
	issue, err := h.service.GetIssue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Activity returns the audit trail of an issue, oldest first.
//
// @Summary      Issue activity
// @Tags         issues
// @Produce      json
// @Param        id   path      string  true  "Issue ID"
// @Success      200  {array}   domain.IssueActivity
// @Failure      404  {object}  errorResponse
// @Router       /issues/{id}/activity [get]
func (h *IssueHandler) Activity(c echo.Context) error {
	entries, err := h.service.IssueActivity(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Create files a new issue.
//
// @Summary      Report issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        body  body      createIssueRequest  true  "Issue"
// @Success      201   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /issues [post]
func (h *IssueHandler) Create(c echo.Context) error {
	var req createIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.CreateIssue(c.Request().Context(), toCreateIssueInput(req, actor(c)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, issue)
}

// Update applies a partial update to an issue.
//
// @Summary      Update issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Issue ID"
// @Param        body  body      updateIssueRequest  true  "Fields to change"
// @Success      200   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /issues/{id} [put]
func (h *IssueHandler) Update(c echo.Context) error {
	var req updateIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.UpdateIssue(c.Request().Context(), c.Param("id"), toIssuePatch(req), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// UpdateStatus sets the status of an issue.
//
// @Summary      Change issue status
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Issue ID"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /issues/{id}/status [patch]
func (h *IssueHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.ChangeStatus(c.Request().Context(), c.Param("id"), domain.IssueStatus(req.Status), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Assign routes an issue to an officer and/or department.
//
// @Summary      Assign issue
// @Tags         issues
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Issue ID"
// @Param        body  body      assignRequest  true  "Assignee and department"
// @Success      200   {object}  domain.Issue
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /issues/{id}/assign [patch]
func (h *IssueHandler) Assign(c echo.Context) error {
	var req assignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	issue, err := h.service.AssignIssue(c.Request().Context(), c.Param("id"), ports.AssignIssueInput{
		AssignedTo: req.AssignedTo,
		Department: req.Department,
		Actor:      actor(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}

// Delete removes an issue and returns it.
//
// @Summary      Delete issue
// @Tags         issues
// @Produce      json
// @Param        id   path      string  true  "Issue ID"
// @Success      200  {object}  domain.Issue
// @Failure      404  {object}  errorResponse
// @Router       /issues/{id} [delete]
func (h *IssueHandler) Delete(c echo.Context) error {
	issue, err := h.service.DeleteIssue(c.Request().Context(), c.Param("id"), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, issue)
}
