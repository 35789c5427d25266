package httpserver

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"taskManagement/internal/auth"
	"taskManagement/models"
	"taskManagement/repository"
)

const invalidDueDateMsg = "Invalid due date format. Use format YYYY-MM-DD HH:MM:SS"

// Due dates must match the canonical layout exactly; time.Parse alone would
// accept unpadded fields, so the shape is checked first and the calendar second.
var dueDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

func validDueDate(s string) bool {
	if !dueDateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(models.DueDateFormat, s)
	return err == nil
}

// identityFrom returns the authenticated caller. The auth middleware guarantees
// presence on protected routes.
func identityFrom(r *http.Request) (*auth.Identity, bool) {
	return auth.FromContext(r.Context())
}

func taskIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// handleCreateTask creates a task owned by the caller.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Task title is required")
		return
	}
	if req.DueDate != nil && !validDueDate(*req.DueDate) {
		writeMessage(w, http.StatusBadRequest, invalidDueDateMsg)
		return
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		writeMessage(w, http.StatusBadRequest, "Priority must be 0 (low), 1 (medium) or 2 (high)")
		return
	}

	t := &models.Task{
		UserID:      id.UserID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}

	if _, err := s.Tasks.Create(r.Context(), t); err != nil {
		writeInternalError(w, "create task", err)
		return
	}

	writeMessage(w, http.StatusCreated, "Task created successfully")
}

// handleListTasks returns all tasks owned by the caller in storage order.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	tasks, err := s.Tasks.ListByUserID(r.Context(), id.UserID)
	if err != nil {
		writeInternalError(w, "list tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.Task{"tasks": tasks})
}

// handleUpdateTask applies a partial update to one of the caller's tasks.
// The whole patch is validated before anything is written, so a rejected
// field leaves the task untouched.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	taskID, ok := taskIDFromPath(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil && *req.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Task title must not be empty")
		return
	}
	if req.Priority != nil && !models.ValidPriority(*req.Priority) {
		writeMessage(w, http.StatusBadRequest, "Priority must be 0 (low), 1 (medium) or 2 (high)")
		return
	}
	if req.DueDate != nil && !validDueDate(*req.DueDate) {
		writeMessage(w, http.StatusBadRequest, invalidDueDateMsg)
		return
	}

	patch := repository.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	found, err := s.Tasks.Update(r.Context(), taskID, id.UserID, patch)
	if err != nil {
		writeInternalError(w, "update task", err)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}

	writeMessage(w, http.StatusOK, "Task updated successfully")
}

// handleDeleteTask permanently removes one of the caller's tasks.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	taskID, ok := taskIDFromPath(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}

	deleted, err := s.Tasks.Delete(r.Context(), taskID, id.UserID)
	if err != nil {
		writeInternalError(w, "delete task", err)
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "Task not found")
		return
	}

	writeMessage(w, http.StatusOK, "Task deleted successfully")
}
