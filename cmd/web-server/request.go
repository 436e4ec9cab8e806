package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/view"
)

func userIDFromRequest(r *http.Request) (model.ID, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "userId"), 10, 0)
	return model.ID(id), err
}

func taskIDFromRequest(r *http.Request) (model.ID, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "taskId"), 10, 0)
	return model.ID(id), err
}

func pageFromRequest(r *http.Request) (view.Page, error) {
	return view.ParsePage(chi.URLParam(r, "page"))
}

func pageURL(page view.Page) string {
	switch page {
	case view.PageTasks:
		return "/tasks"
	case view.PageUsers:
		return "/users"
	default:
		return "/"
	}
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

func taskFormFromRequest(r *http.Request) view.TaskForm {
	id, _ := strconv.ParseUint(r.PostFormValue("id"), 10, 0)
	return view.TaskForm{
		ID:          model.ID(id),
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
		Priority:    formValue(r, "priority"),
		DueDate:     formValue(r, "dueDate"),
		AssignedTo:  formValue(r, "assignedTo"),
	}
}

func userFormFromRequest(r *http.Request) view.UserForm {
	id, _ := strconv.ParseUint(r.PostFormValue("id"), 10, 0)
	return view.UserForm{
		ID:         model.ID(id),
		FirstName:  formValue(r, "firstName"),
		LastName:   formValue(r, "lastName"),
		Username:   formValue(r, "username"),
		Password:   r.PostFormValue("password"),
		Department: formValue(r, "department"),
		Role:       formValue(r, "role"),
	}
}
