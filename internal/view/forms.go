package view

import (
	"strconv"
	"strings"

	"github.com/protomem/taskdesk/internal/gateway"
	"github.com/protomem/taskdesk/internal/model"
	"github.com/protomem/taskdesk/internal/tasklist"
	"github.com/protomem/taskdesk/internal/validator"
)

// TaskForm is the content of the task create/edit modal. ID is zero when creating.
type TaskForm struct {
	ID          model.ID
	Title       string
	Description string
	Priority    string
	DueDate     string
	AssignedTo  string
}

func TaskFormFrom(task model.Task) TaskForm {
	form := TaskForm{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
	}
	if date, err := tasklist.ParseDueDate(task.DueDate); err == nil {
		form.DueDate = date.String()
	}
	if task.AssignedTo != nil {
		form.AssignedTo = strconv.FormatUint(uint64(task.AssignedTo.ID), 10)
	}
	return form
}

func (f TaskForm) validate() (gateway.TaskInput, validator.Validator) {
	var v validator.Validator

	v.CheckField(validator.NotBlank(f.Title), "title", "Title is required")
	v.CheckField(validator.MaxRunes(f.Title, 200), "title", "Title must not be more than 200 characters")
	v.CheckField(validator.NotBlank(f.Description), "description", "Description is required")
	v.CheckField(
		validator.PermittedValue(model.Priority(f.Priority), model.PriorityLow, model.PriorityMedium, model.PriorityHigh),
		"priority", "Priority must be low, medium or high",
	)

	dueDate := strings.TrimSpace(f.DueDate)
	v.CheckField(dueDate != "", "dueDate", "Due date is required")
	if dueDate != "" {
		_, err := tasklist.ParseDueDate(dueDate)
		v.CheckField(err == nil, "dueDate", "Due date must be a valid date")
	}

	assignee, err := strconv.ParseUint(strings.TrimSpace(f.AssignedTo), 10, 0)
	v.CheckField(err == nil && assignee > 0, "assignedTo", "Assignee is required")

	return gateway.TaskInput{
		Title:            strings.TrimSpace(f.Title),
		Description:      strings.TrimSpace(f.Description),
		Priority:         model.Priority(f.Priority),
		DueDate:          dueDate,
		AssignedToUserID: model.ID(assignee),
	}, v
}

// UserForm is the content of the user create/edit modal. ID is zero when creating.
type UserForm struct {
	ID         model.ID
	FirstName  string
	LastName   string
	Username   string
	Password   string
	Department string
	Role       string
}

func UserFormFrom(user model.User) UserForm {
	return UserForm{
		ID:         user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Username:   user.Username,
		Department: user.Department,
		Role:       string(user.Role),
	}
}

func (f UserForm) validate() (model.User, validator.Validator) {
	var v validator.Validator

	v.CheckField(validator.NotBlank(f.FirstName), "firstName", "First name is required")
	v.CheckField(validator.NotBlank(f.LastName), "lastName", "Last name is required")
	v.CheckField(validator.NotBlank(f.Username), "username", "Username is required")
	v.CheckField(!strings.ContainsAny(f.Username, " \t"), "username", "Username must not contain spaces")
	if f.ID == 0 {
		v.CheckField(validator.NotBlank(f.Password), "password", "Password is required")
	}

	role := model.Role(f.Role)
	if role == model.RoleUnknown {
		role = model.RoleUser
	}
	v.CheckField(role.Valid(), "role", "Role must be user or admin")

	return model.User{
		FirstName:  strings.TrimSpace(f.FirstName),
		LastName:   strings.TrimSpace(f.LastName),
		Username:   strings.TrimSpace(f.Username),
		Password:   f.Password,
		Department: strings.TrimSpace(f.Department),
		Role:       role,
	}, v
}
