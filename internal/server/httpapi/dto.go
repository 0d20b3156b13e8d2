package httpapi

import (
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateTodoRequest uses pointers so absent fields stay untouched.
type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type userDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type todoDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type paginationDTO struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type userResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	User    userDTO `json:"user"`
}

type todoResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Todo    todoDTO `json:"todo"`
}

type todoListResponse struct {
	Success    bool          `json:"success"`
	Todos      []todoDTO     `json:"todos"`
	Pagination paginationDTO `json:"pagination"`
}

type exportResponse struct {
	Success   bool      `json:"success"`
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toTodoDTO(t *models.Todo) todoDTO {
	return todoDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTodoListResponse(p *services.TodoPage) todoListResponse {
	todos := make([]todoDTO, 0, len(p.Todos))
	for _, t := range p.Todos {
		todos = append(todos, toTodoDTO(t))
	}
	return todoListResponse{
		Success: true,
		Todos:   todos,
		Pagination: paginationDTO{
			Page:  p.Page,
			Limit: p.Limit,
			Total: p.Total,
			Pages: p.Pages,
		},
	}
}
