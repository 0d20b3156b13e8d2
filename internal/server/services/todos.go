package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// maxPage keeps (page-1)*limit within int.
	maxPage = math.MaxInt / maxLimit
)

// ListQuery is the raw paging input of the todo list endpoint.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// TodoPage is one page of todos plus the pagination summary.
type TodoPage struct {
	Todos []*models.Todo
	Page  int
	Limit int
	Total int
	Pages int
}

type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// Create validates and stores a new pending todo for userID.
func (s *TodoService) Create(ctx context.Context, userID, title, description string) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	var verr ValidationErrors
	validateTitle(&verr, title, "Title is required")
	validateDescription(&verr, description)
	if err := verr.err(); err != nil {
		return nil, err
	}

	todo, err := s.repomanager.Todos(s.db).Create(ctx, &models.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      common.TodoStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}
	return todo, nil
}

// Get returns the todo when it exists and belongs to userID. Malformed ids
// are reported as not found.
func (s *TodoService) Get(ctx context.Context, userID, id string) (*models.Todo, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Todos(s.db).GetByID(ctx, userID, id)
}

// Update applies patch inside a transaction so the read and the write see
// the same row.
func (s *TodoService) Update(ctx context.Context, userID, id string, patch models.TodoPatch) (*models.Todo, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	var verr ValidationErrors
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
		validateTitle(&verr, t, "Title cannot be empty")
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
		validateDescription(&verr, d)
	}
	if patch.Status != nil && *patch.Status != common.TodoStatusPending && *patch.Status != common.TodoStatusDone {
		verr.add("status", "Status must be either pending or done")
	}
	if err := verr.err(); err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Todo, error) {
		repo := s.repomanager.Todos(tx)

		todo, err := repo.GetByID(ctx, userID, id)
		if err != nil {
			return nil, err
		}

		if patch.Title != nil {
			todo.Title = *patch.Title
		}
		if patch.Description != nil {
			todo.Description = *patch.Description
		}
		if patch.Status != nil {
			todo.Status = *patch.Status
		}

		return repo.Update(ctx, todo)
	})
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Todos(s.db).Delete(ctx, userID, id)
}

// List returns one page of the user's todos, newest first.
func (s *TodoService) List(ctx context.Context, userID string, q ListQuery) (*TodoPage, error) {
	page, limit := NormalizePaging(q.Page, q.Limit)
	filter := models.TodoFilter{
		UserID: userID,
		Search: strings.TrimSpace(q.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	repo := s.repomanager.Todos(s.db)

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error counting todos: %w", err)
	}

	items, err := repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing todos: %w", err)
	}

	return &TodoPage{
		Todos: items,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// NormalizePaging applies the defaults: page<1 becomes 1, limit<1 becomes
// 10 and limit is capped at 100. Absurdly large pages are capped so the row
// offset cannot overflow.
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func validID(id string) bool {
	// canonical 36-char form only; uuid.Validate also takes urn and brace forms
	return len(id) == 36 && uuid.Validate(id) == nil
}

func validateTitle(verr *ValidationErrors, title, emptyMsg string) {
	switch {
	case title == "":
		verr.add("title", emptyMsg)
	case runeLen(title) > maxTitleLen:
		verr.add("title", "Title cannot exceed 100 characters")
	}
}

func validateDescription(verr *ValidationErrors, description string) {
	if runeLen(description) > maxDescriptionLen {
		verr.add("description", "Description cannot exceed 500 characters")
	}
}
