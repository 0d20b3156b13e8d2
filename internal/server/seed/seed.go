// Package seed fills the database with a demo account and sample todos for
// local development.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

const (
	DemoName            = "Demo User"
	DemoEmail           = "demo@example.com"
	DefaultDemoPassword = "password123"
)

type sampleTodo struct {
	title, description, status string
}

var sampleTodos = []sampleTodo{
	{"Complete project documentation", "Write comprehensive docs for the todo app", common.TodoStatusPending},
	{"Review code and refactor", "Go through the codebase and improve code quality", common.TodoStatusPending},
	{"Set up CI/CD pipeline", "Configure automated testing and deployment", common.TodoStatusDone},
	{"Design new landing page", "Create mockups for the marketing website", common.TodoStatusDone},
	{"Implement user feedback", "Add requested features from user survey", common.TodoStatusPending},
	{"Optimize database queries", "Improve performance by adding indexes and optimizing queries", common.TodoStatusPending},
	{"Write unit tests", "Achieve 80% code coverage with comprehensive tests", common.TodoStatusDone},
	{"Update dependencies", "Upgrade all modules to latest stable versions", common.TodoStatusPending},
	{"Implement dark mode", "Add theme toggle with dark mode support", common.TodoStatusPending},
}

type Seeder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	users       *services.UserService
	out         io.Writer
}

func NewSeeder(db *sql.DB, m repomanager.RepositoryManager, out io.Writer) *Seeder {
	return &Seeder{db: db, repomanager: m, users: services.NewUserService(db, m), out: out}
}

// Run migrates the schema, replaces the demo account and inserts the sample
// todos. Re-running it leaves exactly one demo account behind.
func (s *Seeder) Run(ctx context.Context, password string) (*models.User, error) {
	if err := s.repomanager.RunMigrations(ctx, s.db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if err := s.clear(ctx); err != nil {
		return nil, fmt.Errorf("error clearing demo data: %w", err)
	}
	fmt.Fprintln(s.out, "Cleared existing demo data")

	user, err := s.users.Signup(ctx, DemoName, DemoEmail, password)
	if err != nil {
		return nil, fmt.Errorf("error creating demo user: %w", err)
	}
	fmt.Fprintln(s.out, "Demo user created:", user.Email)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Todos(tx)
		for _, st := range sampleTodos {
			if _, err := repo.Create(ctx, &models.Todo{
				UserID:      user.ID,
				Title:       st.title,
				Description: st.description,
				Status:      st.status,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating sample todos: %w", err)
	}
	fmt.Fprintf(s.out, "Created %d sample todos\n", len(sampleTodos))

	return user, nil
}

// clear removes the demo account and its todos, if present.
func (s *Seeder) clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := s.repomanager.Users(tx).GetByEmail(ctx, DemoEmail)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.repomanager.Todos(tx).DeleteByUser(ctx, existing.ID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).DeleteByEmail(ctx, DemoEmail)
	})
}
