package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/nota-sync/internal/logger"
	"github.com/MKhiriev/nota-sync/models"
)

var todoColumns = []string{
	"id",
	"text",
	"completed",
	"description",
	"location",
	"due_date",
	"folder_id",
	"gcal_event_id",
	"created_at",
	"updated_at",
	"device_id",
}

func todoArgs(todo models.TodoItem) []any {
	var dueDate sql.NullTime
	if todo.DueDate != nil {
		dueDate = sql.NullTime{Time: *todo.DueDate, Valid: true}
	}

	return []any{
		todo.ID,
		todo.Text,
		todo.Completed,
		todo.Description,
		todo.Location,
		dueDate,
		todo.FolderID,
		todo.GoogleCalendarEventID,
		todo.CreatedAt,
		todo.UpdatedAt,
		todo.DeviceID,
	}
}

func scanTodo(row interface{ Scan(...any) error }) (models.TodoItem, error) {
	var todo models.TodoItem
	var dueDate sql.NullTime

	err := row.Scan(
		&todo.ID,
		&todo.Text,
		&todo.Completed,
		&todo.Description,
		&todo.Location,
		&dueDate,
		&todo.FolderID,
		&todo.GoogleCalendarEventID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
		&todo.DeviceID,
	)
	if err != nil {
		return models.TodoItem{}, err
	}

	if dueDate.Valid {
		due := dueDate.Time
		todo.DueDate = &due
	}

	return todo, nil
}

// SaveTodo upserts the task in both tiers, stamping updated_at. When the
// remote is unreachable the mutation is also recorded in the sync queue.
func (s *LocalStore) SaveTodo(ctx context.Context, todo models.TodoItem) (models.TodoItem, error) {
	log := logger.FromContext(ctx)

	if todo.ID == "" {
		todo.ID = s.ids.Generate()
	}

	now := s.now()
	if todo.CreatedAt.IsZero() {
		todo.CreatedAt = now
	}
	todo.UpdatedAt = now

	op := models.OperationCreate
	if s.recordExists(ctx, models.EntityTodo, todo.ID) {
		op = models.OperationUpdate
	}

	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, upsertTodo, todoArgs(todo)...); err != nil {
			log.Err(err).
				Str("func", "LocalStore.SaveTodo").
				Str("id", todo.ID).
				Msg("failed to execute upsert for todo")
			return models.TodoItem{}, fmt.Errorf("failed to save todo (id=%s): %w", todo.ID, err)
		}
		s.rewriteSnapshot(ctx, models.CollectionTodos)
	} else {
		if err := s.saveTodoSnapshot(todo); err != nil {
			log.Err(err).
				Str("func", "LocalStore.SaveTodo").
				Str("id", todo.ID).
				Msg("failed to save todo to snapshot tier")
			return models.TodoItem{}, err
		}
	}

	s.recordOffline(ctx, op, models.EntityTodo, todo.ID, todo)
	return todo, nil
}

// GetTodo returns the task with the ID or ErrTodoNotFound.
func (s *LocalStore) GetTodo(ctx context.Context, id string) (models.TodoItem, error) {
	log := logger.FromContext(ctx)

	if s.db == nil {
		todos, err := s.snapshotTodos()
		if err != nil {
			return models.TodoItem{}, err
		}
		for _, todo := range todos {
			if todo.ID == id {
				return todo, nil
			}
		}
		return models.TodoItem{}, ErrTodoNotFound
	}

	todo, err := scanTodo(s.db.QueryRowContext(ctx, getTodo, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TodoItem{}, ErrTodoNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetTodo").
			Str("id", id).
			Msg("failed to scan todo row")
		return models.TodoItem{}, fmt.Errorf("failed to scan todo row: %w", err)
	}

	return todo, nil
}

// GetAllTodos returns every task in creation order.
func (s *LocalStore) GetAllTodos(ctx context.Context) ([]models.TodoItem, error) {
	if s.db == nil {
		return s.snapshotTodos()
	}
	return s.queryTodos(ctx, getAllTodos)
}

// GetTodaysTodos returns the open tasks due between today's midnight and
// tomorrow's, local time. Tasks without a due date never qualify.
func (s *LocalStore) GetTodaysTodos(ctx context.Context) ([]models.TodoItem, error) {
	log := logger.FromContext(ctx)

	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	if s.db == nil {
		todos, err := s.snapshotTodos()
		if err != nil {
			return nil, err
		}

		var due []models.TodoItem
		for _, todo := range todos {
			if todo.Completed || todo.DueDate == nil {
				continue
			}
			if todo.DueDate.Before(start) || !todo.DueDate.Before(end) {
				continue
			}
			due = append(due, todo)
		}
		return due, nil
	}

	query, args, err := sq.Select(todoColumns...).
		From("todos").
		Where(sq.GtOrEq{"due_date": start}).
		Where(sq.Lt{"due_date": end}).
		Where(sq.Eq{"completed": false}).
		OrderBy("due_date").
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.GetTodaysTodos").
			Msg("failed to build due-date window query")
		return nil, fmt.Errorf("failed to build due-date window query: %w", err)
	}

	return s.queryTodos(ctx, query, args...)
}

func (s *LocalStore) queryTodos(ctx context.Context, query string, args ...any) ([]models.TodoItem, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.queryTodos").
			Msg("failed to execute todos query")
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []models.TodoItem

	for rows.Next() {
		todo, scanErr := scanTodo(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "LocalStore.queryTodos").
				Msg("failed to scan todo row")
			return nil, fmt.Errorf("failed to scan todo row: %w", scanErr)
		}

		todos = append(todos, todo)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "LocalStore.queryTodos").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating todo rows: %w", rowsErr)
	}

	return todos, nil
}

// DeleteTodo removes the task from both tiers. Deleting an absent task is
// not an error. When offline the deletion is recorded in the sync queue.
func (s *LocalStore) DeleteTodo(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, deleteTodo, id); err != nil {
			log.Err(err).
				Str("func", "LocalStore.DeleteTodo").
				Str("id", id).
				Msg("failed to execute delete for todo")
			return fmt.Errorf("failed to delete todo (id=%s): %w", id, err)
		}
		s.rewriteSnapshot(ctx, models.CollectionTodos)
	} else {
		if err := s.deleteTodoSnapshot(id); err != nil {
			return err
		}
	}

	s.recordOffline(ctx, models.OperationDelete, models.EntityTodo, id, nil)
	return nil
}

func (s *LocalStore) snapshotTodos() ([]models.TodoItem, error) {
	records, ok := s.snapshots.Snapshot(SnapshotTodos)
	if !ok {
		return nil, nil
	}

	var todos []models.TodoItem
	if err := json.Unmarshal(records, &todos); err != nil {
		return nil, fmt.Errorf("failed to decode todos snapshot: %w", err)
	}
	return todos, nil
}

func (s *LocalStore) saveTodoSnapshot(todo models.TodoItem) error {
	todos, err := s.snapshotTodos()
	if err != nil {
		return err
	}

	replaced := false
	for i := range todos {
		if todos[i].ID == todo.ID {
			todos[i] = todo
			replaced = true
			break
		}
	}
	if !replaced {
		todos = append(todos, todo)
	}

	records, err := json.Marshal(todos)
	if err != nil {
		return fmt.Errorf("failed to encode todos snapshot: %w", err)
	}
	return s.snapshots.SetSnapshot(SnapshotTodos, records)
}

func (s *LocalStore) deleteTodoSnapshot(id string) error {
	todos, err := s.snapshotTodos()
	if err != nil {
		return err
	}

	kept := todos[:0]
	for _, todo := range todos {
		if todo.ID != id {
			kept = append(kept, todo)
		}
	}
	if len(kept) == len(todos) {
		return nil
	}

	records, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("failed to encode todos snapshot: %w", err)
	}
	return s.snapshots.SetSnapshot(SnapshotTodos, records)
}
