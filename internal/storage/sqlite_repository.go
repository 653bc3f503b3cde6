package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/taskwise/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

const taskColumns = `id, title, description, category, priority, duration, deadline, energy_level,
	scheduled, scheduled_time, scheduled_date, completed, completed_at, created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path, applies migrations and returns a ready repository.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Description, string(in.Category), string(in.Priority), in.Duration,
		nullTime(in.Deadline), string(in.EnergyLevel), boolInt(in.Scheduled), nullClock(in.ScheduledTime),
		nullDate(in.ScheduledDate), boolInt(in.Completed), nullTime(in.CompletedAt),
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in model.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, category = ?, priority = ?, duration = ?, deadline = ?, energy_level = ?,
			scheduled = ?, scheduled_time = ?, scheduled_date = ?, completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, in.Description, string(in.Category), string(in.Priority), in.Duration, nullTime(in.Deadline),
		string(in.EnergyLevel), boolInt(in.Scheduled), nullClock(in.ScheduledTime), nullDate(in.ScheduledDate),
		boolInt(in.Completed), nullTime(in.CompletedAt), mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListTasks returns tasks in creation order.
func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if filter.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, boolInt(*filter.Completed))
	}
	if filter.Scheduled != nil {
		clauses = append(clauses, "scheduled = ?")
		args = append(args, boolInt(*filter.Scheduled))
	}
	if filter.ScheduledOn != nil {
		clauses = append(clauses, "scheduled_date = ?")
		args = append(args, model.DateKey(*filter.ScheduledOn))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)
	return r.queryTasks(ctx, query, args...)
}

func (r *SQLiteRepository) TodayTasks(ctx context.Context, today time.Time) ([]model.Task, error) {
	return r.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE scheduled_date = ? OR (scheduled = 1 AND scheduled_date IS NULL)
		ORDER BY scheduled_time ASC, created_at ASC`, model.DateKey(today))
}

func (r *SQLiteRepository) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ApplyPlacements(ctx context.Context, tasks []model.Task) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin placements: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE tasks SET scheduled = ?, scheduled_time = ?, scheduled_date = ?, updated_at = ?
		WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range tasks {
		res, execErr := stmt.ExecContext(ctx, boolInt(t.Scheduled), nullClock(t.ScheduledTime), nullDate(t.ScheduledDate), mustTime(t.UpdatedAt), t.ID)
		if execErr != nil {
			return fmt.Errorf("place task %s: %w", t.ID, execErr)
		}
		if err = checkRowsAffected(res); err != nil {
			return fmt.Errorf("place task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (model.Settings, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Settings{}, ErrNotFound
		}
		return model.Settings{}, err
	}
	var out model.Settings
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return model.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, in model.Settings, at time.Time) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload), mustTime(at),
	)
	return err
}

func (r *SQLiteRepository) RecordOptimization(ctx context.Context, in OptimizationRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO optimization_history (id, mode, ran_at, tasks_optimized, efficiency, user_rating)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.Mode, mustTime(in.RanAt), in.TasksOptimized, in.Efficiency, nullInt(in.UserRating),
	)
	return err
}

func (r *SQLiteRepository) RateOptimization(ctx context.Context, id string, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	res, err := r.db.ExecContext(ctx, `UPDATE optimization_history SET user_rating = ? WHERE id = ?`, rating, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListOptimizations returns runs oldest first.
func (r *SQLiteRepository) ListOptimizations(ctx context.Context, filter OptimizationListFilter) ([]OptimizationRecord, error) {
	query := `SELECT id, mode, ran_at, tasks_optimized, efficiency, user_rating FROM optimization_history`
	args := make([]any, 0, 3)
	if filter.Mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, filter.Mode)
	}
	query += ` ORDER BY ran_at ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OptimizationRecord, 0)
	for rows.Next() {
		var rec OptimizationRecord
		var ranAt string
		var rating sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Mode, &ranAt, &rec.TasksOptimized, &rec.Efficiency, &rating); err != nil {
			return nil, err
		}
		if rec.RanAt, err = parseRequiredTime(ranAt); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			rec.UserRating = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var category, priority, energy string
	var deadline, scheduledDate, completedAt sql.NullString
	var scheduledTime sql.NullInt64
	var scheduled, completed int
	var created, updated string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &category, &priority, &out.Duration, &deadline, &energy,
		&scheduled, &scheduledTime, &scheduledDate, &completed, &completedAt, &created, &updated); err != nil {
		return model.Task{}, err
	}
	out.Category = model.Category(category)
	out.Priority = model.Priority(priority)
	out.EnergyLevel = model.EnergyLevel(energy)
	out.Scheduled = scheduled != 0
	out.Completed = completed != 0

	var err error
	if out.Deadline, err = parseNullableTime(deadline); err != nil {
		return model.Task{}, err
	}
	if out.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return model.Task{}, err
	}
	if out.CreatedAt, err = parseRequiredTime(created); err != nil {
		return model.Task{}, err
	}
	if out.UpdatedAt, err = parseRequiredTime(updated); err != nil {
		return model.Task{}, err
	}
	if scheduledDate.Valid && scheduledDate.String != "" {
		d, dateErr := model.ParseDate(scheduledDate.String)
		if dateErr != nil {
			return model.Task{}, dateErr
		}
		out.ScheduledDate = &d
	}
	if scheduledTime.Valid {
		c := model.Clock(scheduledTime.Int64)
		out.ScheduledTime = &c
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return model.DateKey(*v)
}

func nullClock(v *model.Clock) any {
	if v == nil {
		return nil
	}
	return int(*v)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
