package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/planwise/store"
)

func (d *DB) CreateTask(ctx context.Context, create *store.Task) (*store.Task, error) {
	fields := []string{"uid", "creator_id", "title", "due_date", "due_ts", "priority", "category", "done"}
	args := []any{create.UID, create.CreatorID, create.Title, create.DueDate, create.DueTs, create.Priority, create.Category, create.Done}

	stmt := `INSERT INTO task (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return create, nil
}

func (d *DB) ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "task.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "task.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "task.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueDate; v != nil {
		where, args = append(where, "task.due_date = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, creator_id, created_ts, updated_ts,
			title, due_date, due_ts, priority, category, done
		FROM task
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY task.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Task, 0)
	for rows.Next() {
		var task store.Task
		var dueTs sql.NullInt64
		if err := rows.Scan(
			&task.ID,
			&task.UID,
			&task.CreatorID,
			&task.CreatedTs,
			&task.UpdatedTs,
			&task.Title,
			&task.DueDate,
			&dueTs,
			&task.Priority,
			&task.Category,
			&task.Done,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if dueTs.Valid {
			task.DueTs = &dueTs.Int64
		}
		list = append(list, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return list, nil
}
