package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/planwise/store"
)

func (d *DB) CreateGoal(ctx context.Context, create *store.Goal) (*store.Goal, error) {
	milestones, err := store.MarshalMilestones(create.Milestones)
	if err != nil {
		return nil, err
	}
	fields := []string{"uid", "creator_id", "kind", "title", "category", "target", "deadline", "milestones"}
	args := []any{create.UID, create.CreatorID, string(create.Kind), create.Title, create.Category, create.Target, create.Deadline, milestones}

	stmt := `INSERT INTO goal (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return create, nil
}

func (d *DB) ListGoals(ctx context.Context, find *store.FindGoal) ([]*store.Goal, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "goal.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "goal.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "goal.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Kind; v != nil {
		where, args = append(where, "goal.kind = "+placeholder(len(args)+1)), append(args, string(*v))
	}

	query := `
		SELECT id, uid, creator_id, created_ts, updated_ts,
			kind, title, category, target, deadline, milestones
		FROM goal
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY goal.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Goal, 0)
	for rows.Next() {
		var goal store.Goal
		var kind, milestones string
		if err := rows.Scan(
			&goal.ID,
			&goal.UID,
			&goal.CreatorID,
			&goal.CreatedTs,
			&goal.UpdatedTs,
			&kind,
			&goal.Title,
			&goal.Category,
			&goal.Target,
			&goal.Deadline,
			&milestones,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goal.Kind = store.GoalKind(kind)
		if goal.Milestones, err = store.UnmarshalMilestones(milestones); err != nil {
			return nil, err
		}
		list = append(list, &goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return list, nil
}
