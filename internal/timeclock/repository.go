package timeclock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schooner-time/timeclock/internal/platform/db"
	"github.com/schooner-time/timeclock/internal/shared"
)

// Repository defines the interface for time entry persistence.
type Repository interface {
	// WithUserTx runs fn as one atomic unit of work scoped to userID. Units
	// for the same user never interleave; a non-nil error discards every
	// write made through the TxRepository.
	WithUserTx(ctx context.Context, userID uuid.UUID, fn func(context.Context, TxRepository) error) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]TimeEntry, error)
	ListAll(ctx context.Context, filter ListFilter) ([]EntryWithOwner, error)
	ListActive(ctx context.Context) ([]EntryWithOwner, error)
}

// TxRepository exposes the reads and writes of one user's unit of work.
type TxRepository interface {
	// FindActive returns the user's clocked_in or on_break entry, or shared.ErrNotFound.
	FindActive(ctx context.Context, userID uuid.UUID) (TimeEntry, error)
	Insert(ctx context.Context, e TimeEntry) error
	Update(ctx context.Context, e TimeEntry) error
}

// PGRepository implements Repository using pgxpool.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type pgTx struct {
	tx     pgx.Tx
	userID uuid.UUID
}

// WithUserTx takes a transaction-scoped advisory lock on the user before
// running fn. Read committed lets reads issued after the lock observe the
// previous holder's commit; the partial unique index backs up the lock.
func (r *PGRepository) WithUserTx(ctx context.Context, userID uuid.UUID, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, shared.UserLockKey(userID)); err != nil {
			return fmt.Errorf("timeclock: lock user %s: %w", userID, err)
		}
		return fn(ctx, &pgTx{tx: tx, userID: userID})
	})
}

const entryColumns = `e.id, e.user_id, e.clock_in_time, e.break_start_time, e.break_end_time,
	e.clock_out_time, e.status, e.total_hours_worked, e.created_at, e.updated_at`

const ownerColumns = `u.id, u.first_name, u.last_name, u.email`

// FindActive locks and returns the user's active entry.
func (t *pgTx) FindActive(ctx context.Context, userID uuid.UUID) (TimeEntry, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+entryColumns+`
		FROM time_entries e
		WHERE e.user_id = $1 AND e.status IN ('clocked_in', 'on_break')
		FOR UPDATE`, userID)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return TimeEntry{}, shared.ErrNotFound
	}
	return entry, err
}

// Insert stores a new entry. A concurrent active entry surfaces as ErrAlreadyClockedIn.
func (t *pgTx) Insert(ctx context.Context, e TimeEntry) error {
	if e.UserID != t.userID {
		return fmt.Errorf("timeclock: insert for user %s inside unit of work for %s", e.UserID, t.userID)
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO time_entries (
			id, user_id, clock_in_time, break_start_time, break_end_time,
			clock_out_time, status, total_hours_worked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.ClockInTime, e.BreakStartTime, e.BreakEndTime,
		e.ClockOutTime, string(e.Status), e.TotalHoursWorked, e.CreatedAt, e.UpdatedAt)
	if db.IsUniqueViolation(err, db.ActiveEntryIndex) {
		return ErrAlreadyClockedIn
	}
	return err
}

// Update writes the mutable columns of an entry.
func (t *pgTx) Update(ctx context.Context, e TimeEntry) error {
	if e.UserID != t.userID {
		return fmt.Errorf("timeclock: update for user %s inside unit of work for %s", e.UserID, t.userID)
	}
	tag, err := t.tx.Exec(ctx, `UPDATE time_entries SET
			break_start_time = $2, break_end_time = $3, clock_out_time = $4,
			status = $5, total_hours_worked = $6, updated_at = $7
		WHERE id = $1 AND user_id = $8`,
		e.ID, e.BreakStartTime, e.BreakEndTime, e.ClockOutTime,
		string(e.Status), e.TotalHoursWorked, e.UpdatedAt, e.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's entries, newest clock-in first.
func (r *PGRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]TimeEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+`
		FROM time_entries e
		WHERE e.user_id = $1
		ORDER BY e.clock_in_time DESC, e.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListAll returns entries across all users matching filter, newest first.
func (r *PGRepository) ListAll(ctx context.Context, filter ListFilter) ([]EntryWithOwner, error) {
	query, args := buildListQuery(filter)
	return r.queryWithOwner(ctx, query, args...)
}

// ListActive returns every clocked_in or on_break entry with its owner.
func (r *PGRepository) ListActive(ctx context.Context) ([]EntryWithOwner, error) {
	return r.queryWithOwner(ctx, activeQuery)
}

const listSelect = `SELECT ` + entryColumns + `, ` + ownerColumns + `
		FROM time_entries e
		JOIN users u ON u.id = e.user_id`

const listOrder = "\n\t\tORDER BY e.clock_in_time DESC, e.id"

const activeQuery = listSelect + "\n\t\tWHERE e.status IN ('clocked_in', 'on_break')" + listOrder

// buildListQuery renders filter as a parameterised query. Placeholders are
// numbered in the order clauses are appended.
func buildListQuery(filter ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if lo, ok := filter.lowerBound(); ok {
		add("e.clock_in_time >= $%d", lo)
	}
	if hi, ok := filter.upperBound(); ok {
		add("e.clock_in_time < $%d", hi)
	}
	if filter.Status != StatusNone {
		add("e.status = $%d", string(filter.Status))
	}
	if filter.UserID != uuid.Nil {
		add("e.user_id = $%d", filter.UserID)
	}

	query := listSelect
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	return query + listOrder, args
}

func (r *PGRepository) queryWithOwner(ctx context.Context, query string, args ...any) ([]EntryWithOwner, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntryWithOwner
	for rows.Next() {
		var (
			item   EntryWithOwner
			status string
		)
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.ClockInTime, &item.BreakStartTime, &item.BreakEndTime,
			&item.ClockOutTime, &status, &item.TotalHoursWorked, &item.CreatedAt, &item.UpdatedAt,
			&item.Owner.ID, &item.Owner.FirstName, &item.Owner.LastName, &item.Owner.Email,
		); err != nil {
			return nil, err
		}
		if item.Status, err = ParseStatus(status); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (TimeEntry, error) {
	var (
		e      TimeEntry
		status string
	)
	if err := row.Scan(
		&e.ID, &e.UserID, &e.ClockInTime, &e.BreakStartTime, &e.BreakEndTime,
		&e.ClockOutTime, &status, &e.TotalHoursWorked, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return TimeEntry{}, err
	}
	parsed, err := ParseStatus(status)
	if err != nil {
		return TimeEntry{}, err
	}
	e.Status = parsed
	return e, nil
}

var _ Repository = (*PGRepository)(nil)
