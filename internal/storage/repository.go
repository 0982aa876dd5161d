// Package storage is the SQLite entity store: CRUD, predicate-filtered
// listing with totals, and dashboard aggregation for users, expenses
// and income records.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"granaia/internal/core"
)

type Repository struct {
	db    *sql.DB
	clock core.Clock
}

func NewRepository(dbPath string, clock core.Clock) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The _pragma DSN option applies to every pooled connection, unlike
	// a one-off PRAGMA statement.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if clock == nil {
		clock = core.SystemClock{}
	}

	return &Repository{db: db, clock: clock}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies database connectivity, for readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ---- users ----

const userCols = "id, name, phone, remotejid, last_message, premium_until, tipo_premium, created_at, updated_at"

// CreateUser inserts a new user. The remotejid uniqueness invariant
// surfaces as core.ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM usuarios WHERE remotejid = ?", u.RemoteJID).Scan(&exists)
	if err != nil {
		return core.User{}, fmt.Errorf("check remotejid: %w", err)
	}
	if exists > 0 {
		return core.User{}, fmt.Errorf("remotejid %q already registered: %w", u.RemoteJID, core.ErrConflict)
	}

	now := r.clock.Now()
	u.ID = uuid.New()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.PlanType == "" {
		u.PlanType = core.PlanFree
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO usuarios ("+userCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID.String(), u.Name, u.Phone, u.RemoteJID, u.LastMessage,
		fmtTimePtr(u.PremiumUntil), string(u.PlanType), fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", u.ID, "remotejid", u.RemoteJID)
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE id = ?", id.String())
	return scanUser(row)
}

func (r *Repository) GetUserByRemoteJID(ctx context.Context, remoteJID string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE remotejid = ?", remoteJID)
	return scanUser(row)
}

// ListUsers returns one page of users matching the predicate plus the
// total match count for the same predicate.
func (r *Repository) ListUsers(ctx context.Context, p core.Predicate, page core.Page) ([]core.User, int64, error) {
	where, args, err := buildWhere(userColumns, p)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM usuarios"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := "SELECT " + userCols + " FROM usuarios" + where +
		" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

// UpdateUser persists the mutable user fields. Callers load, apply the
// supplied fields, then call this; missing ids surface as ErrNotFound.
func (r *Repository) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	u.UpdatedAt = r.clock.Now()
	res, err := r.db.ExecContext(ctx,
		`UPDATE usuarios SET name = ?, phone = ?, last_message = ?,
		 premium_until = ?, tipo_premium = ?, updated_at = ? WHERE id = ?`,
		u.Name, u.Phone, u.LastMessage,
		fmtTimePtr(u.PremiumUntil), string(u.PlanType), fmtTime(u.UpdatedAt), u.ID.String())
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.User{}, fmt.Errorf("user %s: %w", u.ID, core.ErrNotFound)
	}
	return u, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM usuarios WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "User deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u            core.User
		id           string
		premiumUntil sql.NullString
		plan         string
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&id, &u.Name, &u.Phone, &u.RemoteJID, &u.LastMessage,
		&premiumUntil, &plan, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return core.User{}, fmt.Errorf("parse user id: %w", err)
	}
	u.PlanType = core.PlanType(plan)
	if premiumUntil.Valid {
		t, err := parseTime(premiumUntil.String)
		if err != nil {
			return core.User{}, err
		}
		u.PremiumUntil = &t
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.User{}, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// ---- financial records ----
//
// Expenses and incomes share a schema shape, so the record helpers are
// written once against a table name and converted at the edges.

const recordCols = "id, usuario, descricao, valor_cents, categoria, data, created_at, updated_at"

type recordRow struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Description string
	AmountCents int64
	Category    string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func tableFor(kind core.RecordKind) string {
	if kind == core.KindIncome {
		return "receitas"
	}
	return "gastos"
}

func (r *Repository) createRecord(ctx context.Context, kind core.RecordKind, rec recordRow) (recordRow, error) {
	// The owning user must resolve; FK enforcement alone would report a
	// generic constraint error instead of ErrNotFound.
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM usuarios WHERE id = ?", rec.UserID.String()).Scan(&exists)
	if err != nil {
		return recordRow{}, fmt.Errorf("check owner: %w", err)
	}
	if exists == 0 {
		return recordRow{}, fmt.Errorf("user %s: %w", rec.UserID, core.ErrNotFound)
	}

	now := r.clock.Now()
	rec.ID = uuid.New()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO "+tableFor(kind)+" ("+recordCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID.String(), rec.UserID.String(), rec.Description, rec.AmountCents,
		rec.Category, fmtTime(rec.Date), fmtTime(rec.CreatedAt), fmtTime(rec.UpdatedAt))
	if err != nil {
		return recordRow{}, fmt.Errorf("insert %s: %w", kind, err)
	}

	slog.InfoContext(ctx, "Record created",
		"kind", string(kind), "id", rec.ID, "usuario", rec.UserID, "valor_cents", rec.AmountCents)
	return rec, nil
}

func (r *Repository) getRecord(ctx context.Context, kind core.RecordKind, id uuid.UUID) (recordRow, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordCols+" FROM "+tableFor(kind)+" WHERE id = ?", id.String())
	return scanRecord(row, kind)
}

func (r *Repository) listRecords(ctx context.Context, kind core.RecordKind, p core.Predicate, page core.Page) ([]recordRow, int64, error) {
	where, args, err := buildWhere(recordColumns, p)
	if err != nil {
		return nil, 0, err
	}
	table := tableFor(kind)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", kind, err)
	}

	// Secondary id ordering keeps the sort stable across pages when
	// several records share a date.
	query := "SELECT " + recordCols + " FROM " + table + where +
		" ORDER BY data DESC, id ASC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	var recs []recordRow
	for rows.Next() {
		rec, err := scanRecord(rows, kind)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s: %w", kind, err)
	}

	return recs, total, nil
}

func (r *Repository) updateRecord(ctx context.Context, kind core.RecordKind, rec recordRow) (recordRow, error) {
	rec.UpdatedAt = r.clock.Now()
	res, err := r.db.ExecContext(ctx,
		"UPDATE "+tableFor(kind)+" SET descricao = ?, valor_cents = ?, categoria = ?, data = ?, updated_at = ? WHERE id = ?",
		rec.Description, rec.AmountCents, rec.Category, fmtTime(rec.Date), fmtTime(rec.UpdatedAt), rec.ID.String())
	if err != nil {
		return recordRow{}, fmt.Errorf("update %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return recordRow{}, fmt.Errorf("%s %s: %w", kind, rec.ID, core.ErrNotFound)
	}
	return rec, nil
}

func (r *Repository) deleteRecord(ctx context.Context, kind core.RecordKind, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM "+tableFor(kind)+" WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Record deleted", "kind", string(kind), "id", id)
	return nil
}

// Dashboard aggregates sum, count and a per-category breakdown over
// the records matching the predicate. Categories come back ordered by
// descending total. An empty match set yields zeros, not an error.
func (r *Repository) Dashboard(ctx context.Context, kind core.RecordKind, p core.Predicate) (core.Dashboard, error) {
	where, args, err := buildWhere(recordColumns, p)
	if err != nil {
		return core.Dashboard{}, err
	}
	table := tableFor(kind)

	var dash core.Dashboard
	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(valor_cents), 0), COUNT(id) FROM "+table+where, args...).
		Scan(&dash.Total.Cents, &dash.Count)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("aggregate %s totals: %w", kind, err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT categoria, SUM(valor_cents), COUNT(id) FROM "+table+where+
			" GROUP BY categoria ORDER BY SUM(valor_cents) DESC", args...)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("aggregate %s by category: %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs core.CategorySummary
		if err := rows.Scan(&cs.Category, &cs.Total.Cents, &cs.Count); err != nil {
			return core.Dashboard{}, fmt.Errorf("scan %s category summary: %w", kind, err)
		}
		dash.ByCategory = append(dash.ByCategory, cs)
	}
	if err := rows.Err(); err != nil {
		return core.Dashboard{}, fmt.Errorf("iterate %s category summaries: %w", kind, err)
	}

	return dash, nil
}

func scanRecord(row rowScanner, kind core.RecordKind) (recordRow, error) {
	var (
		rec                       recordRow
		id, userID                string
		date, createdAt, updatedAt string
	)
	err := row.Scan(&id, &userID, &rec.Description, &rec.AmountCents,
		&rec.Category, &date, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return recordRow{}, fmt.Errorf("%s: %w", kind, core.ErrNotFound)
	}
	if err != nil {
		return recordRow{}, fmt.Errorf("scan %s: %w", kind, err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return recordRow{}, fmt.Errorf("parse %s id: %w", kind, err)
	}
	if rec.UserID, err = uuid.Parse(userID); err != nil {
		return recordRow{}, fmt.Errorf("parse %s owner id: %w", kind, err)
	}
	if rec.Date, err = parseTime(date); err != nil {
		return recordRow{}, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return recordRow{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return recordRow{}, err
	}
	return rec, nil
}

// ---- typed wrappers ----

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	rec, err := r.createRecord(ctx, core.KindExpense, expenseToRow(e))
	if err != nil {
		return core.Expense{}, err
	}
	return rowToExpense(rec), nil
}

func (r *Repository) GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	rec, err := r.getRecord(ctx, core.KindExpense, id)
	if err != nil {
		return core.Expense{}, err
	}
	return rowToExpense(rec), nil
}

func (r *Repository) ListExpenses(ctx context.Context, p core.Predicate, page core.Page) ([]core.Expense, int64, error) {
	recs, total, err := r.listRecords(ctx, core.KindExpense, p, page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]core.Expense, len(recs))
	for i, rec := range recs {
		out[i] = rowToExpense(rec)
	}
	return out, total, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	rec, err := r.updateRecord(ctx, core.KindExpense, expenseToRow(e))
	if err != nil {
		return core.Expense{}, err
	}
	return rowToExpense(rec), nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return r.deleteRecord(ctx, core.KindExpense, id)
}

func (r *Repository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	rec, err := r.createRecord(ctx, core.KindIncome, incomeToRow(in))
	if err != nil {
		return core.Income{}, err
	}
	return rowToIncome(rec), nil
}

func (r *Repository) GetIncome(ctx context.Context, id uuid.UUID) (core.Income, error) {
	rec, err := r.getRecord(ctx, core.KindIncome, id)
	if err != nil {
		return core.Income{}, err
	}
	return rowToIncome(rec), nil
}

func (r *Repository) ListIncomes(ctx context.Context, p core.Predicate, page core.Page) ([]core.Income, int64, error) {
	recs, total, err := r.listRecords(ctx, core.KindIncome, p, page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]core.Income, len(recs))
	for i, rec := range recs {
		out[i] = rowToIncome(rec)
	}
	return out, total, nil
}

func (r *Repository) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	rec, err := r.updateRecord(ctx, core.KindIncome, incomeToRow(in))
	if err != nil {
		return core.Income{}, err
	}
	return rowToIncome(rec), nil
}

func (r *Repository) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	return r.deleteRecord(ctx, core.KindIncome, id)
}

func expenseToRow(e core.Expense) recordRow {
	return recordRow{
		ID: e.ID, UserID: e.UserID, Description: e.Description,
		AmountCents: e.Amount.Cents, Category: string(e.Category),
		Date: e.Date, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

func rowToExpense(rec recordRow) core.Expense {
	return core.Expense{
		ID: rec.ID, UserID: rec.UserID, Description: rec.Description,
		Amount: core.Money{Cents: rec.AmountCents}, Category: core.ExpenseCategory(rec.Category),
		Date: rec.Date, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
	}
}

func incomeToRow(in core.Income) recordRow {
	return recordRow{
		ID: in.ID, UserID: in.UserID, Description: in.Description,
		AmountCents: in.Amount.Cents, Category: string(in.Category),
		Date: in.Date, CreatedAt: in.CreatedAt, UpdatedAt: in.UpdatedAt,
	}
}

func rowToIncome(rec recordRow) core.Income {
	return core.Income{
		ID: rec.ID, UserID: rec.UserID, Description: rec.Description,
		Amount: core.Money{Cents: rec.AmountCents}, Category: core.IncomeCategory(rec.Category),
		Date: rec.Date, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
	}
}
