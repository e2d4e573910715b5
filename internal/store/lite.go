package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"industry-console/internal/model"
)

const liteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	token_hash TEXT NOT NULL UNIQUE,
	expires_at TEXT NOT NULL,
	revoked INTEGER NOT NULL DEFAULT 0,
	replaced_by TEXT,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS industry_cms_settings (
	industry TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS staff_specialists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS services (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL DEFAULT 60,
	price REAL NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS appointments (
	id TEXT PRIMARY KEY,
	appointment_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	customer_name TEXT NOT NULL,
	customer_phone TEXT NOT NULL DEFAULT '',
	customer_email TEXT NOT NULL DEFAULT '',
	service_id TEXT NOT NULL,
	service_name TEXT NOT NULL DEFAULT '',
	staff_id TEXT,
	staff_name TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS appointments_date_idx ON appointments (appointment_date, start_time);
`

// Lite is the embedded SQLite store, used for single-node setups and tests.
type Lite struct {
	db *sql.DB
}

// OpenLite opens (and migrates) a SQLite database. dsn may carry a
// "sqlite:" prefix; ":memory:" gives a private in-memory database.
func OpenLite(ctx context.Context, dsn string) (*Lite, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps :memory: on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, liteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &Lite{db: db}, nil
}

func (l *Lite) Ping(ctx context.Context) error { return l.db.PingContext(ctx) }

func (l *Lite) Close() error { return l.db.Close() }

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func liteNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// ----- settings -----

func (l *Lite) GetSettings(ctx context.Context, industry string) ([]byte, error) {
	var doc string
	err := l.db.QueryRowContext(ctx,
		`SELECT document FROM industry_cms_settings WHERE industry = ?`, industry).Scan(&doc)
	if err != nil {
		return nil, liteNotFound(err)
	}
	return []byte(doc), nil
}

func (l *Lite) PutSettings(ctx context.Context, industry string, doc []byte) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO industry_cms_settings (industry, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (industry) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		industry, string(doc), now())
	return err
}

// ----- appointments -----

const liteAppointmentCols = `id, appointment_date, start_time, end_time, status,
	customer_name, customer_phone, customer_email,
	service_id, service_name, COALESCE(staff_id, ''), staff_name, notes,
	created_at, updated_at`

func scanLiteAppointment(row scanner, a *model.Appointment) error {
	var created, updated string
	err := row.Scan(
		&a.ID, &a.AppointmentDate, &a.StartTime, &a.EndTime, &a.Status,
		&a.CustomerName, &a.CustomerPhone, &a.CustomerEmail,
		&a.ServiceID, &a.ServiceName, &a.StaffID, &a.StaffName, &a.Notes,
		&created, &updated,
	)
	a.CreatedAt, a.UpdatedAt = parseTime(created), parseTime(updated)
	return err
}

func (l *Lite) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	ts := now()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO appointments (id, appointment_date, start_time, end_time, status,
			customer_name, customer_phone, customer_email,
			service_id, service_name, staff_id, staff_name, notes, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.AppointmentDate, a.StartTime, a.EndTime, a.Status,
		a.CustomerName, a.CustomerPhone, a.CustomerEmail,
		a.ServiceID, a.ServiceName, nullable(a.StaffID), a.StaffName, a.Notes, ts, ts)
	if err != nil {
		return err
	}
	a.CreatedAt, a.UpdatedAt = parseTime(ts), parseTime(ts)
	return nil
}

func (l *Lite) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	where, args := filterClause(f, func(int) string { return "?" }, "")
	q := `SELECT ` + liteAppointmentCols + ` FROM appointments` + where +
		` ORDER BY appointment_date, start_time`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := scanLiteAppointment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *Lite) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	row := l.db.QueryRowContext(ctx, `SELECT `+liteAppointmentCols+` FROM appointments WHERE id = ?`, id)
	if err := scanLiteAppointment(row, a); err != nil {
		return nil, liteNotFound(err)
	}
	return a, nil
}

func (l *Lite) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- staff & services -----

func (l *Lite) ListStaff(ctx context.Context, active *bool) ([]model.Staff, error) {
	where, args := activeClause(active, "?")
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, title, email, is_active, created_at FROM staff_specialists`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Staff{}
	for rows.Next() {
		var st model.Staff
		var created string
		if err := rows.Scan(&st.ID, &st.Name, &st.Title, &st.Email, &st.IsActive, &created); err != nil {
			return nil, err
		}
		st.CreatedAt = parseTime(created)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (l *Lite) GetStaff(ctx context.Context, id string) (*model.Staff, error) {
	st := &model.Staff{}
	var created string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, name, title, email, is_active, created_at FROM staff_specialists WHERE id = ?`, id,
	).Scan(&st.ID, &st.Name, &st.Title, &st.Email, &st.IsActive, &created)
	if err != nil {
		return nil, liteNotFound(err)
	}
	st.CreatedAt = parseTime(created)
	return st, nil
}

func (l *Lite) CreateStaff(ctx context.Context, st *model.Staff) error {
	ts := now()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO staff_specialists (id, name, title, email, is_active, created_at) VALUES (?,?,?,?,?,?)`,
		st.ID, st.Name, st.Title, st.Email, st.IsActive, ts)
	st.CreatedAt = parseTime(ts)
	return err
}

func (l *Lite) ListServices(ctx context.Context, active *bool) ([]model.Service, error) {
	where, args := activeClause(active, "?")
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, category, duration_minutes, price, is_active, created_at FROM services`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var sv model.Service
		var created string
		if err := rows.Scan(&sv.ID, &sv.Name, &sv.Category, &sv.DurationMinutes, &sv.Price, &sv.IsActive, &created); err != nil {
			return nil, err
		}
		sv.CreatedAt = parseTime(created)
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (l *Lite) GetService(ctx context.Context, id string) (*model.Service, error) {
	sv := &model.Service{}
	var created string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, name, category, duration_minutes, price, is_active, created_at FROM services WHERE id = ?`, id,
	).Scan(&sv.ID, &sv.Name, &sv.Category, &sv.DurationMinutes, &sv.Price, &sv.IsActive, &created)
	if err != nil {
		return nil, liteNotFound(err)
	}
	sv.CreatedAt = parseTime(created)
	return sv, nil
}

func (l *Lite) CreateService(ctx context.Context, sv *model.Service) error {
	ts := now()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO services (id, name, category, duration_minutes, price, is_active, created_at) VALUES (?,?,?,?,?,?,?)`,
		sv.ID, sv.Name, sv.Category, sv.DurationMinutes, sv.Price, sv.IsActive, ts)
	sv.CreatedAt = parseTime(ts)
	return err
}

// ----- users & refresh tokens -----

func (l *Lite) CreateUser(ctx context.Context, u *model.User) error {
	ts := now()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, created_at, updated_at) VALUES (?,?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, ts, ts)
	return err
}

func (l *Lite) userBy(ctx context.Context, col, v string) (*model.User, error) {
	u := &model.User{}
	var created, updated string
	err := l.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at, updated_at FROM users WHERE `+col+` = ?`, v,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &created, &updated)
	if err != nil {
		return nil, liteNotFound(err)
	}
	u.CreatedAt, u.UpdatedAt = parseTime(created), parseTime(updated)
	return u, nil
}

func (l *Lite) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return l.userBy(ctx, "email", email)
}

func (l *Lite) UserByID(ctx context.Context, id string) (*model.User, error) {
	return l.userBy(ctx, "id", id)
}

func (l *Lite) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)`,
		id, userID, tokenHash, expiresAt.UTC().Format(time.RFC3339Nano), now())
	return id, err
}

func (l *Lite) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	rt := &RefreshToken{}
	var expires, created string
	var replaced sql.NullString
	err := l.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, replaced_by, created_at
		 FROM refresh_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &expires, &rt.Revoked, &replaced, &created)
	if err != nil {
		return nil, liteNotFound(err)
	}
	rt.ExpiresAt, rt.CreatedAt = parseTime(expires), parseTime(created)
	if replaced.Valid {
		rt.ReplacedBy = &replaced.String
	}
	return rt, nil
}

func (l *Lite) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, replaced_by = ? WHERE id = ?`, newID, oldID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)`,
		newID, userID, newHash, newExpiry.UTC().Format(time.RFC3339Nano), now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (l *Lite) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`, userID)
	return err
}
