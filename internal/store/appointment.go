package store

import (
	"context"
	"fmt"
	"strings"

	"industry-console/internal/model"
)

const appointmentCols = `id, appointment_date::text, start_time, end_time, status,
	customer_name, customer_phone, customer_email,
	service_id, service_name, COALESCE(staff_id, ''), staff_name, notes,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner, a *model.Appointment) error {
	return row.Scan(
		&a.ID, &a.AppointmentDate, &a.StartTime, &a.EndTime, &a.Status,
		&a.CustomerName, &a.CustomerPhone, &a.CustomerEmail,
		&a.ServiceID, &a.ServiceName, &a.StaffID, &a.StaffName, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, appointment_date, start_time, end_time, status,
			customer_name, customer_phone, customer_email,
			service_id, service_name, staff_id, staff_name, notes)
		 VALUES ($1,$2::date,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 RETURNING created_at, updated_at`,
		a.ID, a.AppointmentDate, a.StartTime, a.EndTime, a.Status,
		a.CustomerName, a.CustomerPhone, a.CustomerEmail,
		a.ServiceID, a.ServiceName, nullable(a.StaffID), a.StaffName, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// filterClause builds the WHERE clause shared by both stores. ph renders
// the n-th placeholder.
func filterClause(f model.AppointmentFilter, ph func(n int) string, dateCast string) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, ph(len(args))))
	}
	if f.StartDate != "" {
		add("appointment_date >= %s"+dateCast, f.StartDate)
	}
	if f.EndDate != "" {
		add("appointment_date <= %s"+dateCast, f.EndDate)
	}
	if f.StaffID != "" {
		add("staff_id = %s", f.StaffID)
	}
	if f.Status != "" {
		add("status = %s", f.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	where, args := filterClause(f, func(n int) string { return fmt.Sprintf("$%d", n) }, "::date")
	q := `SELECT ` + appointmentCols + ` FROM appointments` + where +
		` ORDER BY appointment_date, start_time`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	row := s.pool.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id)
	if err := scanAppointment(row, a); err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
