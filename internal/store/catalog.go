package store

import (
	"context"

	"industry-console/internal/model"
)

func activeClause(active *bool, ph string) (string, []any) {
	if active == nil {
		return "", nil
	}
	return " WHERE is_active = " + ph, []any{*active}
}

func (s *Store) ListStaff(ctx context.Context, active *bool) ([]model.Staff, error) {
	where, args := activeClause(active, "$1")
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, title, email, is_active, created_at FROM staff_specialists`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Staff{}
	for rows.Next() {
		var st model.Staff
		if err := rows.Scan(&st.ID, &st.Name, &st.Title, &st.Email, &st.IsActive, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) GetStaff(ctx context.Context, id string) (*model.Staff, error) {
	st := &model.Staff{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, title, email, is_active, created_at FROM staff_specialists WHERE id = $1`, id,
	).Scan(&st.ID, &st.Name, &st.Title, &st.Email, &st.IsActive, &st.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return st, nil
}

func (s *Store) CreateStaff(ctx context.Context, st *model.Staff) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO staff_specialists (id, name, title, email, is_active) VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at`,
		st.ID, st.Name, st.Title, st.Email, st.IsActive,
	).Scan(&st.CreatedAt)
}

func (s *Store) ListServices(ctx context.Context, active *bool) ([]model.Service, error) {
	where, args := activeClause(active, "$1")
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, category, duration_minutes, price::float8, is_active, created_at
		 FROM services`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		var sv model.Service
		if err := rows.Scan(&sv.ID, &sv.Name, &sv.Category, &sv.DurationMinutes, &sv.Price, &sv.IsActive, &sv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *Store) GetService(ctx context.Context, id string) (*model.Service, error) {
	sv := &model.Service{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, category, duration_minutes, price::float8, is_active, created_at
		 FROM services WHERE id = $1`, id,
	).Scan(&sv.ID, &sv.Name, &sv.Category, &sv.DurationMinutes, &sv.Price, &sv.IsActive, &sv.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return sv, nil
}

func (s *Store) CreateService(ctx context.Context, sv *model.Service) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO services (id, name, category, duration_minutes, price, is_active) VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at`,
		sv.ID, sv.Name, sv.Category, sv.DurationMinutes, sv.Price, sv.IsActive,
	).Scan(&sv.CreatedAt)
}
