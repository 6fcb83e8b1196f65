package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"miturno/internal/booking"
)

// ---- services ----

const serviceColumns = `id, business_id, name, COALESCE(description,''), price, duration_minutes,
	COALESCE(image_url,''), is_active, created_at`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	if err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.Description, &s.Price,
		&s.DurationMinutes, &s.ImageURL, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *App) ListServices(ctx context.Context, businessID string, activeOnly bool) ([]Service, error) {
	q := `SELECT ` + serviceColumns + ` FROM services WHERE business_id=$1`
	if activeOnly {
		q += ` AND is_active`
	}
	q += ` ORDER BY name`

	rows, err := a.DB.Query(ctx, q, businessID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	out := []Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (a *App) GetService(ctx context.Context, businessID, id string) (*Service, error) {
	s, err := scanService(a.DB.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id=$1 AND business_id=$2`, id, businessID))
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

func (a *App) CreateService(ctx context.Context, s *Service) error {
	s.ID = newID()
	err := a.DB.QueryRow(ctx,
		`INSERT INTO services (id, business_id, name, description, price, duration_minutes, is_active)
		 VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7)
		 RETURNING created_at`,
		s.ID, s.BusinessID, s.Name, s.Description, s.Price, s.DurationMinutes, s.IsActive,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (a *App) UpdateService(ctx context.Context, s *Service) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE services SET name=$1, description=NULLIF($2,''), price=$3, duration_minutes=$4, is_active=$5
		 WHERE id=$6 AND business_id=$7`,
		s.Name, s.Description, s.Price, s.DurationMinutes, s.IsActive, s.ID, s.BusinessID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *App) SetServiceImage(ctx context.Context, businessID, id, url string) error {
	tag, err := a.DB.Exec(ctx,
		`UPDATE services SET image_url=$1 WHERE id=$2 AND business_id=$3`, url, id, businessID)
	if err != nil {
		return fmt.Errorf("set service image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *App) DeleteService(ctx context.Context, businessID, id string) error {
	tag, err := a.DB.Exec(ctx, `DELETE FROM services WHERE id=$1 AND business_id=$2`, id, businessID)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- schedules ----

func (a *App) ListSchedule(ctx context.Context, businessID, employeeID string) ([]ScheduleDay, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT id, employee_id, business_id, weekday, to_char(open_time, 'HH24:MI'),
		        to_char(close_time, 'HH24:MI'), is_day_off, updated_at
		 FROM employee_schedules
		 WHERE employee_id=$1 AND business_id=$2
		 ORDER BY weekday`, employeeID, businessID)
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	defer rows.Close()

	out := []ScheduleDay{}
	for rows.Next() {
		var d ScheduleDay
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.BusinessID, &d.Weekday,
			&d.OpenTime, &d.CloseTime, &d.IsDayOff, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertScheduleDay writes the single row for (employee, weekday).
func (a *App) UpsertScheduleDay(ctx context.Context, d *ScheduleDay) error {
	d.UpdatedAt = time.Now().UTC()
	err := a.DB.QueryRow(ctx,
		`INSERT INTO employee_schedules (id, employee_id, business_id, weekday, open_time, close_time, is_day_off, updated_at)
		 VALUES ($1, $2, $3, $4, $5::text::time, $6::text::time, $7, $8)
		 ON CONFLICT (employee_id, weekday) DO UPDATE
		 SET open_time=EXCLUDED.open_time, close_time=EXCLUDED.close_time,
		     is_day_off=EXCLUDED.is_day_off, updated_at=EXCLUDED.updated_at
		 RETURNING id`,
		newID(), d.EmployeeID, d.BusinessID, d.Weekday, d.OpenTime, d.CloseTime, d.IsDayOff, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	return nil
}

// WeeklySchedule returns nil when the employee has no row for weekday.
func (a *App) WeeklySchedule(ctx context.Context, employeeID string, weekday int) (*booking.WeeklySchedule, error) {
	var s booking.WeeklySchedule
	err := a.DB.QueryRow(ctx,
		`SELECT weekday, to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'), is_day_off
		 FROM employee_schedules WHERE employee_id=$1 AND weekday=$2`,
		employeeID, weekday,
	).Scan(&s.Weekday, &s.OpenTime, &s.CloseTime, &s.IsDayOff)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly schedule: %w", err)
	}
	return &s, nil
}

// ---- clients ----

// upsertClient finds the client by (business, email) or creates it. Name
// and phone are refreshed from the latest booking.
func upsertClient(ctx context.Context, q querier, cl *Client) error {
	err := q.QueryRow(ctx,
		`INSERT INTO clients (id, business_id, full_name, email, phone)
		 VALUES ($1, $2, $3, $4, NULLIF($5,''))
		 ON CONFLICT (business_id, email) DO UPDATE
		 SET full_name=EXCLUDED.full_name, phone=COALESCE(EXCLUDED.phone, clients.phone)
		 RETURNING id`,
		newID(), cl.BusinessID, cl.FullName, cl.Email, cl.Phone,
	).Scan(&cl.ID)
	if err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}
	return nil
}

func (a *App) GetClient(ctx context.Context, businessID, id string) (*Client, error) {
	var cl Client
	err := a.DB.QueryRow(ctx,
		`SELECT id, business_id, full_name, email, COALESCE(phone,'') FROM clients WHERE id=$1 AND business_id=$2`,
		id, businessID,
	).Scan(&cl.ID, &cl.BusinessID, &cl.FullName, &cl.Email, &cl.Phone)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &cl, nil
}
