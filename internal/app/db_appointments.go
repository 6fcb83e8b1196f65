package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/oauth2"
)

const detailSelect = `
SELECT a.id, a.business_id, a.employee_id, a.client_id, a.service_id, a.starts_at, a.ends_at,
       a.status, COALESCE(a.notes,''), COALESCE(a.calendar_event_id,''), a.created_at,
       c.full_name, c.email, COALESCE(c.phone,''), u.full_name, s.name, s.price, b.name
FROM appointments a
JOIN clients c    ON c.id = a.client_id
JOIN users u      ON u.id = a.employee_id
JOIN services s   ON s.id = a.service_id
JOIN businesses b ON b.id = a.business_id`

func scanDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail
	if err := row.Scan(&d.ID, &d.BusinessID, &d.EmployeeID, &d.ClientID, &d.ServiceID,
		&d.StartsAt, &d.EndsAt, &d.Status, &d.Notes, &d.CalendarEventID, &d.CreatedAt,
		&d.ClientName, &d.ClientEmail, &d.ClientPhone, &d.EmployeeName, &d.ServiceName,
		&d.ServicePrice, &d.BusinessName); err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDetails(rows pgx.Rows) ([]AppointmentDetail, error) {
	defer rows.Close()
	out := []AppointmentDetail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ConfirmedStarts lists start instants of the employee's confirmed
// appointments in [from, to).
func (a *App) ConfirmedStarts(ctx context.Context, employeeID string, from, to time.Time) ([]time.Time, error) {
	rows, err := a.DB.Query(ctx,
		`SELECT starts_at FROM appointments
		 WHERE employee_id=$1 AND status='confirmed' AND starts_at >= $2 AND starts_at < $3
		 ORDER BY starts_at`, employeeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list confirmed starts: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan start: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertAppointment(ctx context.Context, q querier, ap *Appointment) error {
	ap.ID = newID()
	if ap.Status == "" {
		ap.Status = StatusConfirmed
	}
	err := q.QueryRow(ctx,
		`INSERT INTO appointments (id, business_id, employee_id, client_id, service_id, starts_at, ends_at, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9,''))
		 RETURNING created_at`,
		ap.ID, ap.BusinessID, ap.EmployeeID, ap.ClientID, ap.ServiceID,
		ap.StartsAt.UTC(), ap.EndsAt.UTC(), ap.Status, ap.Notes,
	).Scan(&ap.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (a *App) CreateAppointment(ctx context.Context, ap *Appointment) error {
	return insertAppointment(ctx, a.DB, ap)
}

func (a *App) GetAppointmentDetail(ctx context.Context, id string) (*AppointmentDetail, error) {
	d, err := scanDetail(a.DB.QueryRow(ctx, detailSelect+` WHERE a.id=$1`, id))
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return d, nil
}

// ListAppointments returns the business's appointments newest first; an
// empty status means all of them.
func (a *App) ListAppointments(ctx context.Context, businessID string, status AppointmentStatus) ([]AppointmentDetail, error) {
	q := detailSelect + ` WHERE a.business_id=$1`
	args := []any{businessID}
	if status != "" {
		q += ` AND a.status=$2`
		args = append(args, status)
	}
	q += ` ORDER BY a.starts_at DESC`

	rows, err := a.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return collectDetails(rows)
}

// CancelAppointment moves a confirmed appointment to cancelled. A missing
// appointment is ErrNotFound; one that is already cancelled is ErrConflict.
func (a *App) CancelAppointment(ctx context.Context, businessID, id string) (*AppointmentDetail, error) {
	tag, err := a.DB.Exec(ctx,
		`UPDATE appointments SET status='cancelled'
		 WHERE id=$1 AND business_id=$2 AND status='confirmed'`, id, businessID)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := a.DB.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM appointments WHERE id=$1 AND business_id=$2)`,
			id, businessID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check appointment: %w", err)
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}
	return a.GetAppointmentDetail(ctx, id)
}

func (a *App) DeleteAppointment(ctx context.Context, businessID, id string) error {
	tag, err := a.DB.Exec(ctx, `DELETE FROM appointments WHERE id=$1 AND business_id=$2`, id, businessID)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (a *App) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	_, err := a.DB.Exec(ctx,
		`UPDATE appointments SET calendar_event_id=NULLIF($1,'') WHERE id=$2`, eventID, id)
	if err != nil {
		return fmt.Errorf("set calendar event: %w", err)
	}
	return nil
}

// ListAgenda returns an employee's confirmed appointments in [from, to).
func (a *App) ListAgenda(ctx context.Context, employeeID string, from, to time.Time) ([]AppointmentDetail, error) {
	rows, err := a.DB.Query(ctx,
		detailSelect+` WHERE a.employee_id=$1 AND a.status='confirmed'
		  AND a.starts_at >= $2 AND a.starts_at < $3
		 ORDER BY a.starts_at`, employeeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list agenda: %w", err)
	}
	return collectDetails(rows)
}

// DueReminders lists confirmed appointments in [from, to) that have not
// been reminded yet.
func (a *App) DueReminders(ctx context.Context, from, to time.Time) ([]AppointmentDetail, error) {
	rows, err := a.DB.Query(ctx,
		detailSelect+` WHERE a.status='confirmed' AND a.reminder_sent_at IS NULL
		  AND a.starts_at >= $1 AND a.starts_at < $2
		 ORDER BY a.starts_at`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return collectDetails(rows)
}

func (a *App) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	_, err := a.DB.Exec(ctx, `UPDATE appointments SET reminder_sent_at=$1 WHERE id=$2`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark reminder: %w", err)
	}
	return nil
}

// ---- dashboard ----

func (a *App) DashboardStats(ctx context.Context, businessID string, monthStart time.Time) (*DashboardStats, error) {
	var st DashboardStats
	err := a.DB.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE a.status='confirmed'),
		        COUNT(*) FILTER (WHERE a.status='cancelled'),
		        COALESCE(SUM(s.price) FILTER (WHERE a.status='confirmed'), 0)::bigint,
		        COALESCE(SUM(s.price) FILTER (WHERE a.status='confirmed' AND a.starts_at >= $2), 0)::bigint
		 FROM appointments a JOIN services s ON s.id = a.service_id
		 WHERE a.business_id=$1`, businessID, monthStart.UTC(),
	).Scan(&st.Total, &st.Confirmed, &st.Cancelled, &st.RevenueTotal, &st.RevenueMonth)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	top := func(q string) (string, error) {
		var name string
		err := a.DB.QueryRow(ctx, q, businessID).Scan(&name)
		if isNoRows(err) {
			return "", nil
		}
		return name, err
	}

	if st.TopService, err = top(
		`SELECT s.name FROM appointments a JOIN services s ON s.id = a.service_id
		 WHERE a.business_id=$1 AND a.status='confirmed'
		 GROUP BY s.id, s.name ORDER BY COUNT(*) DESC, s.name LIMIT 1`); err != nil {
		return nil, fmt.Errorf("dashboard top service: %w", err)
	}
	if st.TopEmployee, err = top(
		`SELECT u.full_name FROM appointments a JOIN users u ON u.id = a.employee_id
		 WHERE a.business_id=$1 AND a.status='confirmed'
		 GROUP BY u.id, u.full_name ORDER BY COUNT(*) DESC, u.full_name LIMIT 1`); err != nil {
		return nil, fmt.Errorf("dashboard top employee: %w", err)
	}
	return &st, nil
}

// ---- calendar tokens ----

func (a *App) SaveCalendarToken(ctx context.Context, employeeID string, tok *oauth2.Token) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	_, err = a.DB.Exec(ctx,
		`INSERT INTO calendar_tokens (employee_id, token, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (employee_id) DO UPDATE SET token=EXCLUDED.token, updated_at=now()`,
		employeeID, raw)
	if err != nil {
		return fmt.Errorf("save calendar token: %w", err)
	}
	return nil
}

// CalendarToken returns nil when the employee never connected a calendar.
func (a *App) CalendarToken(ctx context.Context, employeeID string) (*oauth2.Token, error) {
	var raw []byte
	err := a.DB.QueryRow(ctx, `SELECT token FROM calendar_tokens WHERE employee_id=$1`, employeeID).Scan(&raw)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}
