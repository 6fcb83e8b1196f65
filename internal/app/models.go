package app

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleService  Role = "service"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

type Business struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	Role         Role      `json:"role"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Price           int64     `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	ImageURL        string    `json:"image_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// ScheduleDay is one weekly schedule row; Weekday is 1 (Monday) .. 7 (Sunday).
type ScheduleDay struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	BusinessID string    `json:"business_id"`
	Weekday    int       `json:"weekday"`
	OpenTime   string    `json:"open_time"`
	CloseTime  string    `json:"close_time"`
	IsDayOff   bool      `json:"is_day_off"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Client struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
}

type Appointment struct {
	ID              string            `json:"id"`
	BusinessID      string            `json:"business_id"`
	EmployeeID      string            `json:"employee_id"`
	ClientID        string            `json:"client_id"`
	ServiceID       string            `json:"service_id"`
	StartsAt        time.Time         `json:"starts_at"`
	EndsAt          time.Time         `json:"ends_at"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CalendarEventID string            `json:"-"`
	CreatedAt       time.Time         `json:"created_at"`
}

// AppointmentDetail is an appointment joined with the names shown in lists
// and emails.
type AppointmentDetail struct {
	Appointment
	ClientName   string `json:"client_name"`
	ClientEmail  string `json:"client_email"`
	ClientPhone  string `json:"client_phone,omitempty"`
	EmployeeName string `json:"employee_name"`
	ServiceName  string `json:"service_name"`
	ServicePrice int64  `json:"service_price"`
	BusinessName string `json:"business_name"`
}

type DashboardStats struct {
	Total        int    `json:"total"`
	Confirmed    int    `json:"confirmed"`
	Cancelled    int    `json:"cancelled"`
	RevenueTotal int64  `json:"revenue_total"`
	RevenueMonth int64  `json:"revenue_month"`
	TopService   string `json:"top_service,omitempty"`
	TopEmployee  string `json:"top_employee,omitempty"`
}
