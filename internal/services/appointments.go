package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/models"
	"github.com/dentaheal/dentaheal-api/internal/stores"
)

// Defaults applied at the read boundary for appointment rows with unset
// fields. Stored data is never mutated to fill them in.
const (
	defaultDuration = 30
	defaultService  = "Consultation"
)

// AppointmentView is an appointment joined with the patient's identity,
// shaped for the dentist's schedule page.
type AppointmentView struct {
	ID       string `json:"id"`
	Patient  string `json:"patient"`
	Service  string `json:"service"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
	Status   string `json:"status"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`
}

// StatusSummary feeds the analytics dashboard.
type StatusSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"noShow"`
}

// AppointmentQueryService reads a dentist's own appointments. It never
// writes to the appointment collection.
type AppointmentQueryService struct {
	appointments stores.AppointmentStore
	accounts     stores.AccountStore
	extensions   stores.ExtensionStore
	accountSvc   *AccountService
}

func NewAppointmentQueryService(
	appointments stores.AppointmentStore,
	accounts stores.AccountStore,
	extensions stores.ExtensionStore,
	accountSvc *AccountService,
) *AppointmentQueryService {
	return &AppointmentQueryService{
		appointments: appointments,
		accounts:     accounts,
		extensions:   extensions,
		accountSvc:   accountSvc,
	}
}

// ListForDentist returns the caller's appointments sorted ascending by
// time of day, optionally filtered to one date. A dentist only ever sees
// their own schedule: the filter is pinned to the caller's id.
func (s *AppointmentQueryService) ListForDentist(ctx context.Context, caller *models.Account, date string) ([]AppointmentView, error) {
	if err := s.accountSvc.RequireRole(caller, models.RoleDentist); err != nil {
		return nil, err
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, validationErr("Date must be in YYYY-MM-DD format")
		}
	}

	appointments, err := s.appointments.ListByDentist(ctx, caller.ID, date)
	if err != nil {
		return nil, err
	}

	patientIDs := make([]primitive.ObjectID, 0, len(appointments))
	seen := make(map[primitive.ObjectID]bool, len(appointments))
	for _, apt := range appointments {
		if !seen[apt.PatientID] {
			seen[apt.PatientID] = true
			patientIDs = append(patientIDs, apt.PatientID)
		}
	}

	accounts, err := s.accounts.FindByIDs(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	exts, err := s.extensions.PatientsByAccountIDs(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	views := make([]AppointmentView, 0, len(appointments))
	for _, apt := range appointments {
		view := AppointmentView{
			ID:       apt.ID.Hex(),
			Patient:  "Unknown",
			Service:  apt.Service,
			Time:     apt.Time,
			Duration: apt.Duration,
			Status:   apt.Status,
			Phone:    exts[apt.PatientID].Phone,
			Date:     apt.Date,
			Notes:    apt.Notes,
		}
		if account, ok := accounts[apt.PatientID]; ok {
			view.Patient = account.FullName
			view.Email = account.Email
		}
		if view.Duration == 0 {
			view.Duration = defaultDuration
		}
		if view.Service == "" {
			view.Service = defaultService
		}
		if view.Status == "" {
			view.Status = models.StatusPending
		}
		views = append(views, view)
	}
	return views, nil
}

// StatusSummary buckets the caller's appointments by status. Rows with
// no stored status count as pending, same as the list view shows them.
func (s *AppointmentQueryService) StatusSummary(ctx context.Context, caller *models.Account) (*StatusSummary, error) {
	if err := s.accountSvc.RequireRole(caller, models.RoleDentist); err != nil {
		return nil, err
	}

	counts, err := s.appointments.CountByStatus(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummary{
		Pending:   counts[models.StatusPending] + counts[""],
		Confirmed: counts[models.StatusConfirmed],
		Completed: counts[models.StatusCompleted],
		Cancelled: counts[models.StatusCancelled],
		NoShow:    counts[models.StatusNoShow],
	}
	for _, n := range counts {
		summary.Total += n
	}
	return summary, nil
}
