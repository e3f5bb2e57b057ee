package stores

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an insert or update would violate
	// the unique email index. The index, not application code, is the
	// arbiter: concurrent signups with the same email race down to it.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrExtensionExists is returned when a second role extension is
	// created for the same account.
	ErrExtensionExists = errors.New("role extension already exists")
)

// AccountUpdate carries a partial account update. Nil fields are left
// untouched. Role is deliberately absent: it is immutable after creation.
type AccountUpdate struct {
	Email        *string
	FullName     *string
	PasswordHash *string
}

// Empty reports whether the update would change nothing.
func (u AccountUpdate) Empty() bool {
	return u.Email == nil && u.FullName == nil && u.PasswordHash == nil
}

type AccountStore interface {
	Insert(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error)
	ListByRole(ctx context.Context, role string) ([]models.Account, error)
	Update(ctx context.Context, id primitive.ObjectID, update AccountUpdate) error
	// Delete removes an account row. Only used to compensate a failed
	// extension insert during signup so no orphan account survives.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ExtensionStore interface {
	CreatePatient(ctx context.Context, ext *models.PatientExtension) error
	CreateDentist(ctx context.Context, ext *models.DentistExtension) error
	GetPatient(ctx context.Context, accountID primitive.ObjectID) (*models.PatientExtension, error)
	GetDentist(ctx context.Context, accountID primitive.ObjectID) (*models.DentistExtension, error)
	UpdatePatientPhone(ctx context.Context, accountID primitive.ObjectID, phone string) error
	UpdateDentistSpecialty(ctx context.Context, accountID primitive.ObjectID, specialty string) error
	PatientsByAccountIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PatientExtension, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete is idempotent: deleting a session that is already gone is
	// not an error.
	Delete(ctx context.Context, id string) error
}

// AppointmentStore is read-only: this service never books, reschedules
// or cancels appointments.
type AppointmentStore interface {
	// ListByDentist returns the dentist's appointments sorted ascending
	// by time of day. An empty date means no date filter.
	ListByDentist(ctx context.Context, dentistID primitive.ObjectID, date string) ([]models.Appointment, error)
	// CountByStatus groups the dentist's appointments by status. Rows
	// without a status are counted under the empty key.
	CountByStatus(ctx context.Context, dentistID primitive.ObjectID) (map[string]int, error)
}
