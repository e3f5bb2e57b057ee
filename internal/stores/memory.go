package stores

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/models"
)

// In-memory store implementations, used by package tests in place of a
// running Mongo instance. They enforce the same uniqueness rules as the
// indexes so the services see identical error behavior.

type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts []models.Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{}
}

func (s *MemoryAccountStore) Insert(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == account.Email {
			return ErrDuplicateEmail
		}
	}
	s.accounts = append(s.accounts, *account)
	return nil
}

func (s *MemoryAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[primitive.ObjectID]models.Account, len(ids))
	for _, id := range ids {
		for _, a := range s.accounts {
			if a.ID == id {
				result[id] = a
				break
			}
		}
	}
	return result, nil
}

func (s *MemoryAccountStore) ListByRole(ctx context.Context, role string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Account
	for _, a := range s.accounts {
		if a.Role == role {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryAccountStore) Update(ctx context.Context, id primitive.ObjectID, update AccountUpdate) error {
	if update.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID != id {
			continue
		}
		if update.Email != nil {
			for _, other := range s.accounts {
				if other.ID != id && other.Email == *update.Email {
					return ErrDuplicateEmail
				}
			}
			s.accounts[i].Email = *update.Email
		}
		if update.FullName != nil {
			s.accounts[i].FullName = *update.FullName
		}
		if update.PasswordHash != nil {
			s.accounts[i].PasswordHash = *update.PasswordHash
		}
		return nil
	}
	return ErrNotFound
}

func (s *MemoryAccountStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

// Count returns the number of stored accounts. Test helper.
func (s *MemoryAccountStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

type MemoryExtensionStore struct {
	mu       sync.Mutex
	patients map[primitive.ObjectID]models.PatientExtension
	dentists map[primitive.ObjectID]models.DentistExtension

	// FailNextCreate makes the next Create call fail with the given
	// error, to exercise signup rollback in tests.
	FailNextCreate error
}

func NewMemoryExtensionStore() *MemoryExtensionStore {
	return &MemoryExtensionStore{
		patients: make(map[primitive.ObjectID]models.PatientExtension),
		dentists: make(map[primitive.ObjectID]models.DentistExtension),
	}
}

func (s *MemoryExtensionStore) takeFailure() error {
	err := s.FailNextCreate
	s.FailNextCreate = nil
	return err
}

func (s *MemoryExtensionStore) CreatePatient(ctx context.Context, ext *models.PatientExtension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.patients[ext.AccountID]; ok {
		return ErrExtensionExists
	}
	s.patients[ext.AccountID] = *ext
	return nil
}

func (s *MemoryExtensionStore) CreateDentist(ctx context.Context, ext *models.DentistExtension) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.dentists[ext.AccountID]; ok {
		return ErrExtensionExists
	}
	s.dentists[ext.AccountID] = *ext
	return nil
}

func (s *MemoryExtensionStore) GetPatient(ctx context.Context, accountID primitive.ObjectID) (*models.PatientExtension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext, ok := s.patients[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ext, nil
}

func (s *MemoryExtensionStore) GetDentist(ctx context.Context, accountID primitive.ObjectID) (*models.DentistExtension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext, ok := s.dentists[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &ext, nil
}

func (s *MemoryExtensionStore) UpdatePatientPhone(ctx context.Context, accountID primitive.ObjectID, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext, ok := s.patients[accountID]
	if !ok {
		return ErrNotFound
	}
	ext.Phone = phone
	s.patients[accountID] = ext
	return nil
}

func (s *MemoryExtensionStore) UpdateDentistSpecialty(ctx context.Context, accountID primitive.ObjectID, specialty string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext, ok := s.dentists[accountID]
	if !ok {
		return ErrNotFound
	}
	ext.Specialty = specialty
	s.dentists[accountID] = ext
	return nil
}

func (s *MemoryExtensionStore) PatientsByAccountIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PatientExtension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[primitive.ObjectID]models.PatientExtension, len(ids))
	for _, id := range ids {
		if ext, ok := s.patients[id]; ok {
			result[id] = ext
		}
	}
	return result, nil
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (s *MemorySessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type MemoryAppointmentStore struct {
	mu           sync.Mutex
	appointments []models.Appointment
}

func NewMemoryAppointmentStore() *MemoryAppointmentStore {
	return &MemoryAppointmentStore{}
}

// Add seeds an appointment row. Test helper.
func (s *MemoryAppointmentStore) Add(apt models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = append(s.appointments, apt)
}

func (s *MemoryAppointmentStore) ListByDentist(ctx context.Context, dentistID primitive.ObjectID, date string) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.Appointment
	for _, apt := range s.appointments {
		if apt.DentistID != dentistID {
			continue
		}
		if date != "" && apt.Date != date {
			continue
		}
		result = append(result, apt)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Time < result[j].Time
	})
	return result, nil
}

func (s *MemoryAppointmentStore) CountByStatus(ctx context.Context, dentistID primitive.ObjectID) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, apt := range s.appointments {
		if apt.DentistID == dentistID {
			counts[apt.Status]++
		}
	}
	return counts, nil
}
