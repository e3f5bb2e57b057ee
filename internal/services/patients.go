package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/models"
	"github.com/dentaheal/dentaheal-api/internal/stores"
	"github.com/dentaheal/dentaheal-api/internal/utils"
)

// PatientSummary is one row of the dentist's patient directory.
type PatientSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreatePatientInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// UpdatePatientInput carries a partial patient update: only non-nil
// fields are applied.
type UpdatePatientInput struct {
	Email    *string
	Password *string
	FullName *string
	Phone    *string
}

// PatientDirectoryService is the dentist-facing patient roster. Every
// operation requires a dentist-role caller.
type PatientDirectoryService struct {
	accounts   stores.AccountStore
	extensions stores.ExtensionStore
	accountSvc *AccountService

	passwordMinLength int
	bcryptCost        int
}

func NewPatientDirectoryService(
	accounts stores.AccountStore,
	extensions stores.ExtensionStore,
	accountSvc *AccountService,
	passwordMinLength int,
	bcryptCost int,
) *PatientDirectoryService {
	return &PatientDirectoryService{
		accounts:          accounts,
		extensions:        extensions,
		accountSvc:        accountSvc,
		passwordMinLength: passwordMinLength,
		bcryptCost:        bcryptCost,
	}
}

// List returns every patient-role account joined with its extension.
// A patient without an extension row shows an empty phone, not an error.
func (s *PatientDirectoryService) List(ctx context.Context, caller *models.Account) ([]PatientSummary, error) {
	if err := s.accountSvc.RequireRole(caller, models.RoleDentist); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.ListByRole(ctx, models.RolePatient)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	exts, err := s.extensions.PatientsByAccountIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]PatientSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, PatientSummary{
			ID:        a.ID.Hex(),
			Name:      a.FullName,
			Email:     a.Email,
			Phone:     exts[a.ID].Phone,
			CreatedAt: a.CreatedAt,
		})
	}
	return summaries, nil
}

// Create registers a new patient account on behalf of the dentist.
func (s *PatientDirectoryService) Create(ctx context.Context, caller *models.Account, in CreatePatientInput) (*PatientSummary, error) {
	if err := s.accountSvc.RequireRole(caller, models.RoleDentist); err != nil {
		return nil, err
	}
	if in.Email == "" || in.Password == "" || in.FullName == "" || in.Phone == "" {
		return nil, validationErr("Email, password, full name, and phone are required")
	}

	view, err := s.accountSvc.Signup(ctx, SignupInput{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		Role:     models.RolePatient,
		Phone:    in.Phone,
	})
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	return &PatientSummary{
		ID:        view.ID,
		Name:      account.FullName,
		Email:     account.Email,
		Phone:     in.Phone,
		CreatedAt: account.CreatedAt,
	}, nil
}

// Update applies a partial update to a patient. Email uniqueness is
// re-checked by the store's unique index, which never conflicts with the
// account's own current email.
func (s *PatientDirectoryService) Update(ctx context.Context, caller *models.Account, patientID string, in UpdatePatientInput) error {
	if err := s.accountSvc.RequireRole(caller, models.RoleDentist); err != nil {
		return err
	}

	id, err := primitive.ObjectIDFromHex(patientID)
	if err != nil {
		return stores.ErrNotFound
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account.Role != models.RolePatient {
		return ErrNotAPatient
	}

	update := stores.AccountUpdate{
		Email:    in.Email,
		FullName: in.FullName,
	}
	if in.Password != nil {
		if len(*in.Password) < s.passwordMinLength {
			return validationErr(fmt.Sprintf("Password must be at least %d characters", s.passwordMinLength))
		}
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if update.Empty() && in.Phone == nil {
		return validationErr("No update fields provided")
	}

	if !update.Empty() {
		if err := s.accounts.Update(ctx, id, update); err != nil {
			return err
		}
	}
	if in.Phone != nil {
		err := s.extensions.UpdatePatientPhone(ctx, id, *in.Phone)
		if err != nil && !errors.Is(err, stores.ErrNotFound) {
			return err
		}
	}
	return nil
}
