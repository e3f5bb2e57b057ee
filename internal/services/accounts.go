package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/models"
	"github.com/dentaheal/dentaheal-api/internal/stores"
	"github.com/dentaheal/dentaheal-api/internal/utils"
)

// AccountView is the outward shape of an account. It never carries the
// password hash. Which optional fields are populated depends on the
// operation: signup returns just identity, login adds the role field,
// whoAmI adds createdAt.
type AccountView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	FullName  string     `json:"fullName,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Specialty string     `json:"specialty,omitempty"`
}

type SignupInput struct {
	Email     string
	Password  string
	FullName  string
	Role      string
	Phone     string
	Specialty string
}

type UpdateSelfInput struct {
	FullName  string
	Phone     string
	Specialty string
}

// AccountService owns signup, login, session resolution and the caller's
// own profile. It is also the authorization gate the other services
// lean on through RequireRole.
type AccountService struct {
	accounts   stores.AccountStore
	extensions stores.ExtensionStore
	sessions   stores.SessionStore
	tokens     *utils.TokenManager

	passwordMinLength int
	bcryptCost        int

	log zerolog.Logger
}

func NewAccountService(
	accounts stores.AccountStore,
	extensions stores.ExtensionStore,
	sessions stores.SessionStore,
	tokens *utils.TokenManager,
	passwordMinLength int,
	bcryptCost int,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		accounts:          accounts,
		extensions:        extensions,
		sessions:          sessions,
		tokens:            tokens,
		passwordMinLength: passwordMinLength,
		bcryptCost:        bcryptCost,
		log:               log,
	}
}

// Signup creates an account together with its role extension. If the
// extension insert fails the account row is removed again, so a failed
// signup never leaves an orphan account behind.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*AccountView, error) {
	if in.Email == "" || in.Password == "" || in.FullName == "" || in.Role == "" {
		return nil, validationErr("Email, password, full name, and role are required")
	}
	if !models.ValidRole(in.Role) {
		return nil, validationErr(`Role must be "patient" or "dentist"`)
	}
	if in.Role == models.RolePatient && in.Phone == "" {
		return nil, validationErr("Phone number is required for patients")
	}
	if in.Role == models.RoleDentist && in.Specialty == "" {
		return nil, validationErr("Specialty is required for dentists")
	}
	if len(in.Password) < s.passwordMinLength {
		return nil, validationErr(fmt.Sprintf("Password must be at least %d characters", s.passwordMinLength))
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		ID:           primitive.NewObjectID(),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accounts.Insert(ctx, &account); err != nil {
		return nil, err
	}

	switch in.Role {
	case models.RolePatient:
		err = s.extensions.CreatePatient(ctx, &models.PatientExtension{
			AccountID: account.ID,
			Phone:     in.Phone,
		})
	case models.RoleDentist:
		err = s.extensions.CreateDentist(ctx, &models.DentistExtension{
			AccountID: account.ID,
			Specialty: in.Specialty,
		})
	}
	if err != nil {
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("accountId", account.ID.Hex()).
				Msg("failed to roll back account after extension insert failure")
		}
		return nil, err
	}

	return &AccountView{
		ID:    account.ID.Hex(),
		Email: account.Email,
		Role:  account.Role,
	}, nil
}

// Login checks the credentials and opens a session. Unknown email and
// wrong password are indistinguishable from the outside.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AccountView, string, error) {
	if email == "" || password == "" {
		return nil, "", validationErr("Email and password are required")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := models.Session{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(session.ID, account.ID.Hex(), account.Role, now)
	if err != nil {
		return nil, "", err
	}

	view := &AccountView{
		ID:       account.ID.Hex(),
		Email:    account.Email,
		Role:     account.Role,
		FullName: account.FullName,
	}
	s.attachRoleFields(ctx, account, view)
	return view, token, nil
}

// Resolve turns a token into the account behind it. Any failure mode —
// bad signature, expiry, revoked session, deleted account — comes back
// as the same ErrUnauthenticated.
func (s *AccountService) Resolve(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		return nil, ErrUnauthenticated
	}

	account, err := s.accounts.FindByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return account, nil
}

// Logout closes the session behind the token. Logging out an invalid or
// already logged-out token is a no-op, not an error.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.SessionID)
}

// RequireRole is the role gate the dentist-only services sit behind.
func (s *AccountService) RequireRole(account *models.Account, role string) error {
	if account == nil || account.Role != role {
		return ErrForbidden
	}
	return nil
}

// WhoAmI returns the caller's own profile with the role field joined in.
func (s *AccountService) WhoAmI(ctx context.Context, account *models.Account) (*AccountView, error) {
	createdAt := account.CreatedAt
	view := &AccountView{
		ID:        account.ID.Hex(),
		Email:     account.Email,
		Role:      account.Role,
		FullName:  account.FullName,
		CreatedAt: &createdAt,
	}
	s.attachRoleFields(ctx, account, view)
	return view, nil
}

// UpdateSelf applies a partial update to the caller's own profile.
func (s *AccountService) UpdateSelf(ctx context.Context, account *models.Account, in UpdateSelfInput) error {
	if in.Phone != "" && account.Role != models.RolePatient {
		return validationErr("Only patients have a phone number on file")
	}
	if in.Specialty != "" && account.Role != models.RoleDentist {
		return validationErr("Only dentists have a specialty on file")
	}
	if in.FullName == "" && in.Phone == "" && in.Specialty == "" {
		return validationErr("No update fields provided")
	}

	if in.FullName != "" {
		update := stores.AccountUpdate{FullName: &in.FullName}
		if err := s.accounts.Update(ctx, account.ID, update); err != nil {
			return err
		}
	}
	if in.Phone != "" {
		if err := s.extensions.UpdatePatientPhone(ctx, account.ID, in.Phone); err != nil {
			return err
		}
	}
	if in.Specialty != "" {
		if err := s.extensions.UpdateDentistSpecialty(ctx, account.ID, in.Specialty); err != nil {
			return err
		}
	}
	return nil
}

// attachRoleFields joins the role extension onto the view. A missing
// extension just leaves the field empty.
func (s *AccountService) attachRoleFields(ctx context.Context, account *models.Account, view *AccountView) {
	switch account.Role {
	case models.RolePatient:
		if ext, err := s.extensions.GetPatient(ctx, account.ID); err == nil {
			view.Phone = ext.Phone
		}
	case models.RoleDentist:
		if ext, err := s.extensions.GetDentist(ctx, account.ID); err == nil {
			view.Specialty = ext.Specialty
		}
	}
}
