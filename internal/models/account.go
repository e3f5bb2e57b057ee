package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RolePatient = "patient"
	RoleDentist = "dentist"
)

// ValidRole reports whether role is one of the roles an account may hold.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleDentist
}

type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Hide from JSON responses
	FullName     string             `bson:"fullName" json:"fullName"`
	Role         string             `bson:"role" json:"role"` // "patient" or "dentist", immutable after creation
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// PatientExtension is the one-to-one patient record for a patient-role account.
type PatientExtension struct {
	AccountID primitive.ObjectID `bson:"accountId" json:"accountId"`
	Phone     string             `bson:"phone" json:"phone"`
}

// DentistExtension is the one-to-one dentist record for a dentist-role account.
type DentistExtension struct {
	AccountID primitive.ObjectID `bson:"accountId" json:"accountId"`
	Specialty string             `bson:"specialty" json:"specialty"`
}

// Session is one login. The token handed to the client references the
// session by ID, so deleting the row revokes the token.
type Session struct {
	ID        string             `bson:"_id" json:"id"`
	AccountID primitive.ObjectID `bson:"accountId" json:"accountId"`
	IssuedAt  time.Time          `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at time now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
