package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// Appointment rows are read-only from this service's point of view:
// nothing here creates or mutates them.
type Appointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID primitive.ObjectID `bson:"patientId" json:"patientId"`
	DentistID primitive.ObjectID `bson:"dentistId" json:"dentistId"`
	Date      string             `bson:"date" json:"date"` // "2006-01-02"
	Time      string             `bson:"time" json:"time"` // "15:04"
	Duration  int                `bson:"duration,omitempty" json:"duration"`
	Service   string             `bson:"service,omitempty" json:"service"`
	Status    string             `bson:"status,omitempty" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes"`
}
