package stores

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentaheal/dentaheal-api/internal/models"
)

const (
	collAccounts          = "accounts"
	collPatientExtensions = "patient_extensions"
	collDentistExtensions = "dentist_extensions"
	collSessions          = "sessions"
	collAppointments      = "appointments"
)

// EnsureIndexes creates the indexes the stores rely on. The unique email
// and accountId indexes are what turns a concurrent duplicate insert into
// a duplicate-key error instead of a silent second row.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	if _, err := db.Collection(collAccounts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	}); err != nil {
		return fmt.Errorf("accounts email index: %w", err)
	}

	for _, coll := range []string{collPatientExtensions, collDentistExtensions} {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "accountId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}); err != nil {
			return fmt.Errorf("%s accountId index: %w", coll, err)
		}
	}

	// Let Mongo reap expired sessions on its own.
	if _, err := db.Collection(collSessions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return fmt.Errorf("sessions expiry index: %w", err)
	}

	if _, err := db.Collection(collAppointments).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "dentistId", Value: 1}, {Key: "date", Value: 1}},
	}); err != nil {
		return fmt.Errorf("appointments dentistId/date index: %w", err)
	}

	return nil
}

// --- Accounts ---

type MongoAccountStore struct {
	db *mongo.Database
}

func NewMongoAccountStore(db *mongo.Database) *MongoAccountStore {
	return &MongoAccountStore{db: db}
}

func (s *MongoAccountStore) Insert(ctx context.Context, account *models.Account) error {
	_, err := s.db.Collection(collAccounts).InsertOne(ctx, account)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *MongoAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := s.db.Collection(collAccounts).FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *MongoAccountStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	var account models.Account
	err := s.db.Collection(collAccounts).FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *MongoAccountStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Account, error) {
	result := make(map[primitive.ObjectID]models.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cursor, err := s.db.Collection(collAccounts).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []models.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.ID] = a
	}
	return result, nil
}

func (s *MongoAccountStore) ListByRole(ctx context.Context, role string) ([]models.Account, error) {
	cursor, err := s.db.Collection(collAccounts).Find(ctx, bson.M{"role": role},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var accounts []models.Account
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *MongoAccountStore) Update(ctx context.Context, id primitive.ObjectID, update AccountUpdate) error {
	set := bson.M{}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.FullName != nil {
		set["fullName"] = *update.FullName
	}
	if update.PasswordHash != nil {
		set["passwordHash"] = *update.PasswordHash
	}
	if len(set) == 0 {
		return nil
	}

	result, err := s.db.Collection(collAccounts).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoAccountStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.db.Collection(collAccounts).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// --- Role extensions ---

type MongoExtensionStore struct {
	db *mongo.Database
}

func NewMongoExtensionStore(db *mongo.Database) *MongoExtensionStore {
	return &MongoExtensionStore{db: db}
}

func (s *MongoExtensionStore) CreatePatient(ctx context.Context, ext *models.PatientExtension) error {
	_, err := s.db.Collection(collPatientExtensions).InsertOne(ctx, ext)
	if mongo.IsDuplicateKeyError(err) {
		return ErrExtensionExists
	}
	return err
}

func (s *MongoExtensionStore) CreateDentist(ctx context.Context, ext *models.DentistExtension) error {
	_, err := s.db.Collection(collDentistExtensions).InsertOne(ctx, ext)
	if mongo.IsDuplicateKeyError(err) {
		return ErrExtensionExists
	}
	return err
}

func (s *MongoExtensionStore) GetPatient(ctx context.Context, accountID primitive.ObjectID) (*models.PatientExtension, error) {
	var ext models.PatientExtension
	err := s.db.Collection(collPatientExtensions).FindOne(ctx, bson.M{"accountId": accountID}).Decode(&ext)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ext, nil
}

func (s *MongoExtensionStore) GetDentist(ctx context.Context, accountID primitive.ObjectID) (*models.DentistExtension, error) {
	var ext models.DentistExtension
	err := s.db.Collection(collDentistExtensions).FindOne(ctx, bson.M{"accountId": accountID}).Decode(&ext)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ext, nil
}

func (s *MongoExtensionStore) UpdatePatientPhone(ctx context.Context, accountID primitive.ObjectID, phone string) error {
	result, err := s.db.Collection(collPatientExtensions).UpdateOne(ctx,
		bson.M{"accountId": accountID}, bson.M{"$set": bson.M{"phone": phone}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoExtensionStore) UpdateDentistSpecialty(ctx context.Context, accountID primitive.ObjectID, specialty string) error {
	result, err := s.db.Collection(collDentistExtensions).UpdateOne(ctx,
		bson.M{"accountId": accountID}, bson.M{"$set": bson.M{"specialty": specialty}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoExtensionStore) PatientsByAccountIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.PatientExtension, error) {
	result := make(map[primitive.ObjectID]models.PatientExtension, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cursor, err := s.db.Collection(collPatientExtensions).Find(ctx, bson.M{"accountId": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exts []models.PatientExtension
	if err := cursor.All(ctx, &exts); err != nil {
		return nil, err
	}
	for _, e := range exts {
		result[e.AccountID] = e
	}
	return result, nil
}

// --- Sessions ---

type MongoSessionStore struct {
	db *mongo.Database
}

func NewMongoSessionStore(db *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{db: db}
}

func (s *MongoSessionStore) Create(ctx context.Context, session *models.Session) error {
	_, err := s.db.Collection(collSessions).InsertOne(ctx, session)
	return err
}

func (s *MongoSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.db.Collection(collSessions).FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *MongoSessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Collection(collSessions).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// --- Appointments ---

type MongoAppointmentStore struct {
	db *mongo.Database
}

func NewMongoAppointmentStore(db *mongo.Database) *MongoAppointmentStore {
	return &MongoAppointmentStore{db: db}
}

func (s *MongoAppointmentStore) ListByDentist(ctx context.Context, dentistID primitive.ObjectID, date string) ([]models.Appointment, error) {
	filter := bson.M{"dentistId": dentistID}
	if date != "" {
		filter["date"] = date
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "time", Value: 1}}) // 1 for ascending

	cursor, err := s.db.Collection(collAppointments).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *MongoAppointmentStore) CountByStatus(ctx context.Context, dentistID primitive.ObjectID) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"dentistId": dentistID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$ifNull": bson.A{"$status", ""}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.db.Collection(collAppointments).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Status string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.Status] = b.Count
	}
	return counts, nil
}
