package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/users/usecase"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/shared/identity"
)

// UsersCollection is the Mongo collection holding user documents.
const UsersCollection = "users"

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Role         string             `bson:"role"`
	PasswordHash string             `bson:"password"`
	Status       string             `bson:"status"`
	IsDeleted    bool               `bson:"isDeleted"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Role:         identity.Role(d.Role),
		PasswordHash: d.PasswordHash,
		Status:       entity.Status(d.Status),
		IsDeleted:    d.IsDeleted,
		DeletedAt:    d.DeletedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// userMongo is a MongoDB implementation of the UserRepository interface.
type userMongo struct {
	c *mongo.Collection
}

var _ usecase.UserRepository = (*userMongo)(nil)

// NewUserMongo creates a user store over the users collection of db.
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{c: db.Collection(UsersCollection)}
}

// Create inserts the user. The email index must be unique for duplicate detection.
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	now := time.Now().UTC()
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		Status:       string(u.Status),
		IsDeleted:    u.IsDeleted,
		DeletedAt:    u.DeletedAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    now,
	}
	if doc.Status == "" {
		doc.Status = string(entity.StatusActive)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	*u = *doc.toEntity()
	return nil
}

// FindByID loads a user by hex ObjectID, deleted or not.
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail loads a user by email, deleted or not.
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var d userDocument
	if err := r.c.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return d.toEntity(), nil
}

// FindByIDs loads every user whose ID is in ids. Malformed IDs are skipped.
func (r *userMongo) FindByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}
	cur, err := r.c.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	return decodeUsers(ctx, cur)
}

// List returns users matching filter ordered by createdAt descending.
func (r *userMongo) List(ctx context.Context, filter entity.Filter, offset, limit int) ([]entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.c.Find(ctx, userQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	return decodeUsers(ctx, cur)
}

// Count returns the number of users matching filter.
func (r *userMongo) Count(ctx context.Context, filter entity.Filter) (int64, error) {
	return r.c.CountDocuments(ctx, userQuery(filter))
}

// SoftDelete flags the user as deleted unless it already is.
func (r *userMongo) SoftDelete(ctx context.Context, id string, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, usecase.ErrUserNotFound
	}
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": oid, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": at, "updatedAt": at}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := r.c.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, usecase.ErrUserNotFound
	}
	return false, nil
}

// CountByRole groups every user by role, including soft-deleted ones.
func (r *userMongo) CountByRole(ctx context.Context) (map[identity.Role]int64, error) {
	cur, err := r.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$role"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[identity.Role]int64{}
	for cur.Next(ctx) {
		var row struct {
			Role  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[identity.Role(row.Role)] = row.Count
	}
	return out, cur.Err()
}

func userQuery(filter entity.Filter) bson.M {
	q := bson.M{}
	if !filter.IncludeDeleted {
		q["isDeleted"] = false
	}
	if filter.Role != nil {
		q["role"] = string(*filter.Role)
	}
	return q
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]entity.User, error) {
	defer cur.Close(ctx)
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.User, len(docs))
	for i := range docs {
		out[i] = *docs[i].toEntity()
	}
	return out, nil
}
