package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
)

// OpportunitiesCollection is the Mongo collection holding opportunity documents.
const OpportunitiesCollection = "opportunities"

type opportunityDocument struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty"`
	Title             string               `bson:"title"`
	Description       string               `bson:"description"`
	Location          *string              `bson:"location,omitempty"`
	EventDate         *time.Time           `bson:"eventDate,omitempty"`
	Capacity          *int                 `bson:"capacity,omitempty"`
	OrganizerID       primitive.ObjectID   `bson:"organizerId"`
	Status            string               `bson:"status"`
	RegisteredPlayers []primitive.ObjectID `bson:"registeredPlayers"`
	JoinedPlayers     []primitive.ObjectID `bson:"joinedPlayers"`
	CreatedAt         time.Time            `bson:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
}

func (d *opportunityDocument) toEntity() *entity.Opportunity {
	return &entity.Opportunity{
		ID:                d.ID.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		Location:          d.Location,
		EventDate:         d.EventDate,
		Capacity:          d.Capacity,
		OrganizerID:       d.OrganizerID.Hex(),
		Status:            entity.Status(d.Status),
		RegisteredPlayers: hexes(d.RegisteredPlayers),
		JoinedPlayers:     hexes(d.JoinedPlayers),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// memberField maps a membership kind to its array field.
func memberField(kind entity.MemberKind) (string, bool) {
	switch kind {
	case entity.MemberRegistered:
		return "registeredPlayers", true
	case entity.MemberJoined:
		return "joinedPlayers", true
	}
	return "", false
}

// opportunityMongo is a MongoDB implementation of the OpportunityRepository interface.
type opportunityMongo struct {
	c *mongo.Collection
}

var _ usecase.OpportunityRepository = (*opportunityMongo)(nil)

// NewOpportunityMongo creates an opportunity store over the opportunities collection of db.
func NewOpportunityMongo(db *mongo.Database) *opportunityMongo {
	return &opportunityMongo{c: db.Collection(OpportunitiesCollection)}
}

// Create inserts the opportunity with empty membership sets.
func (r *opportunityMongo) Create(ctx context.Context, o *entity.Opportunity) error {
	if o == nil {
		return errors.New("nil opportunity")
	}
	organizerID, err := primitive.ObjectIDFromHex(o.OrganizerID)
	if err != nil {
		return fmt.Errorf("invalid organizer id %q", o.OrganizerID)
	}
	now := time.Now().UTC()
	doc := opportunityDocument{
		ID:                primitive.NewObjectID(),
		Title:             o.Title,
		Description:       o.Description,
		Location:          o.Location,
		EventDate:         o.EventDate,
		Capacity:          o.Capacity,
		OrganizerID:       organizerID,
		Status:            string(o.Status),
		RegisteredPlayers: []primitive.ObjectID{},
		JoinedPlayers:     []primitive.ObjectID{},
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if doc.Status == "" {
		doc.Status = string(entity.StatusPending)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return err
	}
	*o = *doc.toEntity()
	return nil
}

// FindByID loads an opportunity by hex ObjectID.
func (r *opportunityMongo) FindByID(ctx context.Context, id string) (*entity.Opportunity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrOpportunityNotFound
	}
	var d opportunityDocument
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrOpportunityNotFound
		}
		return nil, err
	}
	return d.toEntity(), nil
}

// List returns matching opportunities in the requested order.
func (r *opportunityMongo) List(ctx context.Context, filter entity.Filter, sort entity.Sort, offset, limit int) ([]entity.Opportunity, error) {
	q, ok := opportunityQuery(filter)
	if !ok {
		return []entity.Opportunity{}, nil
	}
	order := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	if sort == entity.SortIDDesc {
		order = bson.D{{Key: "_id", Value: -1}}
	}
	opts := options.Find().SetSort(order).SetSkip(int64(offset)).SetLimit(int64(limit))

	cur, err := r.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []opportunityDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Opportunity, len(docs))
	for i := range docs {
		out[i] = *docs[i].toEntity()
	}
	return out, nil
}

// Count returns the number of opportunities matching filter.
func (r *opportunityMongo) Count(ctx context.Context, filter entity.Filter) (int64, error) {
	q, ok := opportunityQuery(filter)
	if !ok {
		return 0, nil
	}
	return r.c.CountDocuments(ctx, q)
}

// UpdateStatus overwrites the status and touches updatedAt.
func (r *opportunityMongo) UpdateStatus(ctx context.Context, id string, status entity.Status, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usecase.ErrOpportunityNotFound
	}
	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updatedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrOpportunityNotFound
	}
	return nil
}

// AddMember pushes playerID into the set only when it is absent. The
// single-document update is atomic, so concurrent adds of one player land once.
func (r *opportunityMongo) AddMember(ctx context.Context, opportunityID, playerID string, kind entity.MemberKind, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(opportunityID)
	if err != nil {
		return false, usecase.ErrOpportunityNotFound
	}
	pid, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return false, fmt.Errorf("invalid player id %q", playerID)
	}
	field, ok := memberField(kind)
	if !ok {
		return false, fmt.Errorf("unknown membership kind %q", kind)
	}

	res, err := r.c.UpdateOne(ctx,
		bson.M{"_id": oid, field: bson.M{"$ne": pid}},
		bson.M{
			"$addToSet": bson.M{field: pid},
			"$set":      bson.M{"updatedAt": at},
		},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// no match: either the record is gone or the player is already in the set
	n, err := r.c.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, usecase.ErrOpportunityNotFound
	}
	return false, nil
}

// opportunityQuery builds the Mongo filter. ok is false when a filter ID
// cannot match any document.
func opportunityQuery(f entity.Filter) (bson.M, bool) {
	q := bson.M{}
	if f.Status != nil {
		q["status"] = string(*f.Status)
	}
	if f.OrganizerID != "" {
		oid, err := primitive.ObjectIDFromHex(f.OrganizerID)
		if err != nil {
			return nil, false
		}
		q["organizerId"] = oid
	}
	for kind, playerID := range map[entity.MemberKind]string{
		entity.MemberRegistered: f.RegisteredPlayerID,
		entity.MemberJoined:     f.JoinedPlayerID,
	} {
		if playerID == "" {
			continue
		}
		pid, err := primitive.ObjectIDFromHex(playerID)
		if err != nil {
			return nil, false
		}
		field, _ := memberField(kind)
		q[field] = pid
	}
	date := bson.M{}
	if f.EventAfter != nil {
		date["$gt"] = *f.EventAfter
	}
	if f.EventBefore != nil {
		date["$lt"] = *f.EventBefore
	}
	if len(date) > 0 {
		q["eventDate"] = date
	}
	return q, true
}
