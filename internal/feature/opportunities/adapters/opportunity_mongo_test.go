package adapters

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/domain/entity"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/feature/opportunities/usecase"
	platformmongo "github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/platform/mongo"
	"github.com/varun-chaudhary/ARC-SquadHunt-GamersSpace/internal/testutil"
)

func setupMongoRepo(t *testing.T) *opportunityMongo {
	t.Helper()
	db := testutil.SetupMongoDB(t)
	require.NoError(t, platformmongo.EnsureIndexes(context.Background(), db))
	return NewOpportunityMongo(db)
}

func TestOpportunityMongo_Lifecycle(t *testing.T) {
	repo := setupMongoRepo(t)
	ctx := context.Background()
	organizer := primitive.NewObjectID().Hex()
	player := primitive.NewObjectID().Hex()

	o := &entity.Opportunity{Title: "Cleanup", Description: "Bring gloves", OrganizerID: organizer}
	require.NoError(t, repo.Create(ctx, o))
	assert.Len(t, o.ID, 24)
	assert.Equal(t, entity.StatusPending, o.Status)

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.UpdateStatus(ctx, o.ID, entity.StatusApproved, at))

	added, err := repo.AddMember(ctx, o.ID, player, entity.MemberRegistered, at)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = repo.AddMember(ctx, o.ID, player, entity.MemberRegistered, at)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Equal(t, []string{player}, got.RegisteredPlayers)
	assert.Empty(t, got.JoinedPlayers)

	approved := entity.StatusApproved
	n, err := repo.Count(ctx, entity.Filter{Status: &approved, RegisteredPlayerID: player})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	missing := primitive.NewObjectID().Hex()
	_, err = repo.FindByID(ctx, missing)
	assert.ErrorIs(t, err, usecase.ErrOpportunityNotFound)
	_, err = repo.AddMember(ctx, missing, player, entity.MemberJoined, at)
	assert.ErrorIs(t, err, usecase.ErrOpportunityNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, missing, entity.StatusClosed, at), usecase.ErrOpportunityNotFound)
}

func TestOpportunityMongo_AddMemberConcurrent(t *testing.T) {
	repo := setupMongoRepo(t)
	o := &entity.Opportunity{Title: "T", Description: "D", OrganizerID: primitive.NewObjectID().Hex(), Status: entity.StatusApproved}
	require.NoError(t, repo.Create(context.Background(), o))

	player := primitive.NewObjectID().Hex()
	var wg sync.WaitGroup
	var added atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.AddMember(context.Background(), o.ID, player, entity.MemberJoined, time.Now().UTC())
			assert.NoError(t, err)
			if ok {
				added.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), added.Load())
	got, err := repo.FindByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{player}, got.JoinedPlayers)
}

func TestOpportunityQuery(t *testing.T) {
	now := time.Now().UTC()
	approved := entity.StatusApproved

	q, ok := opportunityQuery(entity.Filter{Status: &approved, EventAfter: &now})
	require.True(t, ok)
	assert.Equal(t, "approved", q["status"])
	assert.Contains(t, q, "eventDate")

	_, ok = opportunityQuery(entity.Filter{OrganizerID: "nope"})
	assert.False(t, ok)
	_, ok = opportunityQuery(entity.Filter{JoinedPlayerID: "nope"})
	assert.False(t, ok)
}
