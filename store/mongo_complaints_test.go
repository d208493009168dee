package store

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"civicfix-be/models"
)

const complaintsNS = "test.complaints"

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func complaintDoc(t *testing.T, complaint models.Complaint) bson.D {
	raw, err := bson.Marshal(complaint)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestMongoUpdateFields_AtomicPipeline(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("sets status and owner and appends history in one findAndModify", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		id := primitive.NewObjectID()
		entry := models.StatusHistoryEntry{
			Status:    models.Resolved,
			Date:      time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
			ChangedBy: "Admin",
			Comment:   "$where: fixed",
		}
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: complaintDoc(t, models.Complaint{
			ID:            id,
			Title:         "Pothole",
			Status:        models.Resolved,
			StatusHistory: []models.StatusHistoryEntry{entry},
			OwnerID:       "admin-id",
		})}})

		updated, err := s.UpdateFields(context.Background(), id, ComplaintUpdate{
			Status:  models.Resolved,
			OwnerID: "admin-id",
			Push:    &entry,
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, models.Resolved, updated.Status)
		assert.Equal(t, "admin-id", updated.OwnerID)
		require.Len(t, updated.StatusHistory, 1)
		assert.Equal(t, "$where: fixed", updated.StatusHistory[0].Comment)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "complaints", cmd.Lookup("findAndModify").StringValue())
		assert.Equal(t, id, cmd.Lookup("query", "_id").ObjectID())
		assert.True(t, cmd.Lookup("new").Boolean())

		stages, err := cmd.Lookup("update").Array().Values()
		require.NoError(t, err)
		require.Len(t, stages, 1)
		set := stages[0].Document().Lookup("$set").Document()
		assert.Equal(t, "Resolved", set.Lookup("status", "$literal").StringValue())
		assert.Equal(t, "admin-id", set.Lookup("user", "$literal").StringValue())

		concat, err := set.Lookup("statusHistory", "$concatArrays").Array().Values()
		require.NoError(t, err)
		require.Len(t, concat, 2)
		ifNull, err := concat[0].Document().Lookup("$ifNull").Array().Values()
		require.NoError(t, err)
		assert.Equal(t, "$statusHistory", ifNull[0].StringValue())
		pushed, err := concat[1].Array().Values()
		require.NoError(t, err)
		require.Len(t, pushed, 1)
		literal := pushed[0].Document().Lookup("$literal").Document()
		assert.Equal(t, "$where: fixed", literal.Lookup("comment").StringValue())
		assert.Equal(t, "Admin", literal.Lookup("changedBy").StringValue())
	})

	mt.Run("leaves the owner untouched when not repairing", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: complaintDoc(t, models.Complaint{ID: id, Status: models.InProgress})}})

		_, err := s.UpdateFields(context.Background(), id, ComplaintUpdate{
			Status: models.InProgress,
			Push:   &models.StatusHistoryEntry{Status: models.InProgress},
		})
		require.NoError(t, err)

		cmd := mt.GetStartedEvent().Command
		stages, err := cmd.Lookup("update").Array().Values()
		require.NoError(t, err)
		_, err = stages[0].Document().Lookup("$set").Document().LookupErr("user")
		assert.Error(t, err)
	})

	mt.Run("missing document returns nil without error", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		updated, err := s.UpdateFields(context.Background(), primitive.NewObjectID(), ComplaintUpdate{Status: models.Resolved})
		assert.NoError(t, err)
		assert.Nil(t, updated)
	})

	mt.Run("server error is returned", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "invalid pipeline"}))

		updated, err := s.UpdateFields(context.Background(), primitive.NewObjectID(), ComplaintUpdate{Status: models.Resolved})
		assert.Error(t, err)
		assert.Nil(t, updated)
	})
}

func TestMongoFindByID(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("missing document returns nil without error", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, complaintsNS, mtest.FirstBatch))

		complaint, err := s.FindByID(context.Background(), primitive.NewObjectID())
		assert.NoError(t, err)
		assert.Nil(t, complaint)
	})

	mt.Run("decodes an ObjectId owner as hex", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		id, owner := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, complaintsNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "Legacy"},
			{Key: "status", Value: "Pending"},
			{Key: "statusHistory", Value: nil},
			{Key: "user", Value: owner},
		}))

		complaint, err := s.FindByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, complaint)
		assert.Equal(t, owner.Hex(), complaint.OwnerID)
		assert.Empty(t, complaint.StatusHistory)
	})
}

func TestMongoFindByFilter_MatchesBothOwnerTypes(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("hex owner", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		owner := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, complaintsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user", Value: owner}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user", Value: owner.Hex()}},
		))

		complaints, err := s.FindByFilter(context.Background(), ComplaintFilter{OwnerID: owner.Hex(), Status: models.Pending})
		require.NoError(t, err)
		require.Len(t, complaints, 2)
		for _, c := range complaints {
			assert.Equal(t, owner.Hex(), c.OwnerID)
		}

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "complaints", cmd.Lookup("find").StringValue())
		assert.Equal(t, "Pending", cmd.Lookup("filter", "status").StringValue())
		in, err := cmd.Lookup("filter", "user", "$in").Array().Values()
		require.NoError(t, err)
		require.Len(t, in, 2)
		assert.Equal(t, owner.Hex(), in[0].StringValue())
		assert.Equal(t, owner, in[1].ObjectID())
		assert.Equal(t, int32(-1), cmd.Lookup("sort", "createdAt").Int32())
	})

	mt.Run("non-hex owner matches the string only", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, complaintsNS, mtest.FirstBatch))

		complaints, err := s.FindByFilter(context.Background(), ComplaintFilter{OwnerID: "admin-id"})
		require.NoError(t, err)
		assert.Empty(t, complaints)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "admin-id", cmd.Lookup("filter", "user").StringValue())
	})
}

func TestMongoAggregateCountsByDay(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("buckets by day in the given timezone", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		loc, err := time.LoadLocation("Asia/Kolkata")
		require.NoError(t, err)
		since := time.Date(2026, 10, 10, 0, 0, 0, 0, loc)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, complaintsNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "2026-10-13"}, {Key: "count", Value: int32(2)}},
			bson.D{{Key: "_id", Value: "2026-10-16"}, {Key: "count", Value: int32(1)}},
		))

		counts, err := s.AggregateCountsByDay(context.Background(), since, loc)
		require.NoError(t, err)
		assert.Equal(t, []models.DayCount{
			{Date: "2026-10-13", Count: 2},
			{Date: "2026-10-16", Count: 1},
		}, counts)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "complaints", cmd.Lookup("aggregate").StringValue())
		stages, err := cmd.Lookup("pipeline").Array().Values()
		require.NoError(t, err)
		require.Len(t, stages, 3)
		assert.True(t, since.Equal(stages[0].Document().Lookup("$match", "createdAt", "$gte").Time()))
		dateToString := stages[1].Document().Lookup("$group", "_id", "$dateToString").Document()
		assert.Equal(t, "%Y-%m-%d", dateToString.Lookup("format").StringValue())
		assert.Equal(t, "$createdAt", dateToString.Lookup("date").StringValue())
		assert.Equal(t, "Asia/Kolkata", dateToString.Lookup("timezone").StringValue())
	})

	mt.Run("nil location means UTC", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, complaintsNS, mtest.FirstBatch))

		counts, err := s.AggregateCountsByDay(context.Background(), time.Now(), nil)
		require.NoError(t, err)
		assert.Empty(t, counts)

		cmd := mt.GetStartedEvent().Command
		stages, err := cmd.Lookup("pipeline").Array().Values()
		require.NoError(t, err)
		assert.Equal(t, "UTC", stages[1].Document().Lookup("$group", "_id", "$dateToString", "timezone").StringValue())
	})
}

func TestMongoDeleteByID(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("reports whether a document was removed", func(mt *mtest.T) {
		s := NewMongoComplaintStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		deleted, err := s.DeleteByID(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = s.DeleteByID(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
