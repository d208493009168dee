package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicfix-be/models"
)

const complaintsCollection = "complaints"

type MongoComplaintStore struct {
	coll *mongo.Collection
}

var _ ComplaintStore = (*MongoComplaintStore)(nil)

func NewMongoComplaintStore(db *mongo.Database) *MongoComplaintStore {
	return &MongoComplaintStore{coll: db.Collection(complaintsCollection)}
}

// EnsureIndexes creates the owner and creation-date indexes used by listings and trends.
func (s *MongoComplaintStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (s *MongoComplaintStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&complaint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find complaint %s: %w", id.Hex(), err)
	}
	return &complaint, nil
}

func (s *MongoComplaintStore) FindByFilter(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, complaintQuery(filter), findOptions)
	if err != nil {
		return nil, fmt.Errorf("find complaints: %w", err)
	}
	defer cursor.Close(ctx)

	complaints := []models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, fmt.Errorf("decode complaints: %w", err)
	}
	return complaints, nil
}

func (s *MongoComplaintStore) Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	created := cloneComplaint(complaint)
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	// $push and $concatArrays need an array, never null.
	if created.StatusHistory == nil {
		created.StatusHistory = []models.StatusHistoryEntry{}
	}

	if _, err := s.coll.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}
	return created, nil
}

// UpdateFields applies update as one pipeline update so the status, owner and
// history append land together. Legacy documents with a missing or null
// statusHistory get a fresh array.
func (s *MongoComplaintStore) UpdateFields(ctx context.Context, id primitive.ObjectID, update ComplaintUpdate) (*models.Complaint, error) {
	set := bson.D{}
	if update.Status != "" {
		set = append(set, bson.E{Key: "status", Value: bson.D{{Key: "$literal", Value: update.Status}}})
	}
	if update.OwnerID != "" {
		set = append(set, bson.E{Key: "user", Value: bson.D{{Key: "$literal", Value: update.OwnerID}}})
	}
	if update.Push != nil {
		set = append(set, bson.E{Key: "statusHistory", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$statusHistory", bson.A{}}}},
			bson.A{bson.D{{Key: "$literal", Value: *update.Push}}},
		}}}})
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Complaint
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update complaint %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

func (s *MongoComplaintStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete complaint %s: %w", id.Hex(), err)
	}
	return result.DeletedCount > 0, nil
}

// AggregateCountsByDay groups complaints created at or after since by calendar
// day in loc. Days without complaints are absent from the result.
func (s *MongoComplaintStore) AggregateCountsByDay(ctx context.Context, since time.Time, loc *time.Location) ([]models.DayCount, error) {
	if loc == nil {
		loc = time.UTC
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$createdAt"},
				{Key: "timezone", Value: loc.String()},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate complaint trends: %w", err)
	}
	defer cursor.Close(ctx)

	var counts []models.DayCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode complaint trends: %w", err)
	}
	return counts, nil
}

func (s *MongoComplaintStore) Count(ctx context.Context, filter ComplaintFilter) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, complaintQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("count complaints: %w", err)
	}
	return count, nil
}

func complaintQuery(filter ComplaintFilter) bson.M {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["user"] = ownerMatch(filter.OwnerID)
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

// ownerMatch matches an owner stored either as a hex string or, in older
// documents, as an ObjectId reference.
func ownerMatch(ownerID string) interface{} {
	objectID, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return ownerID
	}
	return bson.M{"$in": bson.A{ownerID, objectID}}
}
