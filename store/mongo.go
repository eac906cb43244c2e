package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicworks-be/lifecycle"
	"civicworks-be/models"
)

// aggregateID keys the singleton aggregate document.
const aggregateID = "global"

var _ lifecycle.Store = (*Mongo)(nil)
var _ lifecycle.Store = (*Memory)(nil)

// Mongo is the MongoDB-backed Store. Status flips are conditional updates,
// counters use $inc, and the audit trail is an append-only collection read
// back in timestamp order.
type Mongo struct {
	issues        *mongo.Collection
	users         *mongo.Collection
	audits        *mongo.Collection
	impacts       *mongo.Collection
	aggregates    *mongo.Collection
	votes         *mongo.Collection
	notifications *mongo.Collection
}

// NewMongo wires the store to its collections.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		issues:        db.Collection("issues"),
		users:         db.Collection("users"),
		audits:        db.Collection("audit_logs"),
		impacts:       db.Collection("impact_metrics"),
		aggregates:    db.Collection("global_aggregates"),
		votes:         db.Collection("votes"),
		notifications: db.Collection("notifications"),
	}
}

func (s *Mongo) InsertIssue(ctx context.Context, issue *models.Issue) error {
	_, err := s.issues.InsertOne(ctx, issue)
	return err
}

func (s *Mongo) GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, &lifecycle.NotFoundError{Resource: "issue"}
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *Mongo) TransitionIssue(ctx context.Context, id primitive.ObjectID, expected, target models.IssueStatus, update lifecycle.IssueUpdate) (bool, error) {
	set := bson.M{
		"status":    target,
		"updatedAt": update.UpdatedAt,
	}
	if update.AssignedTo != nil {
		set["assignedTo"] = *update.AssignedTo
	}
	if update.CompletionImageURL != nil {
		set["completionImageUrl"] = *update.CompletionImageURL
	}

	res, err := s.issues.UpdateOne(ctx,
		bson.M{"_id": id, "status": expected},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

func (s *Mongo) PurgeIssue(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.issues.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	if _, err := s.audits.DeleteMany(ctx, bson.M{"issueId": id}); err != nil {
		return err
	}
	if _, err := s.impacts.DeleteMany(ctx, bson.M{"issueId": id}); err != nil {
		return err
	}
	_, err := s.votes.DeleteMany(ctx, bson.M{"issueId": id})
	return err
}

func (s *Mongo) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, &lifecycle.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Mongo) IncrementPoints(ctx context.Context, userID primitive.ObjectID, delta int64) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"points": delta}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &lifecycle.NotFoundError{Resource: "user"}
	}
	return nil
}

func (s *Mongo) FindAdmins(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var admins []models.User
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (s *Mongo) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	entry.ID = primitive.NewObjectID()
	_, err := s.audits.InsertOne(ctx, entry)
	return err
}

func (s *Mongo) AuditTrail(ctx context.Context, issueID primitive.ObjectID) ([]models.AuditEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.audits.Find(ctx, bson.M{"issueId": issueID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trail []models.AuditEntry
	if err := cursor.All(ctx, &trail); err != nil {
		return nil, err
	}
	return trail, nil
}

func (s *Mongo) InsertImpact(ctx context.Context, vector models.ImpactVector) error {
	vector.ID = primitive.NewObjectID()
	_, err := s.impacts.InsertOne(ctx, vector)
	return err
}

func (s *Mongo) AddToAggregate(ctx context.Context, vector models.ImpactVector) error {
	// Single upsert $inc keeps the fold atomic under concurrent closures.
	_, err := s.aggregates.UpdateOne(ctx,
		bson.M{"_id": aggregateID},
		bson.M{"$inc": bson.M{
			"totalWaterSaved":     vector.WaterSaved,
			"totalCo2Reduced":     vector.CO2Reduced,
			"totalWasteRemoved":   vector.WasteRemoved,
			"totalFuelSaved":      vector.FuelSaved,
			"totalIssuesResolved": 1,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *Mongo) GetAggregate(ctx context.Context) (models.GlobalAggregate, error) {
	var agg models.GlobalAggregate
	err := s.aggregates.FindOne(ctx, bson.M{"_id": aggregateID}).Decode(&agg)
	if err == mongo.ErrNoDocuments {
		return models.GlobalAggregate{}, nil
	}
	if err != nil {
		return models.GlobalAggregate{}, err
	}
	return agg, nil
}

func (s *Mongo) RecomputeAggregate(ctx context.Context) error {
	pipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":                 nil,
				"totalWaterSaved":     bson.M{"$sum": "$waterSaved"},
				"totalCo2Reduced":     bson.M{"$sum": "$co2Reduced"},
				"totalWasteRemoved":   bson.M{"$sum": "$wasteRemoved"},
				"totalFuelSaved":      bson.M{"$sum": "$fuelSaved"},
				"totalIssuesResolved": bson.M{"$sum": 1},
			},
		},
	}

	cursor, err := s.impacts.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var rows []models.GlobalAggregate
	if err := cursor.All(ctx, &rows); err != nil {
		return err
	}
	agg := models.GlobalAggregate{}
	if len(rows) > 0 {
		agg = rows[0]
	}

	doc := bson.M{
		"_id":                 aggregateID,
		"totalWaterSaved":     agg.TotalWaterSaved,
		"totalCo2Reduced":     agg.TotalCO2Reduced,
		"totalWasteRemoved":   agg.TotalWasteRemoved,
		"totalFuelSaved":      agg.TotalFuelSaved,
		"totalIssuesResolved": agg.TotalIssuesResolved,
	}
	_, err = s.aggregates.ReplaceOne(ctx, bson.M{"_id": aggregateID}, doc, options.Replace().SetUpsert(true))
	return err
}

// SaveNotification persists one inbox entry. Satisfies the notify.Sink
// contract.
func (s *Mongo) SaveNotification(ctx context.Context, n models.Notification) error {
	n.ID = primitive.NewObjectID()
	_, err := s.notifications.InsertOne(ctx, n)
	return err
}

// EnsureIndexes creates the indexes the store relies on: the unique vote
// index and the audit trail's (issueId, timestamp) read path.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	if err := models.EnsureVoteIndex(s.votes); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := s.audits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}
