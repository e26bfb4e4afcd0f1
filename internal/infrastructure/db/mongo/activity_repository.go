package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicportal/admin-api/internal/core/domain"
)

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

type activityDoc struct {
	IssueID     string    `bson:"issueId"`
	Action      string    `bson:"action"`
	FromStatus  string    `bson:"fromStatus,omitempty"`
	ToStatus    string    `bson:"toStatus,omitempty"`
	Actor       string    `bson:"actor,omitempty"`
	At          time.Time `bson:"at"`
	ProcessedAt time.Time `bson:"processedAt"`
}

// Insert persists an audit entry to the issue_activity collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.IssueActivity) error {
	doc := activityDoc{
		IssueID:     a.IssueID,
		Action:      string(a.Action),
		FromStatus:  string(a.FromStatus),
		ToStatus:    string(a.ToStatus),
		Actor:       a.Actor,
		At:          a.At.UTC(),
		ProcessedAt: time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *ActivityRepository) ListByIssue(ctx context.Context, issueID string) ([]*domain.IssueActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"issueId": issueID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.IssueActivity, 0)
	for cur.Next(ctx) {
		var doc activityDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, &domain.IssueActivity{
			IssueID:    doc.IssueID,
			Action:     domain.ActivityAction(doc.Action),
			FromStatus: domain.IssueStatus(doc.FromStatus),
			ToStatus:   domain.IssueStatus(doc.ToStatus),
			Actor:      doc.Actor,
			At:         doc.At,
		})
	}
	return out, cur.Err()
}

func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "issueId", Value: 1}, {Key: "at", Value: 1}},
	})
	return err
}
