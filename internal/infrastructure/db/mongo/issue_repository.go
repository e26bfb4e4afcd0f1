package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicportal/admin-api/internal/core/domain"
)

type IssueRepository struct {
	col *mongo.Collection
}

func NewIssueRepository(db *mongo.Database) *IssueRepository {
	return &IssueRepository{col: db.Collection(collectionIssues)}
}

type issueDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	domain.Issue `bson:",inline"`
}

func (d *issueDoc) toDomain() *domain.Issue {
	issue := d.Issue
	issue.ID = d.ID.Hex()
	return &issue
}

// Create inserts a new issue and returns it with its generated id.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) (*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := issueDoc{ID: primitive.NewObjectID(), Issue: *issue}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IssueRepository) FindByID(ctx context.Context, id string) (*domain.Issue, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc issueDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns issues matching f, most recently updated first.
func (r *IssueRepository) List(ctx context.Context, f domain.IssueFilter) ([]*domain.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col.Find(ctx, issueFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer cur.Close(ctx)

	issues := make([]*domain.Issue, 0)
	for cur.Next(ctx) {
		var doc issueDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode issue: %w", err)
		}
		issues = append(issues, doc.toDomain())
	}
	return issues, cur.Err()
}

func issueFilter(f domain.IssueFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Department != "" {
		filter["department"] = f.Department
	}
	if f.AssignedTo != "" {
		filter["assignedTo"] = f.AssignedTo
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"location.address": re},
		}
	}
	return filter
}

// Update applies the non-nil fields of p and returns the updated document.
func (r *IssueRepository) Update(ctx context.Context, id string, p domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	issue, err := r.findOneAndSet(ctx, bson.M{"_id": oid}, p, updatedAt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrIssueNotFound
	}
	return issue, err
}

// UpdateIfStatus applies p only while the stored status is still from. When
// the issue exists but its status has moved on, ErrInvalidTransition is
// returned.
func (r *IssueRepository) UpdateIfStatus(ctx context.Context, id string, from domain.IssueStatus, p domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	issue, err := r.findOneAndSet(ctx, bson.M{"_id": oid, "status": from}, p, updatedAt)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return issue, err
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("update issue: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrIssueNotFound
	}
	return nil, fmt.Errorf("%w: status is no longer %s", domain.ErrInvalidTransition, from)
}

// findOneAndSet returns mongo.ErrNoDocuments unwrapped when filter matches nothing.
func (r *IssueRepository) findOneAndSet(ctx context.Context, filter bson.M, p domain.IssuePatch, updatedAt time.Time) (*domain.Issue, error) {
	set := issuePatchSet(p)
	set["updatedAt"] = updatedAt

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc issueDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("update issue: %w", err)
	}
	return doc.toDomain(), nil
}

func issuePatchSet(p domain.IssuePatch) bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Priority != nil {
		set["priority"] = *p.Priority
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Reporter != nil {
		set["reporter"] = *p.Reporter
	}
	if p.AssignedTo != nil {
		set["assignedTo"] = *p.AssignedTo
	}
	if p.Department != nil {
		set["department"] = *p.Department
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	if p.ResolvedAt != nil {
		set["resolvedAt"] = *p.ResolvedAt
	}
	if p.Feedback != nil {
		set["feedback"] = *p.Feedback
	}
	return set
}

func (r *IssueRepository) Delete(ctx context.Context, id string) (*domain.Issue, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrIssueNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc issueDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIssueNotFound
		}
		return nil, fmt.Errorf("delete issue: %w", err)
	}
	return doc.toDomain(), nil
}

// ── Aggregates ────────────────────────────────────────────────────────────────

func (r *IssueRepository) CountByStatus(ctx context.Context, status domain.IssueStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.col.CountDocuments(ctx, filter)
}

func (r *IssueRepository) AverageResolutionHours(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":     domain.StatusResolved,
			"resolvedAt": bson.M{"$type": "date"},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$resolvedAt", "$createdAt"}},
				3600000,
			}}},
		}}},
	}
	return r.average(ctx, pipeline)
}

func (r *IssueRepository) AverageRating(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"feedback.rating": bson.M{"$type": "number"}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$feedback.rating"}}}},
	}
	return r.average(ctx, pipeline)
}

func (r *IssueRepository) average(ctx context.Context, pipeline mongo.Pipeline) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate issues: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode aggregate: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Avg, nil
}

func (r *IssueRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category domain.IssueCategory `bson:"_id"`
		Count    int64                `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make([]domain.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategoryCount{Category: row.Category, Count: row.Count})
	}
	return out, nil
}

// DepartmentPerformance counts total and resolved issues per assigned
// department. Unassigned issues are skipped.
func (r *IssueRepository) DepartmentPerformance(ctx context.Context) ([]domain.DepartmentPerformance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"department": bson.M{"$nin": bson.A{"", nil}}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$department",
			"total": bson.M{"$sum": 1},
			"resolved": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", domain.StatusResolved}}, 1, 0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate departments: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Department string `bson:"_id"`
		Total      int64  `bson:"total"`
		Resolved   int64  `bson:"resolved"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}

	out := make([]domain.DepartmentPerformance, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DepartmentPerformance{Department: row.Department, Total: row.Total, Resolved: row.Resolved})
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by listing filters and aggregates.
func (r *IssueRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "department", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
