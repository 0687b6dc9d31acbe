package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/01moynul/closetline/internal/database"
	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
)

// MongoStore persists items and enquiries as documents. Text search relies on
// the text index created by database.EnsureMongoIndexes.
type MongoStore struct {
	client    *mongo.Client
	items     *mongo.Collection
	enquiries *mongo.Collection
}

// NewMongoStore uses the named database of a connected client.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		items:     db.Collection(database.ItemsCollection),
		enquiries: db.Collection(database.EnquiriesCollection),
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateItem inserts a new item document.
func (s *MongoStore) CreateItem(ctx context.Context, item *models.Item) error {
	if _, err := s.items.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// GetItem fetches an item by ID, active or not.
func (s *MongoStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	err := s.items.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching item: %w", err)
	}
	return &item, nil
}

// UpdateItem replaces the stored document.
func (s *MongoStore) UpdateItem(ctx context.Context, item *models.Item) error {
	res, err := s.items.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetItemActive flips the soft-delete flag.
func (s *MongoStore) SetItemActive(ctx context.Context, id string, active bool) error {
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	res, err := s.items.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// itemQuery translates a filter into a document query over active items.
func itemQuery(f ItemFilter) bson.M {
	q := bson.M{"isActive": true}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Size != "" {
		q["size"] = f.Size
	}
	if f.Condition != "" {
		q["condition"] = f.Condition
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["price"] = price
	}
	if f.HasSearch() {
		q["$text"] = bson.M{"$search": f.Search}
	}
	return q
}

// ListItems pages the active items matching f, ranked by text score when searching.
func (s *MongoStore) ListItems(ctx context.Context, f ItemFilter, p pagination.Params) ([]models.Item, int64, error) {
	q := itemQuery(f)

	total, err := s.items.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	cur, err := s.items.Find(ctx, q, itemFindOptions(f, p))
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	items := make([]models.Item, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decoding items: %w", err)
	}
	return items, total, nil
}

// itemFindOptions pages the query and picks the sort: text score first when
// searching, otherwise newest first.
func itemFindOptions(f ItemFilter, p pagination.Params) *options.FindOptions {
	opts := options.Find().SetSkip(int64(p.Skip())).SetLimit(int64(p.Limit))
	if f.HasSearch() {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "dateAdded", Value: -1}})
	} else {
		opts.SetSort(bson.D{{Key: "dateAdded", Value: -1}, {Key: "_id", Value: 1}})
	}
	return opts
}

// ItemStats aggregates the active items per type and lists the most recent ones.
func (s *MongoStore) ItemStats(ctx context.Context) (*models.ItemStats, error) {
	active := bson.M{"isActive": true}
	stats := &models.ItemStats{
		TypeStats:   []models.TypeCount{},
		RecentItems: []models.RecentItem{},
	}

	total, err := s.items.CountDocuments(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}
	stats.TotalItems = total

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: active}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.items.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("grouping items by type: %w", err)
	}
	if err := cur.All(ctx, &stats.TypeStats); err != nil {
		return nil, fmt.Errorf("decoding type counts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "dateAdded", Value: -1}}).
		SetLimit(RecentItemsLimit).
		SetProjection(bson.M{"name": 1, "type": 1, "dateAdded": 1})
	recent, err := s.items.Find(ctx, active, opts)
	if err != nil {
		return nil, fmt.Errorf("listing recent items: %w", err)
	}
	if err := recent.All(ctx, &stats.RecentItems); err != nil {
		return nil, fmt.Errorf("decoding recent items: %w", err)
	}
	return stats, nil
}

// CreateEnquiry inserts a new enquiry document.
func (s *MongoStore) CreateEnquiry(ctx context.Context, e *models.Enquiry) error {
	if _, err := s.enquiries.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("inserting enquiry: %w", err)
	}
	return nil
}

// MarkEnquiryEmailSent records a successful notification.
func (s *MongoStore) MarkEnquiryEmailSent(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"emailSent": true, "emailSentAt": at.UTC(), "updatedAt": at.UTC()}}
	res, err := s.enquiries.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("marking enquiry email sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEnquiries pages enquiries newest first and populates the item projection
// with a second query over the referenced IDs.
func (s *MongoStore) ListEnquiries(ctx context.Context, f EnquiryFilter, p pagination.Params) ([]models.EnquiryListing, int64, error) {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}

	total, err := s.enquiries.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("counting enquiries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(p.Skip())).
		SetLimit(int64(p.Limit))
	cur, err := s.enquiries.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing enquiries: %w", err)
	}
	var enquiries []models.Enquiry
	if err := cur.All(ctx, &enquiries); err != nil {
		return nil, 0, fmt.Errorf("decoding enquiries: %w", err)
	}

	refs, err := s.itemRefs(ctx, enquiries)
	if err != nil {
		return nil, 0, err
	}
	out := make([]models.EnquiryListing, 0, len(enquiries))
	for _, e := range enquiries {
		listing := models.EnquiryListing{Enquiry: e}
		if ref, ok := refs[e.ItemID]; ok {
			listing.Item = &ref
		}
		out = append(out, listing)
	}
	return out, total, nil
}

func (s *MongoStore) itemRefs(ctx context.Context, enquiries []models.Enquiry) (map[string]models.ItemRef, error) {
	refs := make(map[string]models.ItemRef)
	if len(enquiries) == 0 {
		return refs, nil
	}
	ids := make([]string, 0, len(enquiries))
	for _, e := range enquiries {
		ids = append(ids, e.ItemID)
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "type": 1, "coverImage": 1})
	cur, err := s.items.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("loading enquiry items: %w", err)
	}
	var found []models.ItemRef
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decoding enquiry items: %w", err)
	}
	for _, ref := range found {
		refs[ref.ID] = ref
	}
	return refs, nil
}
