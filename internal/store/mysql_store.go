package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/closetline/internal/models"
	"github.com/01moynul/closetline/internal/pagination"
)

// MySQLStore persists items and enquiries in MySQL. Text search uses the
// FULLTEXT index over name, description and type.
type MySQLStore struct {
	DB *sql.DB
}

// NewMySQLStore wraps an open connection pool.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *MySQLStore) Close(context.Context) error {
	return s.DB.Close()
}

const itemColumns = `id, name, type, description, cover_image, additional_images, date_added,
	is_active, tags, price, size, color, brand, item_condition, created_at, updated_at`

const searchMatch = `MATCH(name, description, type) AGAINST (? IN NATURAL LANGUAGE MODE)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, extra ...any) (*models.Item, error) {
	var (
		item   models.Item
		images []byte
		tags   []byte
		price  sql.NullFloat64
	)
	dest := []any{
		&item.ID, &item.Name, &item.Type, &item.Description, &item.CoverImage, &images, &item.DateAdded,
		&item.IsActive, &tags, &price, &item.Size, &item.Color, &item.Brand, &item.Condition,
		&item.CreatedAt, &item.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &item.AdditionalImages); err != nil {
		return nil, fmt.Errorf("decoding additional images of item %s: %w", item.ID, err)
	}
	if err := json.Unmarshal(tags, &item.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of item %s: %w", item.ID, err)
	}
	if price.Valid {
		item.Price = &price.Float64
	}
	return &item, nil
}

func encodeList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func nullPrice(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func itemArgs(item *models.Item) ([]any, error) {
	images, err := encodeList(item.AdditionalImages)
	if err != nil {
		return nil, err
	}
	tags, err := encodeList(item.Tags)
	if err != nil {
		return nil, err
	}
	return []any{
		item.Name, item.Type, item.Description, item.CoverImage, images, item.DateAdded.UTC(),
		item.IsActive, tags, nullPrice(item.Price), item.Size, item.Color, item.Brand, item.Condition,
		item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	}, nil
}

// CreateItem inserts a new item row.
func (s *MySQLStore) CreateItem(ctx context.Context, item *models.Item) error {
	args, err := itemArgs(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	query := `INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.DB.ExecContext(ctx, query, append([]any{item.ID}, args...)...); err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// GetItem fetches an item by ID, active or not.
func (s *MySQLStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching item: %w", err)
	}
	return item, nil
}

// UpdateItem overwrites every mutable column of an existing item.
func (s *MySQLStore) UpdateItem(ctx context.Context, item *models.Item) error {
	args, err := itemArgs(item)
	if err != nil {
		return fmt.Errorf("encoding item: %w", err)
	}
	query := `
		UPDATE items SET
			name = ?, type = ?, description = ?, cover_image = ?, additional_images = ?, date_added = ?,
			is_active = ?, tags = ?, price = ?, size = ?, color = ?, brand = ?, item_condition = ?,
			created_at = ?, updated_at = ?
		WHERE id = ?`
	return s.execOne(ctx, "updating item", query, append(args, item.ID)...)
}

// SetItemActive flips the soft-delete flag.
func (s *MySQLStore) SetItemActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE items SET is_active = ?, updated_at = ? WHERE id = ?`
	return s.execOne(ctx, "updating item status", query, active, time.Now().UTC(), id)
}

// execOne runs an UPDATE and maps a missing row to ErrNotFound. The pool is
// opened with clientFoundRows, so matched rows are counted even when unchanged.
func (s *MySQLStore) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// whereItems builds the WHERE clause shared by the listing and its count.
func whereItems(f ItemFilter) (string, []any) {
	var sb strings.Builder
	args := []any{}

	sb.WriteString(" WHERE is_active = 1")
	if f.Type != "" {
		sb.WriteString(" AND type = ?")
		args = append(args, f.Type)
	}
	if f.Size != "" {
		sb.WriteString(" AND size = ?")
		args = append(args, f.Size)
	}
	if f.Condition != "" {
		sb.WriteString(" AND item_condition = ?")
		args = append(args, f.Condition)
	}
	if f.MinPrice != nil {
		sb.WriteString(" AND price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		sb.WriteString(" AND price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.HasSearch() {
		sb.WriteString(" AND " + searchMatch)
		args = append(args, f.Search)
	}
	return sb.String(), args
}

// ListItems pages the active items matching f.
func (s *MySQLStore) ListItems(ctx context.Context, f ItemFilter, p pagination.Params) ([]models.Item, int64, error) {
	where, args := whereItems(f)

	var total int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	var query strings.Builder
	query.WriteString(`SELECT ` + itemColumns)
	selectArgs := []any{}
	if f.HasSearch() {
		query.WriteString(", " + searchMatch + " AS score")
		selectArgs = append(selectArgs, f.Search)
	}
	query.WriteString(" FROM items" + where)
	if f.HasSearch() {
		query.WriteString(" ORDER BY score DESC, date_added DESC, id")
	} else {
		query.WriteString(" ORDER BY date_added DESC, id")
	}
	query.WriteString(" LIMIT ? OFFSET ?")
	selectArgs = append(selectArgs, args...)
	selectArgs = append(selectArgs, p.Limit, p.Skip())

	rows, err := s.DB.QueryContext(ctx, query.String(), selectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var extra []any
		var score float64
		if f.HasSearch() {
			extra = append(extra, &score)
		}
		item, err := scanItem(rows, extra...)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	return items, total, nil
}

// ItemStats counts active items per type and lists the most recent ones.
func (s *MySQLStore) ItemStats(ctx context.Context) (*models.ItemStats, error) {
	stats := &models.ItemStats{
		TypeStats:   []models.TypeCount{},
		RecentItems: []models.RecentItem{},
	}

	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE is_active = 1`).Scan(&stats.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT type, COUNT(*) AS n FROM items
		WHERE is_active = 1
		GROUP BY type
		ORDER BY n DESC, type`)
	if err != nil {
		return nil, fmt.Errorf("grouping items by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tc models.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning type count: %w", err)
		}
		stats.TypeStats = append(stats.TypeStats, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("grouping items by type: %w", err)
	}

	recent, err := s.DB.QueryContext(ctx, `
		SELECT id, name, type, date_added FROM items
		WHERE is_active = 1
		ORDER BY date_added DESC
		LIMIT ?`, RecentItemsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recent items: %w", err)
	}
	defer recent.Close()
	for recent.Next() {
		var r models.RecentItem
		if err := recent.Scan(&r.ID, &r.Name, &r.Type, &r.DateAdded); err != nil {
			return nil, fmt.Errorf("scanning recent item: %w", err)
		}
		stats.RecentItems = append(stats.RecentItems, r)
	}
	if err := recent.Err(); err != nil {
		return nil, fmt.Errorf("listing recent items: %w", err)
	}
	return stats, nil
}

// CreateEnquiry inserts a new enquiry row.
func (s *MySQLStore) CreateEnquiry(ctx context.Context, e *models.Enquiry) error {
	var sentAt sql.NullTime
	if e.EmailSentAt != nil {
		sentAt = sql.NullTime{Time: e.EmailSentAt.UTC(), Valid: true}
	}
	query := `
		INSERT INTO enquiries (id, item_id, customer_name, customer_email, customer_phone, message,
			status, email_sent, email_sent_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.DB.ExecContext(ctx, query,
		e.ID, e.ItemID, e.CustomerName, e.CustomerEmail, e.CustomerPhone, e.Message,
		e.Status, e.EmailSent, sentAt, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting enquiry: %w", err)
	}
	return nil
}

// MarkEnquiryEmailSent records a successful notification.
func (s *MySQLStore) MarkEnquiryEmailSent(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE enquiries SET email_sent = 1, email_sent_at = ?, updated_at = ? WHERE id = ?`
	return s.execOne(ctx, "marking enquiry email sent", query, at.UTC(), at.UTC(), id)
}

// ListEnquiries pages enquiries newest first. The item projection comes from a
// LEFT JOIN so enquiries about removed rows still list with a nil item.
func (s *MySQLStore) ListEnquiries(ctx context.Context, f EnquiryFilter, p pagination.Params) ([]models.EnquiryListing, int64, error) {
	where := ""
	args := []any{}
	if f.Status != "" {
		where = " WHERE e.status = ?"
		args = append(args, f.Status)
	}

	var total int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM enquiries e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting enquiries: %w", err)
	}

	query := `
		SELECT e.id, e.item_id, e.customer_name, e.customer_email, e.customer_phone, e.message,
			e.status, e.email_sent, e.email_sent_at, e.created_at, e.updated_at,
			i.id, i.name, i.type, i.cover_image
		FROM enquiries e
		LEFT JOIN items i ON i.id = e.item_id` + where + `
		ORDER BY e.created_at DESC, e.id
		LIMIT ? OFFSET ?`
	rows, err := s.DB.QueryContext(ctx, query, append(args, p.Limit, p.Skip())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing enquiries: %w", err)
	}
	defer rows.Close()

	out := make([]models.EnquiryListing, 0)
	for rows.Next() {
		var (
			l                               models.EnquiryListing
			sentAt                          sql.NullTime
			itemID, itemName, itemType, cov sql.NullString
		)
		err := rows.Scan(
			&l.ID, &l.ItemID, &l.CustomerName, &l.CustomerEmail, &l.CustomerPhone, &l.Message,
			&l.Status, &l.EmailSent, &sentAt, &l.CreatedAt, &l.UpdatedAt,
			&itemID, &itemName, &itemType, &cov,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning enquiry: %w", err)
		}
		if sentAt.Valid {
			t := sentAt.Time
			l.EmailSentAt = &t
		}
		if itemID.Valid {
			l.Item = &models.ItemRef{ID: itemID.String, Name: itemName.String, Type: itemType.String, CoverImage: cov.String}
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing enquiries: %w", err)
	}
	return out, total, nil
}
