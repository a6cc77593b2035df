// Package pagination implements id-keyed cursor paging. Records are ordered by
// their ObjectID, which grows with insertion order, so a page boundary is just
// "ids greater than the last one seen" and concurrent inserts never shift it.
package pagination

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultLimit is used when the caller does not ask for a page size.
	DefaultLimit int64 = 10
	// MaxLimit caps the page size a caller may request.
	MaxLimit int64 = 100
)

// Request is a parsed cursor page request.
type Request struct {
	After *primitive.ObjectID
	Limit int64
}

// Parse builds a Request from raw query parameters.
func Parse(limit, lastID string) Request {
	return Request{After: ParseCursor(lastID), Limit: ParseLimit(limit)}
}

// ParseLimit returns the requested page size. Missing, malformed and
// non-positive values fall back to DefaultLimit; large values are clamped.
func ParseLimit(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ParseCursor decodes a lastId value. A malformed id is treated as absent so
// the listing restarts from the beginning rather than failing.
func ParseCursor(raw string) *primitive.ObjectID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil
	}
	return &id
}

// Filter extends base with the cursor bound.
func (r Request) Filter(base bson.D) bson.D {
	out := make(bson.D, 0, len(base)+1)
	out = append(out, base...)
	if r.After != nil {
		out = append(out, bson.E{Key: "_id", Value: bson.D{{Key: "$gt", Value: *r.After}}})
	}
	return out
}

// Stages returns the ordering and size stages of a page.
func (r Request) Stages() []bson.D {
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return []bson.D{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

// NextCursor returns the id of the last item, or nil for an empty page, which
// tells the caller there is nothing further to fetch.
func NextCursor[T any](items []T, id func(T) primitive.ObjectID) *primitive.ObjectID {
	if len(items) == 0 {
		return nil
	}
	last := id(items[len(items)-1])
	return &last
}
