// Package aggregate composes the MongoDB aggregation pipelines that assemble
// denormalized views from the normalized collections.
package aggregate

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Lookup describes a $lookup join. When Pipeline is set it runs against each
// joined document after the equality match.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Pipeline     mongo.Pipeline
}

// Stage renders the $lookup stage.
func (l Lookup) Stage() bson.D {
	spec := bson.D{
		{Key: "from", Value: l.From},
		{Key: "localField", Value: l.LocalField},
		{Key: "foreignField", Value: l.ForeignField},
	}
	if len(l.Pipeline) > 0 {
		spec = append(spec, bson.E{Key: "pipeline", Value: l.Pipeline})
	}
	spec = append(spec, bson.E{Key: "as", Value: l.As})
	return bson.D{{Key: "$lookup", Value: spec}}
}

// Pipeline accumulates stages in order.
type Pipeline struct {
	stages mongo.Pipeline
}

// Start begins an empty pipeline.
func Start() *Pipeline {
	return &Pipeline{}
}

// Stage appends raw stages.
func (p *Pipeline) Stage(stages ...bson.D) *Pipeline {
	p.stages = append(p.stages, stages...)
	return p
}

// Match filters documents.
func (p *Pipeline) Match(filter bson.D) *Pipeline {
	return p.Stage(bson.D{{Key: "$match", Value: filter}})
}

// Lookup appends a list-valued join.
func (p *Pipeline) Lookup(l Lookup) *Pipeline {
	return p.Stage(l.Stage())
}

// LookupOne joins a semantically one-to-one relation and flattens the result,
// so callers see an object (or null) instead of a one-element list.
func (p *Pipeline) LookupOne(l Lookup) *Pipeline {
	return p.Lookup(l).Flatten(l.As)
}

// Flatten replaces an array field with its first element, or null when the
// array is empty or missing.
func (p *Pipeline) Flatten(field string) *Pipeline {
	return p.AddFields(bson.D{{Key: field, Value: First("$" + field)}})
}

// AddFields sets computed fields.
func (p *Pipeline) AddFields(fields bson.D) *Pipeline {
	return p.Stage(bson.D{{Key: "$addFields", Value: fields}})
}

// Project shapes the output documents.
func (p *Pipeline) Project(fields bson.D) *Pipeline {
	return p.Stage(bson.D{{Key: "$project", Value: fields}})
}

// Unset drops fields.
func (p *Pipeline) Unset(fields ...string) *Pipeline {
	return p.Stage(bson.D{{Key: "$unset", Value: fields}})
}

// Sort orders documents by keys.
func (p *Pipeline) Sort(keys bson.D) *Pipeline {
	return p.Stage(bson.D{{Key: "$sort", Value: keys}})
}

// Limit caps the number of documents.
func (p *Pipeline) Limit(n int64) *Pipeline {
	return p.Stage(bson.D{{Key: "$limit", Value: n}})
}

// Unwind expands an array field into one document per element.
func (p *Pipeline) Unwind(field string) *Pipeline {
	return p.Stage(bson.D{{Key: "$unwind", Value: "$" + field}})
}

// ReplaceRoot promotes an embedded document to the top level.
func (p *Pipeline) ReplaceRoot(field string) *Pipeline {
	return p.Stage(bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$" + field}}}})
}

// Build returns the accumulated stages.
func (p *Pipeline) Build() mongo.Pipeline {
	out := make(mongo.Pipeline, len(p.stages))
	copy(out, p.stages)
	return out
}

// First is the expression form of Flatten: the first element of an array
// expression, or null.
func First(array string) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{
		bson.D{{Key: "$arrayElemAt", Value: bson.A{array, 0}}},
		nil,
	}}}
}

// Size counts the elements of an array field, treating a missing field as empty.
func Size(field string) bson.D {
	return bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}}}
}
