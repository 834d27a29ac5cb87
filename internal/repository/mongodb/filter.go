package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

// BuildLowStockFilter translates a LowStockFilter into a MongoDB query:
// stock strictly below the threshold and, for every non-blank text filter, a
// case-insensitive match on the whole field value.
func BuildLowStockFilter(filter models.LowStockFilter) bson.D {
	filter = filter.Normalize()

	query := bson.D{{Key: models.FieldStock, Value: bson.D{{Key: "$lt", Value: filter.Threshold}}}}

	for _, f := range []struct {
		field string
		value string
	}{
		{models.FieldType, filter.Type},
		{models.FieldBrand, filter.Brand},
		{models.FieldCategory, filter.Category},
	} {
		if f.value == "" {
			continue
		}
		query = append(query, bson.E{Key: f.field, Value: exactFold(f.value)})
	}

	return query
}

// exactFold matches the literal value, anchored at both ends, ignoring case.
func exactFold(value string) bson.D {
	return bson.D{
		{Key: "$regex", Value: "^" + regexp.QuoteMeta(value) + "$"},
		{Key: "$options", Value: "i"},
	}
}
