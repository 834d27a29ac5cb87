package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Column names shared by the spreadsheet and the inventory collection.
const (
	FieldID       = "_id"
	FieldBrand    = "brand"
	FieldType     = "type"
	FieldVolume   = "volume"
	FieldCategory = "category"
	FieldStock    = "stock"
)

// DefaultThreshold is the exclusive upper bound used when no threshold is supplied.
const DefaultThreshold = 10

// RequiredColumns lists the columns every imported sheet must carry.
var RequiredColumns = []string{FieldBrand, FieldType, FieldVolume, FieldCategory, FieldStock}

// KeyFields is the natural key of an inventory line.
var KeyFields = []string{FieldBrand, FieldType, FieldVolume, FieldCategory}

// Record is one inventory line as an ordered set of column/value pairs.
// Column order is kept so exports mirror the imported sheet layout.
type Record bson.D

// Get returns the value stored under key.
func (r Record) Get(key string) (interface{}, bool) {
	for _, elem := range r {
		if elem.Key == key {
			return elem.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key or appends it when absent.
func (r *Record) Set(key string, value interface{}) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, bson.E{Key: key, Value: value})
}

// Keys returns the column names in order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for _, elem := range r {
		keys = append(keys, elem.Key)
	}
	return keys
}

// Without returns a copy of the record minus the given key.
func (r Record) Without(key string) Record {
	out := make(Record, 0, len(r))
	for _, elem := range r {
		if elem.Key == key {
			continue
		}
		out = append(out, elem)
	}
	return out
}

// NaturalKey builds the store filter identifying this inventory line.
func (r Record) NaturalKey() bson.D {
	key := make(bson.D, 0, len(KeyFields))
	for _, field := range KeyFields {
		value, _ := r.Get(field)
		key = append(key, bson.E{Key: field, Value: value})
	}
	return key
}

// LowStockFilter narrows the low stock query. Blank text filters are ignored.
type LowStockFilter struct {
	Threshold int    `json:"threshold"`
	Type      string `json:"type,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Normalize trims the text filters. The threshold is used as given, zero and
// negative values included.
func (f LowStockFilter) Normalize() LowStockFilter {
	f.Type = strings.TrimSpace(f.Type)
	f.Brand = strings.TrimSpace(f.Brand)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// ImportResult summarises an upsert run.
type ImportResult struct {
	Records  int `json:"records"`
	Matched  int `json:"matched"`
	Upserted int `json:"upserted"`
}
