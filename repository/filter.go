package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var sortFields = map[SortKey]string{
	SortCreatedAt: "createdAt",
	SortPrice:     "price",
	SortRating:    "averageRating",
	SortName:      "name",
}

// PhoneFilter translates q into a mongo filter document.
func PhoneFilter(q PhoneQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Brand != "" {
		filter["brand"] = q.Brand
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if q.RAM != "" {
		filter["specifications.performance.ram"] = q.RAM
	}
	if q.Storage != "" {
		filter["specifications.performance.storage"] = q.Storage
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Subcategory != "" {
		filter["subcategory"] = q.Subcategory
	}
	if q.Search != "" {
		pattern := containsPattern(q.Search)
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"brand": pattern},
			bson.M{"description": pattern},
		}
	}
	if q.FullText != "" {
		filter["$text"] = bson.M{"$search": q.FullText}
	}

	id := bson.M{}
	if q.IDs != nil {
		id["$in"] = q.IDs
	}
	if len(q.ExcludeIDs) > 0 {
		id["$nin"] = q.ExcludeIDs
	}
	if len(id) > 0 {
		filter["_id"] = id
	}
	return filter
}

func containsPattern(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

// PhoneFindOptions builds sort, skip and limit for q.
func PhoneFindOptions(q PhoneQuery) *options.FindOptions {
	opts := options.Find()
	if q.Sort == SortRelevance && q.FullText != "" {
		score := bson.M{"$meta": "textScore"}
		opts.SetProjection(bson.M{"score": score})
		opts.SetSort(bson.M{"score": score})
	} else if field, ok := sortFields[q.Sort]; ok {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: field, Value: dir}})
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}
