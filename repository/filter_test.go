package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
)

func ptr[T any](v T) *T { return &v }

func TestPhoneFilterConjunction(t *testing.T) {
	filter := PhoneFilter(PhoneQuery{
		Status:   models.PhoneActive,
		Brand:    "Apple",
		MinPrice: ptr(int64(5000000)),
		MaxPrice: ptr(int64(10000000)),
		RAM:      "8GB",
		Storage:  "256GB",
	})

	assert.Equal(t, bson.M{
		"status":                             models.PhoneActive,
		"brand":                              "Apple",
		"price":                              bson.M{"$gte": int64(5000000), "$lte": int64(10000000)},
		"specifications.performance.ram":     "8GB",
		"specifications.performance.storage": "256GB",
	}, filter)
}

func TestPhoneFilterEmptyQuery(t *testing.T) {
	assert.Empty(t, PhoneFilter(PhoneQuery{}))
}

func TestPhoneFilterSearchEscapesPattern(t *testing.T) {
	filter := PhoneFilter(PhoneQuery{Search: "S24+"})
	pattern := bson.M{"$regex": `S24\+`, "$options": "i"}
	assert.Equal(t, bson.A{
		bson.M{"name": pattern},
		bson.M{"brand": pattern},
		bson.M{"description": pattern},
	}, filter["$or"])
}

func TestPhoneFilterIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	filter := PhoneFilter(PhoneQuery{IDs: []primitive.ObjectID{a}, ExcludeIDs: []primitive.ObjectID{b}})
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{a}, "$nin": []primitive.ObjectID{b}}, filter["_id"])

	// an empty, non-nil id list matches nothing
	filter = PhoneFilter(PhoneQuery{IDs: []primitive.ObjectID{}})
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{}}, filter["_id"])
}

func TestPhoneFindOptions(t *testing.T) {
	opts := PhoneFindOptions(PhoneQuery{Sort: SortRating, Desc: true, Skip: 40, Limit: 20})
	assert.Equal(t, bson.D{{Key: "averageRating", Value: -1}}, opts.Sort)
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)

	opts = PhoneFindOptions(PhoneQuery{Sort: SortPrice})
	assert.Equal(t, bson.D{{Key: "price", Value: 1}}, opts.Sort)
	assert.Nil(t, opts.Skip)

	opts = PhoneFindOptions(PhoneQuery{Sort: SortRelevance, FullText: "camera"})
	assert.Equal(t, bson.M{"score": bson.M{"$meta": "textScore"}}, opts.Sort)
}
