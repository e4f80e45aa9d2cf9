package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	cols := Collections()
	require.Len(t, cols, 2)

	bookings := cols[BookingsCollection]
	schema := bookings.Validator["$jsonSchema"].(bson.M)
	assert.Contains(t, schema["required"], "date")
	assert.Contains(t, schema["required"], "method")

	locks := cols[BookingLocksCollection]
	require.Len(t, locks.Indexes, 1)
	require.NotNil(t, locks.Indexes[0].Options)
	require.NotNil(t, locks.Indexes[0].Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *locks.Indexes[0].Options.ExpireAfterSeconds)
}
