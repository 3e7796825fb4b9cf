package mongo

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDecimal128_KeepsCents(t *testing.T) {
	for _, s := range []string{"0", "19.99", "0.01", "1234567.89", "-5.50"} {
		in := decimal.RequireFromString(s)
		out := fromDecimal128(toDecimal128(in))
		assert.True(t, in.Equal(out), "want %s, got %s", in, out)
	}
}

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, ok := objectID(oid.Hex())
	assert.True(t, ok)
	assert.Equal(t, oid, got)

	_, ok = objectID("not-an-id")
	assert.False(t, ok)

	assert.Equal(t, oid.Hex(), hexID(oid))
	assert.Empty(t, hexID("plain"))
}

func TestDuplicateOn(t *testing.T) {
	dup := func(msg string) error {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: codeDuplicateKey, Message: msg}}}
	}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"idempotency index", dup(`E11000 duplicate key error collection: pos.sales index: idempotency_key_unique dup key: { idempotency_key: "till-1" }`), true},
		{"sale number index", dup(`E11000 duplicate key error collection: pos.sales index: sale_number_1 dup key: { sale_number: "S-1" }`), false},
		{"other code", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "index: idempotency_key_unique "}}}, false},
		{"not a server error", errors.New("index: idempotency_key_unique "), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, duplicateOn(tt.err, idempotencyIndex))
		})
	}
}
