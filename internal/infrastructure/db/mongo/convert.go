package mongo

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const codeDuplicateKey = 11000

// Money is persisted as Decimal128 so sums in aggregations stay exact.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// decimal.String never yields an unparsable literal.
		panic(fmt.Sprintf("decimal128 from %s: %v", d.String(), err))
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// objectID parses a hex id. ok is false for malformed ids, which callers
// report as not found.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func hexID(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

// duplicateOn reports whether err is a duplicate key violation of the named
// index. The server only names the index in the error message.
func duplicateOn(err error, index string) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCodeWithMessage(codeDuplicateKey, "index: "+index+" ")
}
