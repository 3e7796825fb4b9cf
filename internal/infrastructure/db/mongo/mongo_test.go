package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportsTransactions(t *testing.T) {
	assert.True(t, supportsTransactions(helloReply{SetName: "rs0"}))
	assert.True(t, supportsTransactions(helloReply{Msg: "isdbgrid"}))
	assert.False(t, supportsTransactions(helloReply{}))
}
