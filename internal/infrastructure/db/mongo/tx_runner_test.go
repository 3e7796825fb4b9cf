package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/retailpos/pos-system/internal/core/domain"
)

func TestMarkConflict(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"transient label", mongo.CommandError{Code: 251, Labels: []string{labelTransientTxn}}, true},
		{"write conflict code", mongo.CommandError{Code: codeWriteConflict, Name: "WriteConflict"}, true},
		{"wrapped write exception", fmt.Errorf("decrement stock: %w", mongo.WriteException{
			WriteErrors: mongo.WriteErrors{{Code: codeWriteConflict}},
		}), true},
		{"duplicate key", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: codeDuplicateKey}}}, false},
		{"validation", domain.Invalid(domain.ErrInsufficientStock, "item 0"), false},
		{"plain", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := markConflict(tt.err)
			assert.Equal(t, tt.conflict, errors.Is(got, domain.ErrTxConflict))
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}
}
