package mongo

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	domainreservation "campusnest/internal/domain/reservation"
)

func TestConflictError_MapsWriteContention(t *testing.T) {
	writeConflict := mongo.CommandError{Code: writeConflictCode, Message: "WriteConflict"}
	if err := conflictError(writeConflict); !errors.Is(err, domainreservation.ErrConflict) {
		t.Errorf("Expected ErrConflict for a write conflict, got %v", err)
	}

	transient := mongo.CommandError{Code: 251, Labels: []string{"TransientTransactionError"}}
	if err := conflictError(transient); !errors.Is(err, domainreservation.ErrConflict) {
		t.Errorf("Expected ErrConflict for a transient transaction error, got %v", err)
	}

	duplicate := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	if err := conflictError(duplicate); !errors.Is(err, domainreservation.ErrConflict) {
		t.Errorf("Expected ErrConflict for a duplicate key, got %v", err)
	}
}

func TestConflictError_PassesOtherErrorsThrough(t *testing.T) {
	if err := conflictError(nil); err != nil {
		t.Errorf("Expected nil to stay nil, got %v", err)
	}

	plain := errors.New("connection reset")
	if err := conflictError(plain); !errors.Is(err, plain) {
		t.Errorf("Expected the original error back, got %v", err)
	}

	notFound := mongo.CommandError{Code: 26, Message: "ns not found"}
	if err := conflictError(notFound); errors.Is(err, domainreservation.ErrConflict) {
		t.Error("Expected an unrelated server error to pass through")
	}
}
