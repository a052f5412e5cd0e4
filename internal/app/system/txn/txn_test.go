package txn

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some random error"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"code 51", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"code 263", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"other code", mongo.CommandError{Code: 100, Message: "Some other error"}, false},
		{"replica set wording", errors.New("transaction failed: not a replica set member"), true},
		{"sessions not supported", errors.New("session operations are not supported on this server"), true},
		{"transaction alone", errors.New("transaction failed"), false},
		{"upper case", errors.New("TRANSACTION FAILED on REPLICA SET"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
