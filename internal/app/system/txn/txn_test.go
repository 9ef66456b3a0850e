// internal/app/system/txn/txn_test.go
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
		{"generic error", errors.New("something broke"), false},
		{"command error code 20", mongo.CommandError{Code: 20, Message: "IllegalOperation"}, true},
		{"command error code 51", mongo.CommandError{Code: 51, Message: "no such command"}, true},
		{"command error code 263", mongo.CommandError{Code: 263, Message: "OperationNotSupportedInTransaction"}, true},
		{"command error other code", mongo.CommandError{Code: 100, Message: "UnsatisfiableWriteConcern"}, false},
		{"transaction on replica set message", errors.New("Transaction numbers are only allowed on a replica set member or mongos"), true},
		{"sessions not supported message", errors.New("sessions are not supported by this server"), true},
		{"transaction alone", errors.New("transaction failed"), false},
		{"transaction in session message", errors.New("cannot continue transaction in current session"), true},
		{"illegal operation in transaction", errors.New("illegal operation during transaction"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNotSupported_CaseInsensitive(t *testing.T) {
	if !IsNotSupported(errors.New("TRANSACTION FAILED on REPLICA SET")) {
		t.Error("expected uppercase replica set message to match")
	}
	if !IsNotSupported(errors.New("Transaction Session error")) {
		t.Error("expected mixed-case session message to match")
	}
}
