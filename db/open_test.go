package db

import (
	"context"
	"testing"
)

func TestOpen(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "", testClock); err == nil {
		t.Errorf("expected error for unknown driver")
	}

	db, err := Open(context.Background(), "sqlite", ":memory:", testClock)
	if err != nil {
		t.Fatalf("error opening sqlite store: %v", err)
	}
	db.Close()
}
