package main

import (
	"testing"
	"time"
)

func TestAnalyticsFlushOnStop(t *testing.T) {
	db := testDB(t)
	a := NewAnalytics(db)

	a.Track(EvtRoomCreated, 0, "ROOM01", "")
	a.Track(EvtSessionStart, 42, "", "")
	a.Stop()

	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 flushed events, got %d", count)
	}
}

func TestAnalyticsBatchFlush(t *testing.T) {
	db := testDB(t)
	a := NewAnalytics(db)
	defer a.Stop()

	for i := 0; i < 50; i++ {
		a.Track(EvtPowerupPickup, int64(i), "ROOM01", "SPEED")
	}

	// The writer flushes as soon as a full batch accumulates
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var count int
		if err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
			t.Fatalf("count events: %v", err)
		}
		if count == 50 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("batch was not flushed in time")
}

func TestAnalyticsNilDB(t *testing.T) {
	a := NewAnalytics(nil)
	a.Track(EvtRoomCreated, 0, "ROOM01", "")
	a.Stop() // must not panic
}
