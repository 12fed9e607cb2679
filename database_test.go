package main

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreatePlayerAndLookup(t *testing.T) {
	db := testDB(t)

	id, err := db.CreatePlayer("alice", "hash")
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero player id")
	}

	row, err := db.GetPlayerByUsername("alice")
	if err != nil {
		t.Fatalf("GetPlayerByUsername: %v", err)
	}
	if row == nil || row.ID != id || row.PassHash != "hash" {
		t.Fatalf("unexpected player row: %+v", row)
	}

	missing, err := db.GetPlayerByUsername("nobody")
	if err != nil || missing != nil {
		t.Errorf("missing player should be (nil, nil), got (%+v, %v)", missing, err)
	}

	exists, err := db.UsernameExists("alice")
	if err != nil || !exists {
		t.Error("alice should exist")
	}

	if _, err := db.CreatePlayer("alice", "other"); err == nil {
		t.Error("duplicate username should be rejected")
	}
}

func TestRecordRoundAccumulatesStats(t *testing.T) {
	db := testDB(t)
	id, _ := db.CreatePlayer("bob", "hash")

	stats, err := db.GetStats(id)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats == nil || stats.Games != 0 {
		t.Fatalf("fresh account should have zeroed stats, got %+v", stats)
	}

	if err := db.RecordRound(id, 420, 42.5, false); err != nil {
		t.Fatalf("RecordRound: %v", err)
	}
	if err := db.RecordRound(id, 900, 90.0, true); err != nil {
		t.Fatalf("RecordRound: %v", err)
	}
	if err := db.RecordRound(id, 100, 10.0, false); err != nil {
		t.Fatalf("RecordRound: %v", err)
	}
	if err := db.RecordPowerup(id); err != nil {
		t.Fatalf("RecordPowerup: %v", err)
	}

	stats, err = db.GetStats(id)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Games != 3 || stats.Wins != 1 || stats.Deaths != 2 {
		t.Errorf("expected games=3 wins=1 deaths=2, got %+v", stats)
	}
	if stats.BestScore != 900 {
		t.Errorf("best score should keep the max, got %f", stats.BestScore)
	}
	if stats.SurvivalSecs != 142.5 {
		t.Errorf("survival should accumulate, got %f", stats.SurvivalSecs)
	}
	if stats.Powerups != 1 {
		t.Errorf("expected 1 powerup, got %d", stats.Powerups)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := testDB(t)
	a, _ := db.CreatePlayer("a", "h")
	b, _ := db.CreatePlayer("b", "h")
	db.RecordRound(a, 500, 50, false)
	db.RecordRound(b, 900, 20, true)

	top, err := db.GetLeaderboard("score", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Username != "b" || top[0].Rank != 1 {
		t.Errorf("expected b first by score, got %+v", top[0])
	}

	top, err = db.GetLeaderboard("survival", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if top[0].Username != "a" {
		t.Errorf("expected a first by survival, got %+v", top[0])
	}

	// Unknown sort columns fall back to best score
	top, err = db.GetLeaderboard("'; DROP TABLE players; --", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard with bad column: %v", err)
	}
	if top[0].Username != "b" {
		t.Errorf("bad sort column should fall back to best score, got %+v", top[0])
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := testDB(t)

	if got := db.GetSetting("missing"); got != "" {
		t.Errorf("missing setting should be empty, got %q", got)
	}
	if err := db.SetSetting("k", "v1"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := db.SetSetting("k", "v2"); err != nil {
		t.Fatalf("SetSetting upsert: %v", err)
	}
	if got := db.GetSetting("k"); got != "v2" {
		t.Errorf("expected v2, got %q", got)
	}
}

func TestInsertEvents(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()
	events := []AnalyticsEvent{
		{Type: EvtRoomCreated, RoomID: "AAAAAA", Timestamp: now},
		{Type: EvtPlayerDeath, PlayerID: 7, RoomID: "AAAAAA", Data: `{"score":120}`, Timestamp: now},
	}
	if err := db.InsertEvents(events); err != nil {
		t.Fatalf("InsertEvents: %v", err)
	}

	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}
