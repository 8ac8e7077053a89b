package planner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func snapshotFetcher(raw RawStockSnapshot, err error) CatalogFetcher {
	return func(ctx context.Context, projectID int) (RawStockSnapshot, error) {
		return raw, err
	}
}

func testSnapshot() RawStockSnapshot {
	return RawStockSnapshot{
		"Tower A": {
			"Floor 1": {
				"Beam": {
					"element_type_id":  1.0,
					"balance_elements": 10.0,
					"floor_id":         1.0,
				},
			},
		},
	}
}

func TestSessionStore_OpenReady(t *testing.T) {
	store := NewSessionStore()
	session, err := store.Open(context.Background(), 42, 7, snapshotFetcher(testSnapshot(), nil))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if session.Status != StatusReady {
		t.Errorf("Expected status ready, got %q", session.Status)
	}
	if session.ProjectID != 42 || session.UserID != 7 {
		t.Error("Expected project and user recorded on session")
	}
	if len(session.Plan.Blocks) != 1 {
		t.Error("Expected session to start with the initial plan")
	}

	got, err := store.Get(session.ID)
	if err != nil || got != session {
		t.Error("Expected to retrieve the registered session")
	}
}

func TestSessionStore_OpenFetchError(t *testing.T) {
	store := NewSessionStore()
	session, err := store.Open(context.Background(), 42, 7, snapshotFetcher(nil, errors.New("upstream down")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if session.Status != StatusError {
		t.Errorf("Expected error status, got %q", session.Status)
	}
	if session.Message == "" {
		t.Error("Expected fetch error surfaced as message")
	}
	if len(session.Catalog) != 0 {
		t.Error("Expected empty catalog in error state")
	}
}

func TestSessionStore_OpenEmptySnapshot(t *testing.T) {
	store := NewSessionStore()
	session, err := store.Open(context.Background(), 42, 7, snapshotFetcher(RawStockSnapshot{}, nil))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if session.Status != StatusReady {
		t.Errorf("Expected ready status with empty catalog, got %q", session.Status)
	}
	if session.Message == "" {
		t.Error("Expected explanatory message for empty snapshot")
	}
}

func TestSessionStore_OpenCancelledContextDiscardsResult(t *testing.T) {
	store := NewSessionStore()
	ctx, cancel := context.WithCancel(context.Background())

	fetch := func(ctx context.Context, projectID int) (RawStockSnapshot, error) {
		cancel() // planner torn down while the fetch is in flight
		return testSnapshot(), nil
	}

	if _, err := store.Open(ctx, 42, 7, fetch); err == nil {
		t.Fatal("Expected context error from cancelled open")
	}
	if store.Count() != 0 {
		t.Error("Expected no session registered after cancellation")
	}
}

func TestSessionStore_Reload(t *testing.T) {
	store := NewSessionStore()
	session, err := store.Open(context.Background(), 42, 7, snapshotFetcher(testSnapshot(), nil))
	if err != nil {
		t.Fatal(err)
	}
	session.Plan.SelectTower("Tower A")

	bigger := testSnapshot()
	bigger["Tower A"]["Floor 1"]["Beam"]["balance_elements"] = 25.0
	if err := store.Reload(context.Background(), session, snapshotFetcher(bigger, nil)); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	record, ok := session.Catalog.Record("Tower A", "Floor 1", "Beam")
	if !ok || record.BalanceElements != 25 {
		t.Errorf("Expected reloaded balance 25, got %+v", record)
	}
	if session.Plan.ActiveBlock().Tower != "Tower A" {
		t.Error("Expected plan untouched by reload")
	}
}

func TestSessionStore_PurgeIdle(t *testing.T) {
	store := NewSessionStore()
	stale, err := store.Open(context.Background(), 1, 1, snapshotFetcher(testSnapshot(), nil))
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := store.Open(context.Background(), 2, 1, snapshotFetcher(testSnapshot(), nil))
	if err != nil {
		t.Fatal(err)
	}
	stale.UpdatedAt = time.Now().Add(-3 * time.Hour)

	removed := store.PurgeIdle(2 * time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session purged, got %d", removed)
	}
	if _, err := store.Get(stale.ID); err == nil {
		t.Error("Expected stale session gone")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Error("Expected fresh session kept")
	}
}
