package database

import (
	"context"
	"testing"

	"crypto-alerts-bot/internal/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSubscribers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	found, err := db.FindSubscriber(ctx, 42)
	if err != nil {
		t.Fatalf("FindSubscriber: %v", err)
	}
	if found {
		t.Error("subscriber should not exist yet")
	}

	if err := db.InsertSubscriber(ctx, 42); err != nil {
		t.Fatalf("InsertSubscriber: %v", err)
	}
	// registering twice is a no-op
	if err := db.InsertSubscriber(ctx, 42); err != nil {
		t.Fatalf("InsertSubscriber twice: %v", err)
	}
	if err := db.InsertSubscriber(ctx, 43); err != nil {
		t.Fatalf("InsertSubscriber: %v", err)
	}

	found, err = db.FindSubscriber(ctx, 42)
	if err != nil {
		t.Fatalf("FindSubscriber: %v", err)
	}
	if !found {
		t.Error("subscriber 42 not found after insert")
	}

	chats, err := db.AllSubscriberChats(ctx)
	if err != nil {
		t.Fatalf("AllSubscriberChats: %v", err)
	}
	if len(chats) != 2 {
		t.Errorf("got %d subscribers, want 2", len(chats))
	}
}

func TestAlertLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	alert := &types.Alert{
		ChatID:    7,
		Symbol:    "BTCUSDT",
		Target:    100000,
		Direction: types.Above,
	}
	if err := db.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("InsertAlert: %v", err)
	}
	if alert.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if alert.CreatedAt.IsZero() {
		t.Fatal("expected creation timestamp")
	}

	active, err := db.ActiveAlerts(ctx)
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("got %d active alerts, want 1", len(active))
	}
	got := active[0]
	if got.ChatID != 7 || got.Symbol != "BTCUSDT" || got.Target != 100000 ||
		got.Direction != types.Above || got.Repeat || got.Triggered {
		t.Errorf("round-tripped alert mismatch: %+v", got)
	}

	if err := db.MarkTriggered(ctx, alert.ID); err != nil {
		t.Fatalf("MarkTriggered: %v", err)
	}

	active, err = db.ActiveAlerts(ctx)
	if err != nil {
		t.Fatalf("ActiveAlerts: %v", err)
	}
	if len(active) != 0 {
		t.Error("triggered alert still listed as active")
	}

	// the row survives triggering until it is explicitly deleted
	deleted, err := db.DeleteAlert(ctx, alert.ID)
	if err != nil {
		t.Fatalf("DeleteAlert: %v", err)
	}
	if !deleted {
		t.Error("triggered alert row should still exist")
	}

	deleted, err = db.DeleteAlert(ctx, alert.ID)
	if err != nil {
		t.Fatalf("DeleteAlert: %v", err)
	}
	if deleted {
		t.Error("second delete should report a missing row")
	}
}

func TestDeleteActiveAlertsBySymbol(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insert := func(chatID int64, symbol types.Symbol, triggered bool) int64 {
		a := &types.Alert{ChatID: chatID, Symbol: symbol, Target: 10, Direction: types.Above, Triggered: triggered}
		if err := db.InsertAlert(ctx, a); err != nil {
			t.Fatalf("InsertAlert: %v", err)
		}
		return a.ID
	}

	insert(1, "BTCUSDT", false)
	insert(1, "BTCUSDT", false)
	triggeredID := insert(1, "BTCUSDT", true)
	insert(1, "ETHUSDT", false)
	insert(2, "BTCUSDT", false)

	count, err := db.DeleteActiveAlertsBySymbol(ctx, 1, "BTCUSDT")
	if err != nil {
		t.Fatalf("DeleteActiveAlertsBySymbol: %v", err)
	}
	if count != 2 {
		t.Errorf("deleted %d alerts, want 2", count)
	}

	// the triggered row and other owners/symbols are untouched
	if deleted, _ := db.DeleteAlert(ctx, triggeredID); !deleted {
		t.Error("triggered alert was removed by symbol cancellation")
	}
	if alerts, _ := db.ActiveAlertsByChat(ctx, 2); len(alerts) != 1 {
		t.Errorf("other owner's alerts affected: %+v", alerts)
	}

	count, err = db.DeleteActiveAlertsBySymbol(ctx, 1, "SOLUSDT")
	if err != nil {
		t.Fatalf("DeleteActiveAlertsBySymbol with no matches: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
