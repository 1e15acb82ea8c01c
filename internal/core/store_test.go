package core_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"hotelcore/internal/core"
	"hotelcore/pkg/domain"
	"hotelcore/testutil/fixture"
)

func TestOpenServiceLoadsDocument(t *testing.T) {
	svc, sink := openFixture(t)
	if sink.loads != 1 {
		t.Fatalf("expected one load, got %d", sink.loads)
	}
	if !reflect.DeepEqual(svc.Store().ExportState(), fixture.Document()) {
		t.Fatalf("loaded state differs from document")
	}
}

func TestOpenServiceEmptySink(t *testing.T) {
	svc, err := core.OpenService(context.Background(), newFakeSink(domain.NewDocument()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := svc.Summary(); got != (core.Summary{}) {
		t.Fatalf("expected empty hotel, got %+v", got)
	}
}

func TestOpenServiceRejectsBrokenDocuments(t *testing.T) {
	loadFail := newFakeSink(domain.NewDocument())
	loadFail.loadErr = errors.New("disk gone")

	orphan := fixture.Document()
	delete(orphan.Active, fixture.BobKey)

	badKey := fixture.Document()
	badKey.Users["1990-01-01"] = domain.User{Name: "X", Age: "1"}

	for name, sink := range map[string]*fakeSink{
		"load error":        loadFail,
		"orphan occupancy":  newFakeSink(orphan),
		"malformed user id": newFakeSink(badKey),
	} {
		_, err := core.OpenService(context.Background(), sink)
		if !domain.IsStoreError(err) {
			t.Fatalf("%s: expected store error, got %v", name, err)
		}
	}

	var re domain.RuleViolationError
	_, err := core.OpenService(context.Background(), newFakeSink(orphan))
	if !errors.As(err, &re) || re.Result.Violations[0].Rule != "room_occupancy" {
		t.Fatalf("expected room occupancy violation, got %v", err)
	}
}

func TestMutationsSaveThenReload(t *testing.T) {
	svc, sink := openFixture(t)
	ctx := context.Background()

	ok, err := svc.CheckIn(ctx, fixture.BobKey)
	mustTrue(t, "check in", ok, err)
	if sink.saves != 1 || sink.loads != 2 {
		t.Fatalf("expected save followed by reload, got saves=%d loads=%d", sink.saves, sink.loads)
	}
	if !sink.snapshot().Active[fixture.BobKey].CheckedIn {
		t.Fatalf("check in not persisted")
	}
	if !reflect.DeepEqual(sink.snapshot(), svc.Store().ExportState()) {
		t.Fatalf("memory and sink disagree after commit")
	}
}

func TestReloadObservesExternalChanges(t *testing.T) {
	svc, sink := openFixture(t)
	sink.mu.Lock()
	sink.doc.Users["201012121234"] = domain.User{Name: "Eve", Age: "22"}
	sink.mu.Unlock()

	if svc.IsRegistered("201012121234") {
		t.Fatalf("external change visible before reload")
	}
	if err := svc.Store().Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !svc.IsRegistered("201012121234") {
		t.Fatalf("external change not picked up")
	}
}

func TestSaveFailureLeavesMemoryUntouched(t *testing.T) {
	svc, sink := openFixture(t)
	ctx := context.Background()
	sink.saveErr = errors.New("read-only filesystem")
	before := svc.Store().ExportState()

	ok, err := svc.CheckIn(ctx, fixture.BobKey)
	if ok || !domain.IsStoreError(err) {
		t.Fatalf("expected store error, got ok=%v err=%v", ok, err)
	}
	if err := svc.Register(ctx, guestKey, "Dana", "30"); !domain.IsStoreError(err) {
		t.Fatalf("register: expected store error, got %v", err)
	}
	if _, err := svc.AddRoom(ctx, core.RoomInput{Price: "1", Capacity: "1"}); !domain.IsStoreError(err) {
		t.Fatalf("add room: expected store error, got %v", err)
	}
	if !reflect.DeepEqual(before, svc.Store().ExportState()) {
		t.Fatalf("failed save changed memory")
	}
	if !reflect.DeepEqual(before, sink.snapshot()) {
		t.Fatalf("failed save changed the sink")
	}

	sink.saveErr = nil
	ok, err = svc.CheckIn(ctx, fixture.BobKey)
	mustTrue(t, "check in after recovery", ok, err)
}

func TestReloadFailureAfterSaveIsStoreError(t *testing.T) {
	svc, sink := openFixture(t)
	before := svc.Store().ExportState()
	sink.loadErr = errors.New("connection reset")

	ok, err := svc.CheckIn(context.Background(), fixture.BobKey)
	if ok || !domain.IsStoreError(err) {
		t.Fatalf("expected store error, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(before, svc.Store().ExportState()) {
		t.Fatalf("memory must keep the last loaded state")
	}
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	store := core.NewMemoryStore(core.NewDefaultRulesEngine())
	store.ImportState(fixture.Document())
	boom := errors.New("boom")

	_, err := store.RunInTransaction(context.Background(), func(tx *core.Transaction) error {
		if err := tx.DeleteUser(fixture.BobKey); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := store.GetUser(fixture.BobKey); !ok {
		t.Fatalf("rolled back delete is visible")
	}
}

func TestRunInTransactionBlocksRuleViolations(t *testing.T) {
	store := core.NewMemoryStore(core.NewDefaultRulesEngine())
	store.ImportState(fixture.Document())

	res, err := store.RunInTransaction(context.Background(), func(tx *core.Transaction) error {
		return tx.DeleteUser(fixture.BobKey)
	})
	var re domain.RuleViolationError
	if !errors.As(err, &re) || !res.HasBlocking() {
		t.Fatalf("expected blocking violation, got %v", err)
	}
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("rule violations should read as precondition failures")
	}
	if re.Result.Violations[0].Rule != "booking_integrity" {
		t.Fatalf("unexpected violations: %+v", re.Result.Violations)
	}
	if _, ok := store.GetUser(fixture.BobKey); !ok {
		t.Fatalf("blocked delete is visible")
	}
}

func TestTransactionRecordsChanges(t *testing.T) {
	store := core.NewMemoryStore(core.NewDefaultRulesEngine())
	store.ImportState(fixture.Document())

	var changes []core.Change
	_, err := store.RunInTransaction(context.Background(), func(tx *core.Transaction) error {
		if _, err := tx.UpdateRoom(2, func(r *core.Room) error {
			r.Description = "Skylight"
			return nil
		}); err != nil {
			return err
		}
		tx.PutHistory(fixture.CarolKey, core.HistoryRecord{Name: "Carol", Age: "55", TotalRegistrations: 3})
		changes = tx.Changes()
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected two changes, got %+v", changes)
	}
	if changes[0].Entity != core.EntityRoom || changes[0].Action != core.ActionUpdate || changes[0].Key != "3" {
		t.Fatalf("unexpected room change: %+v", changes[0])
	}
	if changes[1].Entity != core.EntityHistory || changes[1].Action != core.ActionUpdate {
		t.Fatalf("unexpected history change: %+v", changes[1])
	}
}

func TestTransactionBoundsChecks(t *testing.T) {
	store := core.NewMemoryStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx *core.Transaction) error {
		if _, ok := tx.Room(0); ok {
			t.Fatalf("empty inventory has no room 1")
		}
		if _, err := tx.UpdateRoom(0, func(*core.Room) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("update: expected not found, got %v", err)
		}
		if err := tx.DeleteRoom(-1); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("delete: expected not found, got %v", err)
		}
		if err := tx.CreateUser(guestKey, core.User{Name: "A", Age: "1"}); err != nil {
			return err
		}
		if err := tx.CreateUser(guestKey, core.User{Name: "A", Age: "1"}); !errors.Is(err, domain.ErrPrecondition) {
			t.Fatalf("duplicate user: expected precondition, got %v", err)
		}
		if err := tx.DeleteBooking(guestKey); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("delete booking: expected not found, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestViewIsSnapshot(t *testing.T) {
	store := core.NewMemoryStore(nil)
	store.ImportState(fixture.Document())
	err := store.View(context.Background(), func(v core.TransactionView) error {
		rooms := v.ListRooms()
		rooms[0].Name = "changed"
		if r, ok := v.FindRoom(1); !ok || r.Name != "Sea view" {
			t.Fatalf("view leaked mutation: %+v", r)
		}
		if _, ok := v.FindRoom(4); ok {
			t.Fatalf("room 4 should not exist")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
