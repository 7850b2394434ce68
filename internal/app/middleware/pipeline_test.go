package middleware

import (
	"context"
	"errors"
	"strings"
	"testing"

	"campusnest/internal/app/commands"
	appoutbox "campusnest/internal/app/outbox"
	"campusnest/internal/app/policies"
	"campusnest/internal/app/uow"
	domaincatalog "campusnest/internal/domain/catalog"
	domainreservation "campusnest/internal/domain/reservation"
)

type testCommand struct {
	key    string
	idKey  string
	result string
}

func (c testCommand) Key() string { return c.key }

func (c testCommand) IdempotencyKey() string { return c.idKey }

func (c testCommand) ResultPrototype() any { return new(string) }

type stubUnit struct {
	committed  bool
	rolledBack bool
}

func (u *stubUnit) Reservations() domainreservation.Repository { return nil }

func (u *stubUnit) Catalog() domaincatalog.Repository { return nil }

func (u *stubUnit) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *stubUnit) Rollback(context.Context) error {
	u.rolledBack = true
	return nil
}

type stubFactory struct {
	unit *stubUnit
}

func (f stubFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

type memoryIdempotencyStore struct {
	items map[string]IdempotencyRecord
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *memoryIdempotencyStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.items[rec.Key] = rec
	return nil
}

type countingOutbox struct {
	flushes int
}

func (o *countingOutbox) Add(context.Context, appoutbox.EventRecord) error { return nil }

func (o *countingOutbox) Flush(context.Context) error {
	o.flushes++
	return nil
}

func registerEcho(bus *commands.InMemoryBus, key string, fail error) *int {
	calls := new(int)
	commands.RegisterHandler(bus, key, echoHandler{fail: fail, calls: calls})
	return calls
}

type echoHandler struct {
	fail  error
	calls *int
}

func (h echoHandler) Handle(_ context.Context, cmd testCommand) (*string, error) {
	*h.calls++
	if h.fail != nil {
		return nil, h.fail
	}
	out := cmd.result
	return &out, nil
}

func TestTransaction_CommitsOnSuccessAndRollsBackOnError(t *testing.T) {
	okBus := commands.NewInMemoryBus()
	registerEcho(okBus, "cmd.ok", nil)
	unit := &stubUnit{}
	wrapped := ChainCommands(okBus, Transaction(stubFactory{unit: unit}))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.ok", result: "done"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !unit.committed || unit.rolledBack {
		t.Errorf("Expected commit without rollback, got committed=%v rolledBack=%v", unit.committed, unit.rolledBack)
	}

	failBus := commands.NewInMemoryBus()
	wantErr := errors.New("handler failed")
	registerEcho(failBus, "cmd.fail", wantErr)
	failUnit := &stubUnit{}
	wrapped = ChainCommands(failBus, Transaction(stubFactory{unit: failUnit}))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.fail"}); !errors.Is(err, wantErr) {
		t.Fatalf("Expected handler error, got: %v", err)
	}
	if failUnit.committed || !failUnit.rolledBack {
		t.Errorf("Expected rollback without commit, got committed=%v rolledBack=%v", failUnit.committed, failUnit.rolledBack)
	}
}

func TestTransaction_PutsUnitInContext(t *testing.T) {
	bus := commands.NewInMemoryBus()
	seen := false
	commands.RegisterHandler(bus, "cmd.ctx", contextProbe{seen: &seen})
	unit := &stubUnit{}
	wrapped := ChainCommands(bus, Transaction(stubFactory{unit: unit}))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.ctx"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !seen {
		t.Error("Expected the handler to find the unit of work in context")
	}
}

type contextProbe struct {
	seen *bool
}

func (p contextProbe) Handle(ctx context.Context, _ testCommand) (*string, error) {
	_, ok := uow.FromContext(ctx)
	*p.seen = ok
	return nil, nil
}

func TestIdempotency_ReplaysStoredResult(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := registerEcho(bus, "cmd.idem", nil)
	store := &memoryIdempotencyStore{items: make(map[string]IdempotencyRecord)}
	wrapped := ChainCommands(bus, Idempotency(store, nil))

	cmd := testCommand{key: "cmd.idem", idKey: "key-1", result: "first"}
	res1, err := wrapped.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	cmd.result = "second"
	res2, err := wrapped.Dispatch(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if *calls != 1 {
		t.Errorf("Expected the handler to run once, got %d", *calls)
	}
	if *(res1.(*string)) != "first" || *(res2.(*string)) != "first" {
		t.Errorf("Expected both dispatches to yield the stored result, got %v and %v", res1, res2)
	}
}

func TestIdempotency_RetriesFailedAttempts(t *testing.T) {
	bus := commands.NewInMemoryBus()
	wantErr := errors.New("boom")
	calls := registerEcho(bus, "cmd.err", wantErr)
	store := &memoryIdempotencyStore{items: make(map[string]IdempotencyRecord)}
	wrapped := ChainCommands(bus, Idempotency(store, nil))

	cmd := testCommand{key: "cmd.err", idKey: "key-1"}
	if _, err := wrapped.Dispatch(context.Background(), cmd); !errors.Is(err, wantErr) {
		t.Fatalf("Expected the handler error, got %v", err)
	}
	if _, err := wrapped.Dispatch(context.Background(), cmd); !errors.Is(err, wantErr) {
		t.Fatalf("Expected a retry to surface the handler error unchanged, got %v", err)
	}
	if *calls != 2 {
		t.Errorf("Expected the handler to run again after a failure, got %d calls", *calls)
	}
	if len(store.items) != 0 {
		t.Errorf("Expected no record for a failed attempt, got %d", len(store.items))
	}
}

func TestIdempotency_SkipsWithoutKey(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := registerEcho(bus, "cmd.nokey", nil)
	store := &memoryIdempotencyStore{items: make(map[string]IdempotencyRecord)}
	wrapped := ChainCommands(bus, Idempotency(store, nil))

	cmd := testCommand{key: "cmd.nokey", result: "x"}
	for i := 0; i < 2; i++ {
		if _, err := wrapped.Dispatch(context.Background(), cmd); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if *calls != 2 {
		t.Errorf("Expected the handler to run twice without a key, got %d", *calls)
	}
}

type journalLocker struct {
	log *[]string
}

func (l journalLocker) LockUnit(string) (release func()) {
	*l.log = append(*l.log, "lock")
	return func() { *l.log = append(*l.log, "release") }
}

type journalUnit struct {
	log *[]string
}

func (u *journalUnit) Reservations() domainreservation.Repository { return nil }

func (u *journalUnit) Catalog() domaincatalog.Repository { return nil }

func (u *journalUnit) Commit(context.Context) error {
	*u.log = append(*u.log, "commit")
	return nil
}

func (u *journalUnit) Rollback(context.Context) error {
	*u.log = append(*u.log, "rollback")
	return nil
}

type journalFactory struct {
	unit uow.UnitOfWork
}

func (f journalFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

type lockingHandler struct {
	locks policies.UnitLocker
}

func (h lockingHandler) Handle(ctx context.Context, _ testCommand) (*string, error) {
	defer policies.HoldUnitLock(ctx, h.locks, "unit-1")()
	return nil, nil
}

func TestUnitLock_HoldsLockAcrossCommit(t *testing.T) {
	bus := commands.NewInMemoryBus()
	var log []string
	commands.RegisterHandler(bus, "cmd.lock", lockingHandler{locks: journalLocker{log: &log}})
	wrapped := ChainCommands(bus, UnitLock(), Transaction(journalFactory{unit: &journalUnit{log: &log}}))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.lock"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got, want := strings.Join(log, ","), "lock,commit,release"; got != want {
		t.Errorf("Expected the lock to outlive the commit, got order %s", got)
	}
}

func TestHoldUnitLock_ReleasesAtHandlerWithoutScope(t *testing.T) {
	bus := commands.NewInMemoryBus()
	var log []string
	commands.RegisterHandler(bus, "cmd.lock", lockingHandler{locks: journalLocker{log: &log}})
	wrapped := ChainCommands(bus, Transaction(journalFactory{unit: &journalUnit{log: &log}}))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.lock"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got, want := strings.Join(log, ","), "lock,release,commit"; got != want {
		t.Errorf("Expected the handler to own the release, got order %s", got)
	}
}

func TestOutboxFlush_RunsOnlyOnSuccess(t *testing.T) {
	bus := commands.NewInMemoryBus()
	registerEcho(bus, "cmd.ok", nil)
	box := &countingOutbox{}
	wrapped := ChainCommands(bus, OutboxFlush(box))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.ok"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if box.flushes != 1 {
		t.Errorf("Expected one flush, got %d", box.flushes)
	}

	failBus := commands.NewInMemoryBus()
	registerEcho(failBus, "cmd.fail", errors.New("boom"))
	failBox := &countingOutbox{}
	wrapped = ChainCommands(failBus, OutboxFlush(failBox))

	if _, err := wrapped.Dispatch(context.Background(), testCommand{key: "cmd.fail"}); err == nil {
		t.Fatal("Expected an error")
	}
	if failBox.flushes != 0 {
		t.Errorf("Expected no flush after failure, got %d", failBox.flushes)
	}
}
