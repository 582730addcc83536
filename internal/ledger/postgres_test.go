package ledger

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"testing"

	"salespoint/pkg/domain"
)

// stubPGConnector backs a *sql.DB with an in-memory single-bucket table so the
// postgres store can be exercised without a server.
type stubPGConnector struct {
	state map[string][]byte
	execs *[]string
}

func newStubPG() (*sql.DB, *[]string) {
	execs := &[]string{}
	return sql.OpenDB(stubPGConnector{state: make(map[string][]byte), execs: execs}), execs
}

func (c stubPGConnector) Connect(context.Context) (driver.Conn, error) {
	return stubPGConn{state: c.state, execs: c.execs}, nil
}

func (c stubPGConnector) Driver() driver.Driver { return nil }

type stubPGConn struct {
	state map[string][]byte
	execs *[]string
}

func (stubPGConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (stubPGConn) Close() error                        { return nil }
func (stubPGConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (c stubPGConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	*c.execs = append(*c.execs, query)
	if strings.Contains(query, "INSERT INTO state") {
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.state[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c stubPGConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(query, "SELECT payload FROM state") {
		return nil, driver.ErrSkip
	}
	bucket, _ := args[0].Value.(string)
	payload, ok := c.state[bucket]
	rows := &stubPGRows{}
	if ok {
		rows.rows = [][]driver.Value{{append([]byte(nil), payload...)}}
	}
	return rows, nil
}

type stubPGRows struct {
	rows [][]driver.Value
	pos  int
}

func (*stubPGRows) Columns() []string { return []string{"payload"} }
func (*stubPGRows) Close() error      { return nil }

func (r *stubPGRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func withStubPG(t *testing.T) *[]string {
	t.Helper()
	db, execs := newStubPG()
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != pgDriverName {
			t.Errorf("expected driver %q, got %q", pgDriverName, driverName)
		}
		return db, nil
	}
	openMu.Unlock()
	t.Cleanup(func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	})
	return execs
}

func TestPostgresSnapshotStoreEnsuresStateTable(t *testing.T) {
	execs := withStubPG(t)

	store, err := NewPostgresSnapshotStore(context.Background(), "postgres://stub/salespoint")
	if err != nil {
		t.Fatalf("NewPostgresSnapshotStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	var sawDDL bool
	for _, stmt := range *execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS state") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got %v", *execs)
	}
	if store.Driver() != "postgres" {
		t.Fatalf("unexpected driver %q", store.Driver())
	}
}

func TestPostgresSnapshotStoreRoundTrip(t *testing.T) {
	withStubPG(t)
	ctx := context.Background()

	store, err := NewPostgresSnapshotStore(ctx, "")
	if err != nil {
		t.Fatalf("NewPostgresSnapshotStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("fresh store must be empty, ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, []domain.Transaction{sampleTx("tx-1", 100)}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].ID != "tx-1" || got[0].TotalAmount != 100 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
