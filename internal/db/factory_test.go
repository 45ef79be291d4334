package db

import "testing"

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"user:pw@tcp(localhost:3306)/forge", "user:pw@tcp(localhost:3306)/forge?parseTime=true"},
		{"user:pw@tcp(localhost:3306)/forge?charset=utf8mb4", "user:pw@tcp(localhost:3306)/forge?charset=utf8mb4&parseTime=true"},
		{"user:pw@tcp(localhost:3306)/forge?parseTime=false", "user:pw@tcp(localhost:3306)/forge?parseTime=false"},
	}
	for _, tt := range tests {
		if got := mysqlDSN(tt.in); got != tt.want {
			t.Errorf("mysqlDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New("oracle", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNewSQLiteMigrates(t *testing.T) {
	conn, err := New("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn, "sqlite3"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	var n int
	if err := conn.Get(&n, `SELECT COUNT(*) FROM generations`); err != nil {
		t.Fatalf("query generations: %v", err)
	}
	if n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestMigrateRejectsUnknownDialect(t *testing.T) {
	conn, err := New("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer conn.Close()

	if err := Migrate(conn, "oracle"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
	if err := Migrate(conn, "sqlite3"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Applying again is a no-op.
	if err := Migrate(conn, "sqlite3"); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}
