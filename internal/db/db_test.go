package db

import "testing"

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	// foreign_keys is a per-connection pragma, so this must fail no matter
	// which pooled connection serves the statement.
	_, err := database.Exec(
		`INSERT INTO items (title, description, category, type, size, condition, owner_id, points)
		 VALUES ('Jacket', 'A jacket with no owner.', 'Outerwear', 'Jacket', 'M', 'Good', 999, 100)`,
	)
	if err == nil {
		t.Fatal("expected foreign key violation for missing owner")
	}
}

func TestBusyTimeoutConfigured(t *testing.T) {
	database := NewTestDB(t)

	var timeout int
	if err := database.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("reading busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("expected busy_timeout 5000, got %d", timeout)
	}
}
