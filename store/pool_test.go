package store

import "testing"

func TestConfig_DSN(t *testing.T) {
	cfg := Config{
		Address:  "db.internal",
		Port:     5432,
		Username: "novachat",
		Password: "secret",
		DBName:   "novachat",
	}
	want := "host=db.internal port=5432 user=novachat password=secret dbname=novachat client_encoding=UTF8 sslmode=disable"
	if got := cfg.dsn(); got != want {
		t.Errorf("dsn() = %q, want %q", got, want)
	}
}
