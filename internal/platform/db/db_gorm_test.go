package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"basic_authn/internal/feature/auth/domain/entity"

	"gorm.io/gorm"
)

// TestBuildDSN_Postgres はpostgres用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN_Postgres(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Driver:   DriverPostgres,
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5432",
		SSLMode:  "require",
	}

	dsn := BuildDSN(cfg)

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_PostgresDefaultSSLMode はsslmode未指定時にdisableになることを検証します。
func TestBuildDSN_PostgresDefaultSSLMode(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Config{Driver: DriverPostgres, Host: "db", Port: "5432", User: "u", Password: "p", Name: "n"})

	expected := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}

// TestBuildDSN_SQLite はsqliteの場合にファイルパスがそのまま使われることを検証します。
func TestBuildDSN_SQLite(t *testing.T) {
	t.Parallel()

	dsn := BuildDSN(Config{Driver: DriverSQLite, Path: "basic_authn.db", Host: "ignored"})

	if dsn != "basic_authn.db" {
		t.Errorf("expected sqlite path, got %q", dsn)
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 1 {
		t.Errorf("expected 1 attempt, got %d", attemptCount)
	}
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// retryInterval を書き換えるため並列実行しない
	orig := retryInterval
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = orig })

	mockDB := &gorm.DB{}
	attemptCount := 0

	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, opener)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != mockDB {
		t.Error("expected mock DB to be returned")
	}
	if attemptCount != 3 {
		t.Errorf("expected 3 attempts, got %d", attemptCount)
	}
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attemptCount := 0
	connErr := errors.New("connection refused")
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, connErr
	}

	// retryInterval より短いタイムアウトでは待たずに失敗する
	start := time.Now()
	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	if !errors.Is(err, connErr) {
		t.Fatalf("expected wrapped connection error, got %v", err)
	}
	if attemptCount != 1 {
		t.Errorf("expected exactly one connection attempt, got %d", attemptCount)
	}
	if time.Since(start) > time.Second {
		t.Error("expected no retry sleep")
	}
}

// TestNewOpener_UnsupportedDriver は未対応ドライバでエラーになることを検証します。
func TestNewOpener_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := NewOpener("mysql")

	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("expected ErrUnsupportedDriver, got %v", err)
	}
}

// TestOpen_SQLiteWithMigrations はsqliteで接続しusersテーブルが作成されることを検証します。
func TestOpen_SQLiteWithMigrations(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Driver:         DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "test.db"),
		ConnectTimeout: time.Second,
		RunMigrations:  true,
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if !db.Migrator().HasTable(&entity.User{}) {
		t.Error("expected users table to exist")
	}
	if !db.Migrator().HasIndex(&entity.User{}, "Email") {
		t.Error("expected unique index on email")
	}
}

// TestOpen_TranslatesDuplicateKey はTranslateErrorが有効であることを検証します。
func TestOpen_TranslatesDuplicateKey(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{
		Driver:         DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "dup.db"),
		ConnectTimeout: time.Second,
		RunMigrations:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Create(&entity.User{Email: "a@example.com", PasswordHash: "h"}).Error; err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err = db.Create(&entity.User{Email: "a@example.com", PasswordHash: "h"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}
