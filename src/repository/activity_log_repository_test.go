package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

// newSQLiteDB opens a private in-memory database with the relay schema.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ActivityLog{}, &model.Configuration{}, &model.TradingPair{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func activityLogStores(t *testing.T) map[string]ActivityLogStore {
	return map[string]ActivityLogStore{
		"memory": NewMemoryActivityLogRepository(),
		"gorm":   NewGormActivityLogRepository(newSQLiteDB(t)),
	}
}

func TestActivityLogStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, store := range activityLogStores(t) {
		e1, err := store.Append(ctx, &model.ActivityLog{Type: model.LogTypeWebhook, Message: "E1"})
		require.NoError(t, err, name)
		e2, err := store.Append(ctx, &model.ActivityLog{Type: model.LogTypeSystem, Message: "E2"})
		require.NoError(t, err, name)

		if e2.ID <= e1.ID {
			t.Fatalf("%s: expected increasing ids, got %d then %d", name, e1.ID, e2.ID)
		}
		assert.False(t, e1.Timestamp.IsZero(), name)

		got, err := store.Query(ctx, 10, "")
		require.NoError(t, err, name)
		require.Len(t, got, 2, name)
		assert.Equal(t, "E2", got[0].Message, name)
		assert.Equal(t, "E1", got[1].Message, name)
	}
}

func TestActivityLogStore_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	for name, store := range activityLogStores(t) {
		for i := 0; i < 5; i++ {
			typ := model.LogTypeSystem
			if i%2 == 0 {
				typ = model.LogTypeError
			}
			_, err := store.Append(ctx, &model.ActivityLog{Type: typ, Message: fmt.Sprintf("m%d", i)})
			require.NoError(t, err, name)
		}

		errorsOnly, err := store.Query(ctx, 10, model.LogTypeError)
		require.NoError(t, err, name)
		require.Len(t, errorsOnly, 3, name)
		assert.Equal(t, "m4", errorsOnly[0].Message, name)
		assert.Equal(t, "m0", errorsOnly[2].Message, name)

		limited, err := store.Query(ctx, 2, "")
		require.NoError(t, err, name)
		require.Len(t, limited, 2, name)
		assert.Equal(t, "m4", limited[0].Message, name)
		assert.Equal(t, "m3", limited[1].Message, name)

		defaulted, err := store.Query(ctx, 0, "")
		require.NoError(t, err, name)
		assert.Len(t, defaulted, 5, name)
	}
}

func TestActivityLogStore_Clear(t *testing.T) {
	ctx := context.Background()
	for name, store := range activityLogStores(t) {
		for i := 0; i < 3; i++ {
			_, err := store.Append(ctx, &model.ActivityLog{Type: model.LogTypeWebhook, Message: "x"})
			require.NoError(t, err, name)
		}

		require.NoError(t, store.Clear(ctx), name)

		got, err := store.Query(ctx, 100, "")
		require.NoError(t, err, name)
		assert.Empty(t, got, name)
	}
}

func TestActivityLogStore_KeepsExplicitTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryActivityLogRepository()

	stored, err := store.Append(context.Background(), &model.ActivityLog{Type: model.LogTypeSystem, Message: "m", Timestamp: at})
	require.NoError(t, err)
	assert.Equal(t, at, stored.Timestamp)
}

func TestMemoryActivityLogRepository_ConcurrentAppends(t *testing.T) {
	store := NewMemoryActivityLogRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Append(ctx, &model.ActivityLog{Type: model.LogTypeWebhook, Message: "x"})
		}()
	}
	wg.Wait()

	got, err := store.Query(ctx, 100, "")
	require.NoError(t, err)
	require.Len(t, got, 50)
	for i := 1; i < len(got); i++ {
		if got[i-1].ID <= got[i].ID {
			t.Fatalf("entries not strictly newest-first at %d: %d then %d", i, got[i-1].ID, got[i].ID)
		}
	}
}

func TestGormActivityLogRepository_QueryShape(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormActivityLogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "type", "message"}).
		AddRow(9, "error", "second").
		AddRow(4, "error", "first")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "activity_logs" WHERE type = $1 ORDER BY id DESC LIMIT $2`)).
		WithArgs("error", 5).
		WillReturnRows(rows)

	got, err := repo.Query(context.Background(), 5, model.LogTypeError)
	if err != nil {
		t.Fatalf("unexpected error querying logs: %v", err)
	}
	if len(got) != 2 || got[0].ID != 9 {
		t.Fatalf("unexpected result: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestGormActivityLogRepository_ClearDeletesAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormActivityLogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "activity_logs"`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	if err := repo.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error clearing logs: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestGormActivityLogRepository_AppendFailureIsPersistenceError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormActivityLogRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "activity_logs"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Append(context.Background(), &model.ActivityLog{Type: model.LogTypeWebhook, Message: "x"})

	var pErr *errs.PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
