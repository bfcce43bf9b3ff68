package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/tasktracker-api/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the SQLite database at dsn and migrates the schema.
// SQLite allows one writer at a time, so the pool is limited to a single
// connection; this also keeps in-memory databases alive for the life of
// the pool.
func Open(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&userModel{}, &taskModel{}, &commentModel{}, &tokenModel{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite migration failed: %w", err)
	}

	logger.Info("sqlite database ready", slog.String("component", "sqlite"))
	return db, nil
}

// OpenMemory opens a private in-memory database named name.
func OpenMemory(name string, logger *slog.Logger) (*gorm.DB, error) {
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logger)
}

// withForeignKeys turns on foreign key enforcement, which SQLite leaves off
// by default and which the comment cascade depends on.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// withTx binds a gorm handle to an externally managed transaction, the same
// way gorm's own Begin does. Setting Context makes Session clone the
// statement; without it the ConnPool below would be written into db's own
// statement and every later query on db would run on tx.
func withTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	scoped := db.Session(&gorm.Session{
		NewDB:                  true,
		SkipDefaultTransaction: true,
		Context:                context.Background(),
	})
	scoped.Statement.ConnPool = tx
	return scoped
}

// mapError translates gorm errors into the store error taxonomy.
func mapError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidEntity, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: check constraint violation: %v", store.ErrInvalidEntity, err)
	default:
		return err
	}
}
