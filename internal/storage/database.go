package storage

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/camuig/stock-quest/internal/logger"
)

// corruptSuffix is appended to a database file that could not be opened.
const corruptSuffix = ".corrupt"

func NewDatabase(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// WAL lets the dashboard read while a refresh is saving
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := db.AutoMigrate(&PortfolioRecord{}, &HoldingRecord{}, &AchievementRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}

// OpenRepository opens the database at path. An existing file that is not a
// usable database is moved to path+".corrupt" and an empty database takes its
// place. Load reports that case as snapshot.ErrCorrupt until the next Save.
func OpenRepository(path string, log *logger.Logger) (*Repository, error) {
	db, err := NewDatabase(path)
	if err == nil {
		return NewRepository(db, path), nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, err
	}

	aside := path + corruptSuffix
	log.Warn("portfolio database unreadable, moving it aside", "path", path, "moved_to", aside, "error", err)
	if rerr := os.Rename(path, aside); rerr != nil {
		return nil, fmt.Errorf("move aside %s: %w", path, errors.Join(err, rerr))
	}
	for _, side := range []string{"-wal", "-shm"} {
		_ = os.Remove(path + side)
	}

	db, reopenErr := NewDatabase(path)
	if reopenErr != nil {
		return nil, reopenErr
	}
	repo := NewRepository(db, path)
	repo.recovered = err
	return repo, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
