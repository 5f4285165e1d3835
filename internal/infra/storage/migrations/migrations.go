package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/m04kA/SMC-TechService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TechService/pkg/psqlbuilder"
)

//go:embed sql/*.sql
var files embed.FS

const versionsTable = "schema_migrations"

var (
	// ErrReadMigrations возвращается, если не удалось прочитать встроенные файлы
	ErrReadMigrations = errors.New("migrations: failed to read embedded files")

	// ErrApply возвращается при ошибке применения миграции
	ErrApply = errors.New("migrations: failed to apply migration")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	dbmetrics.DBExecutor
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

type Logger interface {
	Info(format string, v ...interface{})
}

// Migration одна миграция схемы
type Migration struct {
	Version string
	SQL     string
}

// Load возвращает встроенные миграции в порядке версий
func Load() ([]Migration, error) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMigrations, err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		body, err := files.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadMigrations, entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(entry.Name(), ".sql"),
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// Apply применяет ещё не применённые миграции, каждую в своей транзакции.
// Возвращает количество применённых миграций.
func Apply(ctx context.Context, db TxBeginner, log Logger) (int, error) {
	migrations, err := Load()
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+versionsTable+` (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return 0, fmt.Errorf("%w: create versions table: %v", ErrApply, err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyOne(ctx, db, m); err != nil {
			return count, err
		}
		log.Info("Migration %s applied", m.Version)
		count++
	}

	return count, nil
}

func appliedVersions(ctx context.Context, db dbmetrics.DBExecutor) (map[string]bool, error) {
	query, args, err := psqlbuilder.Select("version").From(versionsTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %v", ErrApply, err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select versions: %v", ErrApply, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("%w: scan version: %v", ErrApply, err)
		}
		applied[version] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrApply, err)
	}

	return applied, nil
}

func applyOne(ctx context.Context, db TxBeginner, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: begin: %v", ErrApply, m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s: %v", ErrApply, m.Version, err)
	}

	query, args, err := psqlbuilder.Insert(versionsTable).Columns("version").Values(m.Version).ToSql()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s: build insert: %v", ErrApply, m.Version, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s: record version: %v", ErrApply, m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %s: commit: %v", ErrApply, m.Version, err)
	}

	return nil
}
