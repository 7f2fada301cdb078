package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cormacgwin/goodwin-challenge/internal/logger"
	embeddedmigrations "github.com/cormacgwin/goodwin-challenge/migrations"
	"gorm.io/gorm"
)

var (
	migrationFileName = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)
	addColumnClause   = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+"?(\w+)"?\s+ADD\s+COLUMN\s+"?(\w+)"?`)
)

// schemaMigration is one row of the applied-migration ledger.
type schemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null"`
	Checksum  string `gorm:"not null"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migrationFile struct {
	version  int
	name     string
	body     string
	checksum string
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	return migrateSchema(database, embeddedmigrations.Files)
}

// migrateSchema applies every pending NNN_name.sql file in version order.
// Applied files must not change afterwards; a checksum mismatch stops startup.
func migrateSchema(database *gorm.DB, files fs.FS) error {
	if err := database.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	pending, err := readMigrationFiles(files)
	if err != nil {
		return err
	}

	var ledger []schemaMigration
	if err := database.Order("version").Find(&ledger).Error; err != nil {
		return fmt.Errorf("load migration ledger: %w", err)
	}
	applied := make(map[int]schemaMigration, len(ledger))
	for _, row := range ledger {
		applied[row.Version] = row
	}

	count := 0
	for _, file := range pending {
		if row, ok := applied[file.version]; ok {
			if row.Checksum != file.checksum {
				return fmt.Errorf("migration %s changed after it was applied", file.name)
			}
			continue
		}
		if err := runMigration(database, file); err != nil {
			return err
		}
		count++
	}
	if count > 0 {
		logger.Info("schema migrated", "applied", count, "total", len(pending))
	}
	return nil
}

func readMigrationFiles(files fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	out := make([]migrationFile, 0, len(entries))
	byVersion := make(map[int]string, len(entries))
	for _, entry := range entries {
		match := migrationFileName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("migration version of %s: %w", entry.Name(), err)
		}
		if other, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, entry.Name(), version)
		}
		byVersion[version] = entry.Name()

		body, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(body)
		out = append(out, migrationFile{
			version:  version,
			name:     entry.Name(),
			body:     string(body),
			checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func runMigration(database *gorm.DB, file migrationFile) error {
	statements := sqlStatements(file.body)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s is empty", file.name)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			present, err := columnAlreadyAdded(tx, statement)
			if err != nil {
				return fmt.Errorf("migration %s: %w", file.name, err)
			}
			if present {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("migration %s: %q: %w", file.name, statement, err)
			}
		}
		return tx.Create(&schemaMigration{
			Version:   file.version,
			Name:      file.name,
			Checksum:  file.checksum,
			AppliedAt: time.Now().UTC(),
		}).Error
	})
}

// sqlStatements splits on ';'. Migrations must not put semicolons inside
// string literals or trigger bodies.
func sqlStatements(body string) []string {
	var statements []string
	for _, part := range strings.Split(body, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyAdded lets ADD COLUMN statements re-run against databases
// created before the ledger existed.
func columnAlreadyAdded(database *gorm.DB, statement string) (bool, error) {
	match := addColumnClause.FindStringSubmatch(statement)
	if match == nil {
		return false, nil
	}
	table, column := match[1], match[2]
	if !database.Migrator().HasTable(table) {
		return false, nil
	}
	return database.Migrator().HasColumn(table, column), nil
}
