package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultDirs are checked, in order, after any explicit directory.
var DefaultDirs = []string{"./db/migrations", "/app/db/migrations"}

// Runner applies the SQL files of one directory to one database.
type Runner struct {
	m         *migrate.Migrate
	sourceURL string
}

func Open(dir, dbURL string) (*Runner, error) {
	if strings.TrimSpace(dbURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	sourceURL := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Runner{m: m, sourceURL: sourceURL}, nil
}

func (r *Runner) SourceURL() string {
	return r.sourceURL
}

// Up applies every pending migration. changed is false when nothing was pending.
func (r *Runner) Up() (changed bool, err error) {
	return settle(r.m.Up())
}

func (r *Runner) Down(steps int) (bool, error) {
	if steps <= 0 {
		return false, fmt.Errorf("down steps must be > 0")
	}
	return settle(r.m.Steps(-steps))
}

func (r *Runner) Goto(target uint) (bool, error) {
	return settle(r.m.Migrate(target))
}

func (r *Runner) Force(version int) error {
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Version returns ok=false when no migration was ever applied.
func (r *Runner) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("read version: %w", err)
	}
	return version, dirty, true, nil
}

func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration db: %w", dbErr)
	}
	return nil
}

func settle(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	return false, err
}

// ResolveDir returns the first candidate that is an existing directory.
func ResolveDir(candidates ...string) (string, error) {
	checked := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		checked = append(checked, candidate)
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked %s)", strings.Join(checked, ", "))
}

func ParseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func ParseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func ParseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}
