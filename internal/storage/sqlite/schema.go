package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const schemaGlob = "sql/schema/*.sql"

var (
	//go:embed sql/schema/*.sql
	schemaFS embed.FS

	schemaFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)
)

// schemaPart: пара скриптов создания/удаления части схемы.
// Версий и журнала применения нет: up-скрипты идемпотентны (IF NOT EXISTS),
// а down-скрипты используются только при полном сбросе базы.
type schemaPart struct {
	Order   int64
	Name    string
	UpSQL   string
	DownSQL string
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func createSchema(ctx context.Context, db execer, parts []schemaPart) error {
	for _, p := range parts {
		if err := execScript(ctx, db, p.UpSQL); err != nil {
			return fmt.Errorf("create schema %d_%s: %w", p.Order, p.Name, err)
		}
	}
	return nil
}

func dropSchema(ctx context.Context, db execer, parts []schemaPart) error {
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if err := execScript(ctx, db, p.DownSQL); err != nil {
			return fmt.Errorf("drop schema %d_%s: %w", p.Order, p.Name, err)
		}
	}
	return nil
}

// execScript выполняет скрипт по одному выражению: драйверу не нужно уметь multi-statement.
func execScript(ctx context.Context, db execer, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements режет скрипт по ';'. В схеме нет триггеров и строк с ';'.
func splitStatements(script string) []string {
	raw := strings.Split(script, ";")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadSchemaFromFS(fsys fs.FS) ([]schemaPart, error) {
	files, err := fs.Glob(fsys, schemaGlob)
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no schema files found")
	}

	parts := make(map[int64]*schemaPart)
	for _, file := range files {
		base := filepath.Base(file)
		matches := schemaFilePattern.FindStringSubmatch(base)
		if len(matches) != 4 {
			return nil, fmt.Errorf("invalid schema file name: %s", base)
		}

		order, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse schema order from %s: %w", base, err)
		}
		name := matches[2]

		bodyRaw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read schema file %s: %w", file, err)
		}
		body := strings.TrimSpace(string(bodyRaw))
		if body == "" {
			return nil, fmt.Errorf("schema file is empty: %s", base)
		}

		part, ok := parts[order]
		if !ok {
			part = &schemaPart{Order: order, Name: name}
			parts[order] = part
		} else if part.Name != name {
			return nil, fmt.Errorf("schema name mismatch for %d: %s vs %s", order, part.Name, name)
		}

		switch matches[3] {
		case "up":
			if part.UpSQL != "" {
				return nil, fmt.Errorf("duplicate up script for %d", order)
			}
			part.UpSQL = body
		case "down":
			if part.DownSQL != "" {
				return nil, fmt.Errorf("duplicate down script for %d", order)
			}
			part.DownSQL = body
		}
	}

	orders := make([]int64, 0, len(parts))
	for order := range parts {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i] < orders[j] })

	result := make([]schemaPart, 0, len(orders))
	for _, order := range orders {
		p := parts[order]
		if p.UpSQL == "" || p.DownSQL == "" {
			return nil, fmt.Errorf("schema %d_%s must have both up and down files", p.Order, p.Name)
		}
		result = append(result, *p)
	}
	return result, nil
}
