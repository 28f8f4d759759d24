// Package migrations embeds the SQL schema for each supported SQL driver.
// Files are named NNNNNN_name.{up,down}.sql and applied in lexical order.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up returns the up scripts for driver in apply order.
func Up(driver string) ([]string, error) {
	return load(driver, ".up.sql", false)
}

// Down returns the down scripts for driver in rollback order.
func Down(driver string) ([]string, error) {
	return load(driver, ".down.sql", true)
}

func load(driver, suffix string, reverse bool) ([]string, error) {
	entries, err := fs.ReadDir(files, driver)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", driver, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	if reverse {
		slices.Reverse(names)
	}

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(driver + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}
