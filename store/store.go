// Package store holds the sdk.Store backends a local host can run on.
package store

import (
	"fmt"

	"okinoko_grants/sdk"
)

const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Open picks a backend by driver name. For memory the path is an optional
// snapshot file, for badger a directory, for sqlite a database file.
func Open(driver, path string) (sdk.Store, error) {
	switch driver {
	case DriverMemory, "":
		m := NewMemory(path)
		if err := m.LoadFromFile(); err != nil {
			return nil, err
		}
		return m, nil
	case DriverBadger:
		b, err := OpenBadger(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case DriverSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
