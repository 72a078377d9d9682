package config

// Where book resources and structure are kept between sessions.
// ENUM(off, auto, ram, sqlite, fs)
type StorageMode int

// Persistent reports whether storage mode survives program restart.
func (s StorageMode) Persistent() bool {
	return s == StorageModeAuto || s == StorageModeSqlite || s == StorageModeFs
}
