// Package database provides the SQLite-backed score cache for benchdist.
//
// Every requested identifier is reduced to a normalized key (see NormalizeKey).
// Each key owns one row in the series table and any number of rows in the
// scores table, so one logical namespace exists per key inside a single
// database file.
//
// All statements are parameterized. Keys come from user input and are never
// spliced into SQL text, which also means a key may contain any character.
//
// We use modernc.org/sqlite so the binary stays CGO-free and the cache is a
// single file that can be deleted to force a fresh download.
package database
