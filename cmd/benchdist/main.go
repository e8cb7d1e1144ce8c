// Package main provides the entry point for the benchdist CLI.
//
// benchdist downloads the published benchmark results of one or more
// hardware identifiers, caches them locally and reports how the single-core
// and multi-core scores are distributed.
//
// Usage:
//
//	benchdist compare "Intel i7 3770" "AMD Ryzen 5 3600"
//	benchdist cache list
//
// See --help for all available options.
package main

// main is the entry point for benchdist.
func main() {
	Execute()
}
