// Package zipstore serves a single immutable zip archive as a read-only
// virtual file tree and builds such archives with an atomic publish.
//
// Directories are never stored: a directory exists as soon as one entry name
// starts with its path. Every query opens the archive, scans the whole entry
// list and closes it again, so nothing is cached between calls and readers
// never coordinate with the writer.
package zipstore
