// Package vfs defines the read-only virtual file contract shared by artifact
// storage backends, the Ant-style glob used to filter listings and a backend
// serving a plain directory tree.
//
// Two backends implement [VirtualFile]: the filesystem backend returned by
// [ForFile] and [ForFS], and the zip archive backend in package zipstore.
// Callers navigate from a root with Child, List and Parent and read content
// with Open; metadata queries never fail, they report false or zero values
// when the target cannot be found.
package vfs
