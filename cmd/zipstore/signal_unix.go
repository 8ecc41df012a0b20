//go:build unix

package main

import "golang.org/x/sys/unix"

const SIGTERM = unix.SIGTERM
