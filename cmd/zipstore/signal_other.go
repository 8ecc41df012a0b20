//go:build !unix

package main

import "syscall"

const SIGTERM = syscall.SIGTERM
