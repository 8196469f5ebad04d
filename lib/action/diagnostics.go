// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package action

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// directoryDiagnostics describes a working directory and the
// identity of this process, as slog attributes.
func directoryDiagnostics(directory string) []any {
	attrs := []any{
		"working_directory", directory,
		"uid", os.Getuid(),
		"gid", os.Getgid(),
		"euid", os.Geteuid(),
	}

	info, err := os.Stat(directory)
	if err != nil {
		return append(attrs, "directory_exists", false, "stat_error", err.Error())
	}
	attrs = append(attrs,
		"directory_exists", true,
		"mode", fmt.Sprintf("%04o", info.Mode().Perm()),
	)
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		attrs = append(attrs, "owner_uid", stat.Uid, "owner_gid", stat.Gid)
	}
	return append(attrs, "access", accessBits(directory))
}

// accessBits returns "rwx" with a dash for each access the process
// lacks, as reported by access(2).
func accessBits(path string) string {
	var bits strings.Builder
	for _, check := range []struct {
		mode   uint32
		letter byte
	}{
		{unix.R_OK, 'r'},
		{unix.W_OK, 'w'},
		{unix.X_OK, 'x'},
	} {
		if unix.Access(path, check.mode) == nil {
			bits.WriteByte(check.letter)
		} else {
			bits.WriteByte('-')
		}
	}
	return bits.String()
}

// checkDirectory returns an error wrapping fs.ErrNotExist or
// fs.ErrPermission when the command cannot run in directory.
func checkDirectory(directory string) error {
	info, err := os.Stat(directory)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: directory, Err: syscall.ENOTDIR}
	}
	if err := unix.Access(directory, unix.X_OK); err != nil {
		return &os.PathError{Op: "access", Path: directory, Err: err}
	}
	return nil
}
