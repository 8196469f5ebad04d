// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/aburaihan-dev/github-actions-lighthouse/lib/clock"
)

// Compression selects how rotated log files are stored.
type Compression string

const (
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
	CompressionNone Compression = "none"
)

func (compression Compression) extension() string {
	switch compression {
	case CompressionZstd:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

const dayLayout = "2006-01-02"

// RotateConfig holds the parameters for OpenRotating.
type RotateConfig struct {
	// Path is the live log file. Parent directories are created.
	Path string

	// Keep is how many rotated files survive pruning. Zero keeps all.
	Keep int

	// Compression defaults to zstd.
	Compression Compression

	// Location decides where midnight falls. Defaults to UTC.
	Location *time.Location

	// Clock defaults to clock.Real().
	Clock clock.Clock
}

// RotatingFile is an append-only log file that rolls over at the first
// write after midnight. The finished day is renamed to
// <path>.<YYYY-MM-DD>, compressed, and the oldest rotated files beyond
// Keep are removed.
//
// RotatingFile is safe for concurrent use.
type RotatingFile struct {
	path        string
	keep        int
	compression Compression
	location    *time.Location
	clock       clock.Clock

	mu   sync.Mutex
	file *os.File
	day  string
}

// OpenRotating opens (creating if needed) config.Path for appending. A
// non-empty existing file is attributed to the day of its modification
// time, so a file left over from an earlier day is rotated on the
// first write.
func OpenRotating(config RotateConfig) (*RotatingFile, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("logging: rotating file path is required")
	}
	compression := config.Compression
	if compression == "" {
		compression = CompressionZstd
	}
	switch compression {
	case CompressionZstd, CompressionLZ4, CompressionNone:
	default:
		return nil, fmt.Errorf("logging: unknown compression %q", compression)
	}
	location := config.Location
	if location == nil {
		location = time.UTC
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("logging: creating %s: %w", filepath.Dir(config.Path), err)
	}
	file, err := openAppend(config.Path)
	if err != nil {
		return nil, err
	}

	day := clk.Now().In(location).Format(dayLayout)
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		day = info.ModTime().In(location).Format(dayLayout)
	}

	return &RotatingFile{
		path:        config.Path,
		keep:        config.Keep,
		compression: compression,
		location:    location,
		clock:       clk,
		file:        file,
		day:         day,
	}, nil
}

func openAppend(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("logging: opening %s: %w", path, err)
	}
	return file, nil
}

// Write appends p, rotating first when the day has changed. A failed
// rotation is reported on stderr and the record still goes to the live
// file.
func (rotating *RotatingFile) Write(p []byte) (int, error) {
	rotating.mu.Lock()
	defer rotating.mu.Unlock()

	if today := rotating.clock.Now().In(rotating.location).Format(dayLayout); today != rotating.day {
		if err := rotating.rotate(today); err != nil {
			fmt.Fprintf(os.Stderr, "logging: rotating %s: %v\n", rotating.path, err)
		}
	}
	if rotating.file == nil {
		return 0, fs.ErrClosed
	}
	return rotating.file.Write(p)
}

// Close closes the live file. Later writes fail with fs.ErrClosed.
func (rotating *RotatingFile) Close() error {
	rotating.mu.Lock()
	defer rotating.mu.Unlock()
	if rotating.file == nil {
		return nil
	}
	err := rotating.file.Close()
	rotating.file = nil
	return err
}

func (rotating *RotatingFile) rotate(today string) error {
	if rotating.file == nil {
		return fs.ErrClosed
	}
	closeErr := rotating.file.Close()
	rotating.file = nil

	target := rotating.rotatedName(rotating.day)
	renameErr := os.Rename(rotating.path, target)

	file, err := openAppend(rotating.path)
	if err != nil {
		return err
	}
	rotating.file = file
	rotating.day = today

	if err := errors.Join(closeErr, renameErr); err != nil {
		return err
	}
	if err := compressFile(target, rotating.compression); err != nil {
		return err
	}
	return rotating.prune()
}

// rotatedName returns <path>.<day>, or <path>.<day>.<n> when that day
// was already rotated (the clock moved backwards, or the process was
// restarted with a file stamped in the future).
func (rotating *RotatingFile) rotatedName(day string) string {
	base := rotating.path + "." + day
	extension := rotating.compression.extension()
	candidate := base
	for sequence := 1; exists(candidate) || exists(candidate+extension); sequence++ {
		candidate = base + "." + strconv.Itoa(sequence)
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func compressFile(path string, compression Compression) (err error) {
	if compression == CompressionNone {
		return nil
	}

	source, err := os.Open(path)
	if err != nil {
		return err
	}
	defer source.Close()

	destinationPath := path + compression.extension()
	destination, err := os.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			destination.Close()
			os.Remove(destinationPath)
		}
	}()

	var encoder io.WriteCloser
	switch compression {
	case CompressionZstd:
		encoder, err = zstd.NewWriter(destination)
		if err != nil {
			return fmt.Errorf("zstd encoder: %w", err)
		}
	case CompressionLZ4:
		encoder = lz4.NewWriter(destination)
	}

	if _, err = io.Copy(encoder, source); err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	if err = encoder.Close(); err != nil {
		return fmt.Errorf("compressing %s: %w", path, err)
	}
	if err = destination.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

var rotatedPattern = regexp.MustCompile(`^\.(\d{4}-\d{2}-\d{2})(?:\.(\d+))?(?:\.zst|\.lz4)?$`)

type rotatedFile struct {
	name     string
	day      string
	sequence int
}

// RotatedFiles lists the rotated siblings of the live file, oldest
// first.
func (rotating *RotatingFile) RotatedFiles() ([]string, error) {
	files, err := rotating.listRotated()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for index, file := range files {
		names[index] = filepath.Join(filepath.Dir(rotating.path), file.name)
	}
	return names, nil
}

func (rotating *RotatingFile) listRotated() ([]rotatedFile, error) {
	directory := filepath.Dir(rotating.path)
	base := filepath.Base(rotating.path)

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	var files []rotatedFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) <= len(base) || name[:len(base)] != base {
			continue
		}
		match := rotatedPattern.FindStringSubmatch(name[len(base):])
		if match == nil {
			continue
		}
		sequence, _ := strconv.Atoi(match[2])
		files = append(files, rotatedFile{name: name, day: match[1], sequence: sequence})
	}
	slices.SortFunc(files, func(a, b rotatedFile) int {
		return cmp.Or(cmp.Compare(a.day, b.day), cmp.Compare(a.sequence, b.sequence))
	})
	return files, nil
}

func (rotating *RotatingFile) prune() error {
	if rotating.keep <= 0 {
		return nil
	}
	files, err := rotating.listRotated()
	if err != nil {
		return err
	}
	if len(files) <= rotating.keep {
		return nil
	}
	directory := filepath.Dir(rotating.path)
	var errs []error
	for _, file := range files[:len(files)-rotating.keep] {
		if err := os.Remove(filepath.Join(directory, file.name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
