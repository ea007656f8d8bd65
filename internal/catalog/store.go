// Shikisai - Color-Driven Mood Music Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shikisai

package catalog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Artifact file names inside the data directory. All three share row order.
const (
	IndexFile    = "catalog.index"
	VectorsFile  = "catalog.vectors"
	MetadataFile = "catalog.metadata.json"
)

var (
	vectorsMagic = [8]byte{'S', 'H', 'K', 'V', 'E', 'C', '0', '1'}
	indexMagic   = [8]byte{'S', 'H', 'K', 'I', 'D', 'X', '0', '1'}
)

// header prefixes both binary artifacts.
type header struct {
	Magic      [8]byte
	Dim        uint64
	Count      uint64
	Generation uint64
}

const headerSize = 32

// matrix is a decoded vectors or index artifact.
type matrix struct {
	dim        int
	count      int
	generation uint64
	data       []float32
	checksum   uint32
}

// checksum is a CRC-32 over the little-endian encoding of data.
func checksum(data []float32) uint32 {
	var buf [4 * 256]byte
	crc := uint32(0)
	for start := 0; start < len(data); start += 256 {
		end := start + 256
		if end > len(data) {
			end = len(data)
		}
		n := 0
		for _, x := range data[start:end] {
			binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(x))
			n += 4
		}
		crc = crc32.Update(crc, crc32.IEEETable, buf[:n])
	}
	return crc
}

func writeMatrix(path string, magic [8]byte, m matrix) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		h := header{Magic: magic, Dim: uint64(m.dim), Count: uint64(m.count), Generation: m.generation}
		if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		row := make([]byte, 4*m.dim)
		for r := 0; r < m.count; r++ {
			for i, x := range m.data[r*m.dim : (r+1)*m.dim] {
				binary.LittleEndian.PutUint32(row[4*i:], math.Float32bits(x))
			}
			if _, err := w.Write(row); err != nil {
				return fmt.Errorf("write row %d: %w", r, err)
			}
		}
		return nil
	})
}

// readMatrix returns os.ErrNotExist (wrapped) when the file is absent and
// ErrCorruptArtifact when it cannot be decoded.
func readMatrix(path string, magic [8]byte) (matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return matrix{}, err
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return matrix{}, fmt.Errorf("%w: %s: read header: %v", ErrCorruptArtifact, filepath.Base(path), err)
	}
	if h.Magic != magic {
		return matrix{}, fmt.Errorf("%w: %s: bad magic %q", ErrCorruptArtifact, filepath.Base(path), h.Magic[:])
	}
	if h.Dim == 0 || h.Dim > 1<<20 || h.Count > 1<<32 {
		return matrix{}, fmt.Errorf("%w: %s: implausible shape %dx%d", ErrCorruptArtifact, filepath.Base(path), h.Count, h.Dim)
	}
	if info, statErr := f.Stat(); statErr == nil {
		want := int64(headerSize) + int64(h.Count)*int64(h.Dim)*4
		if info.Size() != want {
			return matrix{}, fmt.Errorf("%w: %s: size %d, want %d", ErrCorruptArtifact, filepath.Base(path), info.Size(), want)
		}
	}

	m := matrix{dim: int(h.Dim), count: int(h.Count), generation: h.Generation}
	m.data = make([]float32, m.dim*m.count)
	row := make([]byte, 4*m.dim)
	for i := 0; i < m.count; i++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return matrix{}, fmt.Errorf("%w: %s: row %d: %v", ErrCorruptArtifact, filepath.Base(path), i, err)
		}
		dst := m.data[i*m.dim : (i+1)*m.dim]
		for j := range dst {
			dst[j] = math.Float32frombits(binary.LittleEndian.Uint32(row[4*j:]))
		}
	}
	m.checksum = checksum(m.data)
	return m, nil
}

func writeMetadata(path string, tracks []Track) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		if tracks == nil {
			tracks = []Track{}
		}
		return json.NewEncoder(w).Encode(tracks)
	})
}

func readMetadata(path string) ([]Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, filepath.Base(path), err)
	}
	return tracks, nil
}

// writeFileAtomic writes to a temp file in the same directory, syncs it and
// renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 1<<20)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	syncDir(dir)
	return nil
}

// syncDir persists the rename. Not every platform supports fsync on a
// directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
