package vector

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

	"github.com/hyperjump/ledgerlens/internal/models"
)

// Artifact layout (little endian):
//
//	magic "LLVI" | version u32 | dimensions u32 | count u32 | count*dimensions f32 | crc32(payload) u32
const (
	artifactMagic   = "LLVI"
	artifactVersion = uint32(1)
)

// writeArtifact writes flat (count*dimensions floats) to path via a temp file and rename.
func writeArtifact(path string, dimensions int, flat []float32) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	w := bufio.NewWriter(f)
	count := 0
	if dimensions > 0 {
		count = len(flat) / dimensions
	}
	header := make([]byte, 0, 16)
	header = append(header, artifactMagic...)
	header = binary.LittleEndian.AppendUint32(header, artifactVersion)
	header = binary.LittleEndian.AppendUint32(header, uint32(dimensions))
	header = binary.LittleEndian.AppendUint32(header, uint32(count))
	if _, err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	payload := float32SliceToBytes(flat)
	if _, err := w.Write(payload); err != nil {
		f.Close()
		return fmt.Errorf("write vectors: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, crc32.ChecksumIEEE(payload)); err != nil {
		f.Close()
		return fmt.Errorf("write checksum: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush index file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	return os.Rename(tmp, path)
}

// readArtifact reads an artifact written by writeArtifact. A missing file yields
// models.ErrNotFound; any structural problem yields models.ErrCorruptArtifact.
func readArtifact(path string, dimensions int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: index file %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", models.ErrCorruptArtifact, err)
	}
	if string(header[:4]) != artifactMagic {
		return nil, fmt.Errorf("%w: bad magic %q", models.ErrCorruptArtifact, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != artifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", models.ErrCorruptArtifact, v)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	count := int(binary.LittleEndian.Uint32(header[12:16]))
	if dim != dimensions {
		return nil, fmt.Errorf("%w: file has %d dimensions, index expects %d", models.ErrDimensionMismatch, dim, dimensions)
	}
	size := uint64(count) * uint64(dim) * 4
	if info, err := f.Stat(); err == nil && size+20 != uint64(info.Size()) {
		return nil, fmt.Errorf("%w: file size %d does not match %d vectors", models.ErrCorruptArtifact, info.Size(), count)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: read vectors: %v", models.ErrCorruptArtifact, err)
	}
	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return nil, fmt.Errorf("%w: read checksum: %v", models.ErrCorruptArtifact, err)
	}
	if sum != crc32.ChecksumIEEE(payload) {
		return nil, fmt.Errorf("%w: checksum mismatch", models.ErrCorruptArtifact)
	}
	if _, err := r.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", models.ErrCorruptArtifact)
	}
	return bytesToFloat32Slice(payload), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
