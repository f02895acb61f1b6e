// Package codec serialises vector indexes for the persistent index stores.
//
// An index is stored as two artifacts keyed by the index name: a binary
// vectors artifact and a JSON metadata artifact holding the chunks, the
// embedding configuration and a checksum of the vectors.
//
// # Vectors format
//
//	magic      [4]byte  "DQVX"
//	version    uint32   currently 1
//	count      uint32   number of vectors
//	dimensions uint32   floats per vector
//	data       count*dimensions float32, little endian
package codec

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// FormatVersion is the current on-disk format version.
const FormatVersion = 1

// maxDimensions bounds the vector size accepted from a header.
const maxDimensions = 1 << 16

var magic = [4]byte{'D', 'Q', 'V', 'X'}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateName rejects index names that are not safe as file or object names.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: invalid index name %q", domain.ErrInvalidInput, name)
	}
	return nil
}

// Meta is the metadata artifact of a stored index.
type Meta struct {
	Version    int          `json:"version"`
	Model      string       `json:"model"`
	Dimensions int          `json:"dimensions"`
	Vectors    string       `json:"vectors"`
	Checksum   string       `json:"checksum"`
	CreatedAt  time.Time    `json:"created_at"`
	Chunks     []ChunkEntry `json:"chunks"`
}

// ChunkEntry is one id to chunk mapping in the metadata artifact.
type ChunkEntry struct {
	ID      int    `json:"id"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Overlap int    `json:"overlap,omitempty"`
	Tokens  int    `json:"tokens"`
}

// Encoded holds both artifacts of an index ready to be written.
type Encoded struct {
	Meta    []byte
	Vectors []byte
}

// Encode serialises idx. vectorsRef is recorded in the metadata so a loader
// can find the matching vectors artifact.
func Encode(idx *domain.VectorIndex, vectorsRef string) (*Encoded, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteVectors(&buf, idx); err != nil {
		return nil, err
	}

	meta := Meta{
		Version:    FormatVersion,
		Model:      idx.Model,
		Dimensions: idx.Dimensions,
		Vectors:    vectorsRef,
		Checksum:   Checksum(buf.Bytes()),
		CreatedAt:  time.Now().UTC(),
		Chunks:     make([]ChunkEntry, len(idx.Entries)),
	}
	for i, e := range idx.Entries {
		meta.Chunks[i] = ChunkEntry{
			ID:      e.ID,
			Index:   e.Chunk.Index,
			Text:    e.Chunk.Text,
			Overlap: e.Chunk.Overlap,
			Tokens:  e.Chunk.Tokens,
		}
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal index metadata: %w", err)
	}

	return &Encoded{Meta: metaJSON, Vectors: buf.Bytes()}, nil
}

// DecodeMeta parses the metadata artifact.
func DecodeMeta(data []byte) (*Meta, error) {
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", domain.ErrIndexCorrupt, err)
	}
	if meta.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", domain.ErrIndexCorrupt, meta.Version)
	}
	return &meta, nil
}

// Decode rebuilds an index from its metadata and vectors artifact.
// The vectors must match the checksum, count and dimensionality recorded in
// the metadata.
func Decode(meta *Meta, vectors []byte) (*domain.VectorIndex, error) {
	if got := Checksum(vectors); got != meta.Checksum {
		return nil, fmt.Errorf("%w: vectors checksum mismatch", domain.ErrIndexCorrupt)
	}

	vecs, dims, err := ReadVectors(bytes.NewReader(vectors))
	if err != nil {
		return nil, err
	}
	if dims != meta.Dimensions {
		return nil, fmt.Errorf("%w: vectors have %d dimensions, metadata says %d",
			domain.ErrIndexCorrupt, dims, meta.Dimensions)
	}
	if len(vecs) != len(meta.Chunks) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrIndexCorrupt, len(vecs), len(meta.Chunks))
	}

	idx := &domain.VectorIndex{
		Model:      meta.Model,
		Dimensions: meta.Dimensions,
		Entries:    make([]domain.IndexEntry, len(vecs)),
	}
	for i, c := range meta.Chunks {
		idx.Entries[i] = domain.IndexEntry{
			ID: c.ID,
			Chunk: domain.Chunk{
				Index:   c.Index,
				Text:    c.Text,
				Overlap: c.Overlap,
				Tokens:  c.Tokens,
			},
			Vector: vecs[i],
		}
	}

	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteVectors writes the vectors of idx in the binary vectors format.
func WriteVectors(w io.Writer, idx *domain.VectorIndex) error {
	bw := bufio.NewWriter(w)

	header := []uint32{FormatVersion, uint32(len(idx.Entries)), uint32(idx.Dimensions)}
	if _, err := bw.Write(magic[:]); err != nil {
		return fmt.Errorf("write vectors header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write vectors header: %w", err)
	}

	for _, e := range idx.Entries {
		if _, err := bw.Write(VectorToBytes(e.Vector)); err != nil {
			return fmt.Errorf("write vector %d: %w", e.ID, err)
		}
	}

	return bw.Flush()
}

// ReadVectors reads the binary vectors format.
func ReadVectors(r io.Reader) ([][]float32, int, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: vectors header: %w", domain.ErrIndexCorrupt, err)
	}
	if m != magic {
		return nil, 0, fmt.Errorf("%w: not a vectors file", domain.ErrIndexCorrupt)
	}

	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, 0, fmt.Errorf("%w: vectors header: %w", domain.ErrIndexCorrupt, err)
	}
	version, count, dims := header[0], int(header[1]), int(header[2])
	if version != FormatVersion {
		return nil, 0, fmt.Errorf("%w: unsupported vectors version %d", domain.ErrIndexCorrupt, version)
	}
	if dims <= 0 || dims > maxDimensions {
		return nil, 0, fmt.Errorf("%w: invalid dimensions %d", domain.ErrIndexCorrupt, dims)
	}

	vecs := make([][]float32, count)
	buf := make([]byte, dims*4)
	for i := range vecs {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, 0, fmt.Errorf("%w: truncated at vector %d", domain.ErrIndexCorrupt, i)
			}
			return nil, 0, fmt.Errorf("read vector %d: %w", i, err)
		}
		vecs[i] = BytesToVector(buf)
	}

	return vecs, dims, nil
}

// VectorToBytes converts a []float32 to little endian bytes.
func VectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// BytesToVector converts little endian bytes back to []float32.
func BytesToVector(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
