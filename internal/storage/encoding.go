package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// SerializeEmbedding converts a float32 slice to bytes using little-endian encoding.
// Each float32 is encoded as 4 bytes using IEEE 754 binary representation.
//
// For 384-dimension embeddings: 384 * 4 = 1536 bytes.
// For 1536-dimension embeddings: 1536 * 4 = 6144 bytes.
//
// The serialized format is used for storing embeddings in SQLite BLOB columns.
func SerializeEmbedding(emb []float32) []byte {
	bytes := make([]byte, len(emb)*4)
	for i, f := range emb {
		bits := math.Float32bits(f)
		binary.LittleEndian.PutUint32(bytes[i*4:], bits)
	}
	return bytes
}

// DeserializeEmbedding converts bytes back to a float32 slice using little-endian encoding.
// This reverses the serialization performed by SerializeEmbedding.
//
// Returns an error if the byte length is not divisible by 4, which indicates corrupted data.
// Empty byte slices are valid and return an empty (non-nil) float32 slice.
func DeserializeEmbedding(bytes []byte) ([]float32, error) {
	if len(bytes)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: length %d not divisible by 4", len(bytes))
	}

	floats := make([]float32, len(bytes)/4)
	for i := range floats {
		bits := binary.LittleEndian.Uint32(bytes[i*4:])
		floats[i] = math.Float32frombits(bits)
	}
	return floats, nil
}

// EncodeStringArray serializes a string slice into the JSON-as-TEXT
// column convention used for chunks.symbol_names/imports/exports and
// file_imports.imported_symbols.
func EncodeStringArray(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeStringArray reverses EncodeStringArray. An empty column reads
// back as a nil slice rather than an error.
func DecodeStringArray(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("invalid string array JSON: %w", err)
	}
	return out, nil
}
