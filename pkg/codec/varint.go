// Package codec implements the engine's canonical, deterministic wire
// encoding: the same value always serializes to the same bytes, so
// header hashes and stored blocks are stable across implementations.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteUint32 writes v little-endian.
func WriteUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteUint64 writes v little-endian.
func WriteUint64(w io.Writer, v uint64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteInt64 writes v little-endian.
func WriteInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteVarInt writes v in Bitcoin's compact-size format: 1 byte for
// values below 0xFD, otherwise a marker byte followed by a fixed-width
// little-endian field.
func WriteVarInt(w io.Writer, v uint64) error {
	switch {
	case v < 0xFD:
		_, err := w.Write([]byte{byte(v)})
		return err
	case v <= 0xFFFF:
		if _, err := w.Write([]byte{0xFD}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint16(v))
	case v <= 0xFFFFFFFF:
		if _, err := w.Write([]byte{0xFE}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint32(v))
	default:
		if _, err := w.Write([]byte{0xFF}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v)
	}
}

// WriteBytes writes data as a varint length prefix followed by the
// raw bytes.
func WriteBytes(w io.Writer, data []byte) error {
	if err := WriteVarInt(w, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadUint32 reads a little-endian uint32.
func ReadUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// ReadUint64 reads a little-endian uint64.
func ReadUint64(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// ReadInt64 reads a little-endian int64.
func ReadInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// ReadVarInt reads Bitcoin's compact-size format.
func ReadVarInt(r io.Reader) (uint64, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return 0, err
	}
	switch first[0] {
	case 0xFD:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 0xFE:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return uint64(v), nil
	case 0xFF:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return v, nil
	default:
		return uint64(first[0]), nil
	}
}

// ReadBytes reads a varint length prefix followed by that many bytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > 1<<32 {
		return nil, fmt.Errorf("codec: implausible length prefix %d", n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
