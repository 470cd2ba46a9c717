// Package stream provides cursor-based reading and writing over byte
// buffers.
//
// A Stream owns a buffer and supports reads plus two write modes: Insert
// shifts the bytes after the cursor to make room, Overwrite replaces bytes in
// place and inserts whatever does not fit. A Reader is the read-only
// counterpart over a borrowed view.
//
// Numeric values are always encoded little-endian, independent of the host.
// Raw byte reads and writes are never reordered.
package stream
