package ftsarc

import "github.com/meigma/ftsarc/internal/arctype"

type (
	// ProgressEvent represents a progress update during a directory build or
	// an extraction.
	ProgressEvent = arctype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = arctype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = arctype.ProgressFunc
)

const (
	// StageEnumerating indicates the operation is walking the directory tree.
	StageEnumerating = arctype.StageEnumerating

	// StageReading indicates files are being read and optionally compressed.
	StageReading = arctype.StageReading

	// StageWriting indicates the archive is being serialized.
	StageWriting = arctype.StageWriting

	// StageExtracting indicates chunks are being written out.
	StageExtracting = arctype.StageExtracting
)

func report(fn ProgressFunc, ev ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}
