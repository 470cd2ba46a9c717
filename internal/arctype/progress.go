package arctype

// ProgressEvent represents a progress update during a build, store, or
// extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the file or chunk currently being processed, if applicable.
	Path string

	// BytesDone is the number of bytes completed so far.
	BytesDone uint64

	// FilesDone is the number of files completed.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown (e.g., during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageEnumerating indicates the operation is walking the directory tree.
	StageEnumerating ProgressStage = iota

	// StageReading indicates files are being read and optionally compressed.
	StageReading

	// StageWriting indicates the archive is being serialized.
	StageWriting

	// StageExtracting indicates chunks are being written out.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageReading:
		return "reading"
	case StageWriting:
		return "writing"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
// Implementations must be safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
