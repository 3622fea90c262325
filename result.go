package muxproc

// finalizedKind discriminates what a sink materialized into.
type finalizedKind int

const (
	finalizedOpaque finalizedKind = iota
	finalizedBytes
	finalizedPath
)

// FinalizedValue is what one output stream's sink produced once the child
// exited: the accumulated bytes for a Buffer sink, the target path for a
// Path or Append sink, or an opaque marker for Discard, File, and Forward
// sinks (the caller already holds the real artifact in those cases).
type FinalizedValue struct {
	kind finalizedKind
	data []byte
	path string
}

// bytesValue wraps a buffer sink's accumulated bytes.
func bytesValue(data []byte) FinalizedValue {
	return FinalizedValue{kind: finalizedBytes, data: data}
}

// pathValue wraps a path sink's target path.
func pathValue(path string) FinalizedValue {
	return FinalizedValue{kind: finalizedPath, path: path}
}

// opaqueValue marks a stream whose data was not materialized here.
func opaqueValue() FinalizedValue {
	return FinalizedValue{kind: finalizedOpaque}
}

// Materialized reports whether the value carries bytes or a path, as opposed
// to the opaque marker of Discard, File, and Forward sinks.
func (v FinalizedValue) Materialized() bool {
	return v.kind != finalizedOpaque
}

// Bytes returns the accumulated bytes of a Buffer sink, or nil for every
// other sink kind.
func (v FinalizedValue) Bytes() []byte {
	return v.data
}

// Path returns the target path of a Path or Append sink, or "" for every
// other sink kind.
func (v FinalizedValue) Path() string {
	return v.path
}

// String renders the value for logs: the buffered bytes, the path, or the
// opaque marker.
func (v FinalizedValue) String() string {
	switch v.kind {
	case finalizedBytes:
		return string(v.data)
	case finalizedPath:
		return v.path
	default:
		return "<not materialized>"
	}
}

// Result is the terminal outcome of one invocation: the child's exit status
// passed through verbatim, plus both finalized streams.
type Result struct {
	ExitStatus int
	Stdout     FinalizedValue
	Stderr     FinalizedValue
}
