package binlog

import "fmt"

// IOError wraps a short read/write or other I/O failure encountered while
// walking the event stream. Plain os/io errors are wrapped in this type
// so callers can use errors.As uniformly instead of comparing strings.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("binlog: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// CorruptEventError reports a position-chain invariant violation:
// an event's header claims a log_pos that does not land exactly
// data_written bytes after the event's own starting offset.
type CorruptEventError struct {
	Offset   int64
	LogPos   uint32
	DataSize uint32
}

func (e *CorruptEventError) Error() string {
	return fmt.Sprintf("binlog: corrupt event at offset %d: log_pos=%d data_written=%d",
		e.Offset, e.LogPos, e.DataSize)
}

// UnexpectedEventTypeError reports a state machine transition the scanner
// does not accept: a forbidden event type in the current scan state, or a
// BEGIN query whose text does not match. An UPDATE row whose column count
// mismatches its table-map is skipped by the inverter, not reported here.
type UnexpectedEventTypeError struct {
	Offset  int64
	Got     LogEventType
	Context string
}

func (e *UnexpectedEventTypeError) Error() string {
	return fmt.Sprintf("binlog: unexpected event %s at offset %d (%s)", e.Got, e.Offset, e.Context)
}

// EventTooBigError reports that an event's declared size exceeds the
// configured cap, guarding against a corrupt length field driving an
// unbounded allocation.
type EventTooBigError struct {
	Offset int64
	Size   uint32
	Max    uint32
}

func (e *EventTooBigError) Error() string {
	return fmt.Sprintf("binlog: event at offset %d has size %d exceeding max %d", e.Offset, e.Size, e.Max)
}

// BadChecksumError reports an input event whose trailing CRC32 does not
// match its bytes. Only ever produced when RunConfig.VerifyInputChecksums
// is enabled; by default the engine trusts its input.
type BadChecksumError struct {
	Offset int64
	Want   uint32
	Got    uint32
}

func (e *BadChecksumError) Error() string {
	return fmt.Sprintf("binlog: checksum mismatch at offset %d: want %08x got %08x", e.Offset, e.Want, e.Got)
}
