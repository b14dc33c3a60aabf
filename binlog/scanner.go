//
// scanner.go
//
// Transaction scanner: a single forward pass over the input that
// recognizes BEGIN -> (table-map, row)* -> XID and records only event
// offsets/sizes into the transaction index.

package binlog

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// Scanner walks the input event stream building a transaction Index. It
// holds no payload or position state between events — the cursor is local
// to Scan — only the configuration needed to bound event sizes.
type Scanner struct {
	Src              *Source
	FDE              *FormatDescriptionEvent
	ChecksumEnabled  bool
	MaxEventSize     uint32
	MaxTableMapSize  uint32
	Log              *logrus.Logger
}

// NewScanner builds a Scanner with the supplied caps, defaulting any zero
// value to the package default and falling back to the standard logger
// when log is nil.
func NewScanner(src *Source, fde *FormatDescriptionEvent, checksumEnabled bool, maxEventSize, maxTableMapSize uint32, log *logrus.Logger) *Scanner {
	if maxEventSize == 0 {
		maxEventSize = DefaultMaxEventSize
	}
	if maxTableMapSize == 0 {
		maxTableMapSize = DefaultMaxTableMapSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scanner{
		Src:             src,
		FDE:             fde,
		ChecksumEnabled: checksumEnabled,
		MaxEventSize:    maxEventSize,
		MaxTableMapSize: maxTableMapSize,
		Log:             log,
	}
}

func (s *Scanner) checksumLen() int {
	if s.ChecksumEnabled {
		return BINLOG_CHECKSUM_LEN
	}
	return 0
}

func (s *Scanner) readHeaderAt(offset int64) (*EventHeader, error) {
	raw, err := s.Src.ReadAt(offset, BINLOG_EVENT_HEADER_LEN)
	if err != nil {
		return nil, err
	}
	header, err := DecodeEventHeader(raw)
	if err != nil {
		return nil, err
	}
	if err := ValidatePosition(header, offset); err != nil {
		return nil, err
	}
	return header, nil
}

// Scan walks the event stream starting at startOffset, returning the
// ordered transaction Index (P3: every transaction has exactly one BEGIN,
// >=1 table-map/row pair, and exactly one XID).
func (s *Scanner) Scan(startOffset int64) (Index, error) {
	pos := startOffset
	var index Index

	for {
		beginRef, nextPos, err := s.scanBegin(pos)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		pos = nextPos

		txn := TxnRef{Begin: beginRef}
		for {
			rowRef, xidRef, closed, nextPos, err := s.scanTableMapOrXid(pos)
			if err != nil {
				return nil, err
			}
			pos = nextPos
			if closed {
				txn.Xid = xidRef
				break
			}
			txn.Rows = append(txn.Rows, rowRef)

			nextPos, err = s.scanRow(pos)
			if err != nil {
				return nil, err
			}
			pos = nextPos
		}

		if len(txn.Rows) == 0 {
			return nil, &UnexpectedEventTypeError{Offset: txn.Begin.Offset, Got: XID_EVENT, Context: "transaction has no row events"}
		}

		s.Log.WithFields(logrus.Fields{
			"begin_offset": txn.Begin.Offset,
			"row_events":   len(txn.Rows),
		}).Debug("scanned transaction")

		index = append(index, txn)
	}

	return index, nil
}

// scanBegin implements the AwaitBegin state: the next event must be a
// QUERY_EVENT no larger than 100 bytes whose query text is the literal
// "BEGIN".
func (s *Scanner) scanBegin(offset int64) (EventRef, int64, error) {
	header, err := s.readHeaderAt(offset)
	if err != nil {
		return EventRef{}, 0, err
	}
	if header.EventType != QUERY_EVENT || header.EventSize > 100 {
		return EventRef{}, 0, &UnexpectedEventTypeError{Offset: offset, Got: header.EventType, Context: "expected BEGIN query event"}
	}

	body, err := s.readBody(offset, header)
	if err != nil {
		return EventRef{}, 0, err
	}
	ok, err := isBeginQuery(body)
	if err != nil {
		return EventRef{}, 0, &UnexpectedEventTypeError{Offset: offset, Got: header.EventType, Context: err.Error()}
	}
	if !ok {
		return EventRef{}, 0, &UnexpectedEventTypeError{Offset: offset, Got: header.EventType, Context: "query event is not BEGIN"}
	}

	return EventRef{Offset: offset, Size: header.EventSize}, int64(header.LogPos), nil
}

// scanTableMapOrXid implements the InTransaction state's first half: the
// next event is either a TABLE_MAP_EVENT (transaction continues) or an
// XID_EVENT (transaction closes).
func (s *Scanner) scanTableMapOrXid(offset int64) (row, xid EventRef, closed bool, nextPos int64, err error) {
	header, err := s.readHeaderAt(offset)
	if err != nil {
		return EventRef{}, EventRef{}, false, 0, err
	}

	switch header.EventType {
	case TABLE_MAP_EVENT:
		if header.EventSize > s.MaxTableMapSize {
			return EventRef{}, EventRef{}, false, 0, &EventTooBigError{Offset: offset, Size: header.EventSize, Max: s.MaxTableMapSize}
		}
		return EventRef{Offset: offset, Size: header.EventSize}, EventRef{}, false, int64(header.LogPos), nil
	case XID_EVENT:
		return EventRef{}, EventRef{Offset: offset, Size: header.EventSize}, true, int64(header.LogPos), nil
	default:
		return EventRef{}, EventRef{}, false, 0, &UnexpectedEventTypeError{Offset: offset, Got: header.EventType, Context: "expected TABLE_MAP_EVENT or XID_EVENT"}
	}
}

// scanRow implements the InTransaction state's second half: the event
// immediately following a table-map must be a row-modification event. It
// is validated and skipped — its bytes are never retained; the emitter
// re-reads it on demand by offset (table_map.offset + table_map.size).
func (s *Scanner) scanRow(offset int64) (int64, error) {
	header, err := s.readHeaderAt(offset)
	if err != nil {
		return 0, err
	}
	if !header.EventType.IsRowEvent() {
		return 0, &UnexpectedEventTypeError{Offset: offset, Got: header.EventType, Context: "expected a row event following table-map"}
	}
	if header.EventSize > s.MaxEventSize {
		return 0, &EventTooBigError{Offset: offset, Size: header.EventSize, Max: s.MaxEventSize}
	}
	return int64(header.LogPos), nil
}

// readBody reads an event's body (post-header through the end of its
// type-specific payload), excluding the trailing checksum when enabled.
func (s *Scanner) readBody(offset int64, header *EventHeader) ([]byte, error) {
	total := int(header.EventSize) - BINLOG_EVENT_HEADER_LEN
	raw, err := s.Src.ReadAt(offset+BINLOG_EVENT_HEADER_LEN, total)
	if err != nil {
		return nil, err
	}
	return raw[:total-s.checksumLen()], nil
}
