package binlog

import "fmt"

// ReadFullEvent reads one complete event — header, post-header, body, and
// trailing checksum if present — from offset. maxSize bounds the event's
// declared data_written field; a header claiming more than maxSize
// returns *EventTooBigError without reading the (potentially enormous)
// body.
func ReadFullEvent(src *Source, offset int64, maxSize uint32) ([]byte, *EventHeader, error) {
	headerBytes, err := src.ReadAt(offset, BINLOG_EVENT_HEADER_LEN)
	if err != nil {
		return nil, nil, fmt.Errorf("binlog: reading event header at %d: %w", offset, err)
	}
	header, err := DecodeEventHeader(headerBytes)
	if err != nil {
		return nil, nil, err
	}
	if header.EventSize > maxSize {
		return nil, nil, &EventTooBigError{Offset: offset, Size: header.EventSize, Max: maxSize}
	}

	data := make([]byte, header.EventSize)
	copy(data, headerBytes)
	if rest := int(header.EventSize) - BINLOG_EVENT_HEADER_LEN; rest > 0 {
		body, err := src.ReadAt(offset+BINLOG_EVENT_HEADER_LEN, rest)
		if err != nil {
			return nil, nil, fmt.Errorf("binlog: reading event body at %d: %w", offset, err)
		}
		copy(data[BINLOG_EVENT_HEADER_LEN:], body)
	}
	return data, header, nil
}
