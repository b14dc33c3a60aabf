//
// header.go
// Copyright (C) 2019 Jianlong Chen <jianlong99@gmail.com>
//

package binlog

import (
	"encoding/binary"
	"fmt"
	"time"
)

// EventHeader is the fixed 19-byte prefix every binlog event begins with.
type EventHeader struct {
	Timestamp uint32 // seconds since unix epoch
	EventType LogEventType
	ServerId  uint32 // server-id of the originating mysql-server
	EventSize uint32 // data_written: header + post-header + body (+ checksum)
	LogPos    uint32 // offset immediately after this event
	Flags     uint16
}

// Desc renders the header as a list of human-readable lines, used by the
// inspection tool.
func (h *EventHeader) Desc() []string {
	return []string{
		fmt.Sprintf("timestamp: %d (%v)", h.Timestamp, time.Unix(int64(h.Timestamp), 0)),
		fmt.Sprintf("event_type: %v", h.EventType),
		fmt.Sprintf("server_id: %d", h.ServerId),
		fmt.Sprintf("event_size: %d", h.EventSize),
		fmt.Sprintf("log_pos: %d", h.LogPos),
		fmt.Sprintf("flags: %d", h.Flags),
	}
}

// DecodeEventHeader decodes a 19-byte buffer into an EventHeader. All
// multi-byte fields are little-endian.
func DecodeEventHeader(data []byte) (*EventHeader, error) {
	if len(data) != BINLOG_EVENT_HEADER_LEN {
		return nil, fmt.Errorf("binlog: invalid event header length %d, want %d", len(data), BINLOG_EVENT_HEADER_LEN)
	}

	h := &EventHeader{
		Timestamp: binary.LittleEndian.Uint32(data[0:4]),
		EventType: LogEventType(data[4]),
		ServerId:  binary.LittleEndian.Uint32(data[5:9]),
		EventSize: binary.LittleEndian.Uint32(data[9:13]),
		LogPos:    binary.LittleEndian.Uint32(data[13:17]),
		Flags:     binary.LittleEndian.Uint16(data[17:19]),
	}
	return h, nil
}

// EncodeInto writes the header back into a 19-byte buffer. Used only by
// the emitter when RewriteLogPos is enabled.
func (h *EventHeader) EncodeInto(data []byte) {
	if len(data) < BINLOG_EVENT_HEADER_LEN {
		panic("binlog: EncodeInto buffer too small")
	}
	binary.LittleEndian.PutUint32(data[0:4], h.Timestamp)
	data[4] = byte(h.EventType)
	binary.LittleEndian.PutUint32(data[5:9], h.ServerId)
	binary.LittleEndian.PutUint32(data[9:13], h.EventSize)
	binary.LittleEndian.PutUint32(data[13:17], h.LogPos)
	binary.LittleEndian.PutUint16(data[17:19], h.Flags)
}

// BodyLen returns the number of body bytes following the 19-byte header,
// excluding the trailing checksum when checksumEnabled is set.
func (h *EventHeader) BodyLen(checksumEnabled bool) uint32 {
	n := h.EventSize - BINLOG_EVENT_HEADER_LEN
	if checksumEnabled {
		n -= BINLOG_CHECKSUM_LEN
	}
	return n
}

// ValidatePosition checks that log_pos - data_written equals the event's
// own starting offset.
func ValidatePosition(h *EventHeader, offset int64) error {
	if int64(h.LogPos)-int64(h.EventSize) != offset {
		return &CorruptEventError{Offset: offset, LogPos: h.LogPos, DataSize: h.EventSize}
	}
	return nil
}
