//
// fde.go
// Copyright (C) 2019 Jianlong Chen <jianlong99@gmail.com>
//

package binlog

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-version"
)

// FormatDescriptionEvent is the first event after the file magic. It
// declares the binlog version, the server that wrote it, and — via its
// footer — whether every subsequent event carries a trailing CRC32.
type FormatDescriptionEvent struct {
	BinlogVersion uint16
	ServerVersion string
	CreateTime    uint32
	HeaderLength  uint8
	PostHeaderLen []byte // indexed by EventType-1
	ChecksumAlg   BinlogChecksumAlg
}

// PostHeaderLength returns the post-header byte count declared for t, or 0
// if t falls outside the table (an event type newer than this FDE knows
// about).
func (f *FormatDescriptionEvent) PostHeaderLength(t LogEventType) uint8 {
	idx := int(t) - 1
	if idx < 0 || idx >= len(f.PostHeaderLen) {
		return 0
	}
	return f.PostHeaderLen[idx]
}

// checksumVersionFloor is the MySQL server version at which the
// format-description event's footer gained a checksum-algorithm byte and
// every subsequent event gained a trailing 4-byte CRC32.
const checksumVersionFloor = "5.6.1"

// ReadFormatDescriptionEvent reads the 4-byte file magic at the start of
// src and the format-description event immediately following it. It is
// the only place checksum_enabled is decided for the whole run.
func ReadFormatDescriptionEvent(src *Source) (*FormatDescriptionEvent, EventRef, error) {
	magic, err := src.ReadAt(0, 4)
	if err != nil {
		return nil, EventRef{}, fmt.Errorf("binlog: reading file magic: %w", err)
	}
	if !bytes.Equal(magic, FileMagic[:]) {
		return nil, EventRef{}, fmt.Errorf("binlog: invalid file magic %x", magic)
	}

	headerBytes, err := src.ReadAt(4, BINLOG_EVENT_HEADER_LEN)
	if err != nil {
		return nil, EventRef{}, fmt.Errorf("binlog: reading FDE header: %w", err)
	}
	header, err := DecodeEventHeader(headerBytes)
	if err != nil {
		return nil, EventRef{}, err
	}
	if header.EventType != FORMAT_DESCRIPTION_EVENT {
		return nil, EventRef{}, &UnexpectedEventTypeError{Offset: 4, Got: header.EventType, Context: "expected FORMAT_DESCRIPTION_EVENT"}
	}

	bodyLen := int(header.EventSize) - BINLOG_EVENT_HEADER_LEN
	body, err := src.ReadAt(4+BINLOG_EVENT_HEADER_LEN, bodyLen)
	if err != nil {
		return nil, EventRef{}, fmt.Errorf("binlog: reading FDE body: %w", err)
	}

	fde, err := decodeFormatDescriptionBody(body)
	if err != nil {
		return nil, EventRef{}, err
	}

	ref := EventRef{Offset: 4, Size: header.EventSize}
	return fde, ref, nil
}

func decodeFormatDescriptionBody(body []byte) (*FormatDescriptionEvent, error) {
	const fixedLen = 2 + 50 + 4 + 1
	if len(body) < fixedLen {
		return nil, fmt.Errorf("binlog: FDE body too short: %d bytes", len(body))
	}

	fde := &FormatDescriptionEvent{}
	fde.BinlogVersion = uint16(body[0]) | uint16(body[1])<<8

	serverVersion := body[2:52]
	end := bytes.IndexByte(serverVersion, 0)
	if end < 0 {
		end = len(serverVersion)
	}
	fde.ServerVersion = string(serverVersion[:end])

	fde.CreateTime = uint32(body[52]) | uint32(body[53])<<8 | uint32(body[54])<<16 | uint32(body[55])<<24
	fde.HeaderLength = body[56]

	rest := body[fixedLen:]
	fde.ChecksumAlg = BINLOG_CHECKSUM_ALG_OFF
	if serverSupportsChecksum(fde.ServerVersion) {
		if len(rest) < BINLOG_CHECKSUM_ALG_LEN+BINLOG_CHECKSUM_LEN {
			return nil, fmt.Errorf("binlog: FDE body too short for checksum footer")
		}
		algByte := rest[len(rest)-BINLOG_CHECKSUM_ALG_LEN-BINLOG_CHECKSUM_LEN]
		alg := BinlogChecksumAlg(algByte)
		if alg >= BINLOG_CHECKSUM_ALG_END {
			return nil, fmt.Errorf("binlog: invalid checksum algorithm %d", algByte)
		}
		fde.ChecksumAlg = alg
		rest = rest[:len(rest)-BINLOG_CHECKSUM_ALG_LEN-BINLOG_CHECKSUM_LEN]
	}
	fde.PostHeaderLen = append([]byte(nil), rest...)

	return fde, nil
}

// serverSupportsChecksum reports whether serverVersion is >= 5.6.1, the
// floor at which MySQL started appending a checksum footer. Unparseable
// version strings (a corrupt or exotic fork tag) are treated as
// not-supporting rather than panicking the whole run.
func serverSupportsChecksum(serverVersion string) bool {
	v, err := version.NewVersion(serverVersion)
	if err != nil {
		return false
	}
	floor, err := version.NewVersion(checksumVersionFloor)
	if err != nil {
		return false
	}
	return v.GreaterThanOrEqual(floor)
}
