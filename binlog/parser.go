//
// parser.go
//
// A sequential, buffered event reader used only by the inspection tool
// (cmd/binlog-dump), with a ReadEvent/SkipEvent shape; unlike the
// scanner it reads the file front to back rather than by offset. Built
// on this package's EventHeader and FormatDescriptionEvent types.

package binlog

import (
	"errors"
	"os"
)

// Parser walks a binlog file sequentially, one event at a time. Unlike
// Scanner (which only records offsets), Parser decodes every event into
// a DumpEvent for display.
type Parser struct {
	file   *os.File
	buf    []byte
	fde    *FormatDescriptionEvent
	offset int64
}

// NewParser opens a sequential reader over file, validating the 4-byte
// magic at its start.
func NewParser(file *os.File) (*Parser, error) {
	magic := make([]byte, 4)
	n, err := file.Read(magic)
	if err != nil {
		return nil, err
	}
	if n != 4 || magic[0] != FileMagic[0] || magic[1] != FileMagic[1] || magic[2] != FileMagic[2] || magic[3] != FileMagic[3] {
		return nil, errors.New("binlog: invalid file magic")
	}
	return &Parser{file: file, buf: make([]byte, 1024), offset: 4}, nil
}

func (p *Parser) readHeader() (*EventHeader, error) {
	headerBuf := p.buf[:BINLOG_EVENT_HEADER_LEN]
	n, err := p.file.Read(headerBuf)
	if err != nil {
		return nil, err
	}
	if n != BINLOG_EVENT_HEADER_LEN {
		return nil, errors.New("binlog: short read on event header")
	}
	return DecodeEventHeader(headerBuf)
}

func (p *Parser) readBody(size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if uint32(cap(p.buf)) < size {
		p.buf = make([]byte, size)
	} else {
		p.buf = p.buf[:size]
	}
	n, err := p.file.Read(p.buf)
	if err != nil {
		return nil, err
	}
	if uint32(n) != size {
		return nil, errors.New("binlog: short read on event body")
	}
	return p.buf, nil
}

// ReadEvent decodes and returns the next event. The first call always
// returns the format-description event and caches it for every
// subsequent call.
func (p *Parser) ReadEvent() (DumpEvent, error) {
	header, err := p.readHeader()
	if err != nil {
		return nil, err
	}
	body, err := p.readBody(header.EventSize - BINLOG_EVENT_HEADER_LEN)
	if err != nil {
		return nil, err
	}
	offset := p.offset
	p.offset = int64(header.LogPos)

	if p.fde == nil {
		fde, err := decodeFormatDescriptionBody(body)
		if err != nil {
			return nil, err
		}
		p.fde = fde
		return &FormatDescriptionDumpEvent{header: header, fde: fde}, nil
	}
	return NewDumpEvent(header, body, p.fde, offset)
}

// SkipEvent advances past one event without decoding its body.
func (p *Parser) SkipEvent() error {
	if p.fde == nil {
		_, err := p.ReadEvent()
		return err
	}
	header, err := p.readHeader()
	if err != nil {
		return err
	}
	size := int64(header.EventSize - BINLOG_EVENT_HEADER_LEN)
	if size != 0 {
		if _, err := p.file.Seek(size, 1); err != nil {
			return err
		}
	}
	p.offset = int64(header.LogPos)
	return nil
}
