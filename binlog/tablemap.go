//
// tablemap.go
//
// Table-map event decoder: binds a table id to its column count and
// per-column type codes, the minimum information the inverter needs
// to locate an UPDATE row's before/after image boundary.

package binlog

import (
	"fmt"
)

// ColumnType is a MySQL internal column type code, from
// libbinlogevents/include/rows_event.h / field_types.h.
type ColumnType uint8

const (
	MYSQL_TYPE_DECIMAL     ColumnType = 0
	MYSQL_TYPE_TINY        ColumnType = 1
	MYSQL_TYPE_SHORT       ColumnType = 2
	MYSQL_TYPE_LONG        ColumnType = 3
	MYSQL_TYPE_FLOAT       ColumnType = 4
	MYSQL_TYPE_DOUBLE      ColumnType = 5
	MYSQL_TYPE_NULL        ColumnType = 6
	MYSQL_TYPE_TIMESTAMP   ColumnType = 7
	MYSQL_TYPE_LONGLONG    ColumnType = 8
	MYSQL_TYPE_INT24       ColumnType = 9
	MYSQL_TYPE_DATE        ColumnType = 10
	MYSQL_TYPE_TIME        ColumnType = 11
	MYSQL_TYPE_DATETIME    ColumnType = 12
	MYSQL_TYPE_YEAR        ColumnType = 13
	MYSQL_TYPE_NEWDATE     ColumnType = 14
	MYSQL_TYPE_VARCHAR     ColumnType = 15
	MYSQL_TYPE_BIT         ColumnType = 16
	MYSQL_TYPE_TIMESTAMP2  ColumnType = 17
	MYSQL_TYPE_DATETIME2   ColumnType = 18
	MYSQL_TYPE_TIME2       ColumnType = 19
	MYSQL_TYPE_JSON        ColumnType = 245
	MYSQL_TYPE_NEWDECIMAL  ColumnType = 246
	MYSQL_TYPE_ENUM        ColumnType = 247
	MYSQL_TYPE_SET         ColumnType = 248
	MYSQL_TYPE_TINY_BLOB   ColumnType = 249
	MYSQL_TYPE_MEDIUM_BLOB ColumnType = 250
	MYSQL_TYPE_LONG_BLOB   ColumnType = 251
	MYSQL_TYPE_BLOB        ColumnType = 252
	MYSQL_TYPE_VAR_STRING  ColumnType = 253
	MYSQL_TYPE_STRING      ColumnType = 254
	MYSQL_TYPE_GEOMETRY    ColumnType = 255
)

// FixedSize returns the on-wire size in bytes of a column of type t, or
// (0, false) if t is variable-length and must be read via a
// length-encoded integer prefix instead. This table matches the one the
// row-event inverter walks to find the before-image boundary.
func (t ColumnType) FixedSize() (int, bool) {
	switch t {
	case MYSQL_TYPE_TINY:
		return 1, true
	case MYSQL_TYPE_SHORT, MYSQL_TYPE_YEAR:
		return 2, true
	case MYSQL_TYPE_FLOAT, MYSQL_TYPE_LONG, MYSQL_TYPE_INT24:
		return 4, true
	case MYSQL_TYPE_DOUBLE, MYSQL_TYPE_LONGLONG:
		return 8, true
	default:
		return 0, false
	}
}

// TableMapEvent records a table id's column layout, enough to walk an
// UPDATE row event's before image.
type TableMapEvent struct {
	TableID     uint64
	Flags       uint16
	Schema      string
	Table       string
	ColumnCount uint64
	ColumnTypes []ColumnType
	ColumnMeta  []uint16
}

// DecodeTableMapEvent decodes a TABLE_MAP_EVENT's body. fde supplies the
// table-id field width (6 bytes on every server new enough to emit row
// events with checksums; 4 on very old ones) via its post-header-length
// table.
func DecodeTableMapEvent(body []byte, fde *FormatDescriptionEvent) (*TableMapEvent, error) {
	idLen := 6
	if fde.PostHeaderLength(TABLE_MAP_EVENT) == 6 {
		idLen = 4
	}
	if len(body) < idLen+2 {
		return nil, fmt.Errorf("binlog: table-map event too short for id+flags")
	}

	tm := &TableMapEvent{
		TableID: FixedLengthInt(body[:idLen]),
		Flags:   uint16(body[idLen]) | uint16(body[idLen+1])<<8,
	}
	pos := idLen + 2

	schema, n, err := readLengthPrefixedName(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("binlog: table-map schema name: %w", err)
	}
	tm.Schema = schema
	pos += n

	table, n, err := readLengthPrefixedName(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("binlog: table-map table name: %w", err)
	}
	tm.Table = table
	pos += n

	columnCount, n, err := ReadLengthEncodedInt(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("binlog: table-map column count: %w", err)
	}
	tm.ColumnCount = columnCount
	pos += n

	if pos+int(columnCount) > len(body) {
		return nil, fmt.Errorf("binlog: table-map column-type array truncated")
	}
	tm.ColumnTypes = make([]ColumnType, columnCount)
	for i := range tm.ColumnTypes {
		tm.ColumnTypes[i] = ColumnType(body[pos+i])
	}
	pos += int(columnCount)

	metaLen, n, err := ReadLengthEncodedInt(body[pos:])
	if err != nil {
		return nil, fmt.Errorf("binlog: table-map column-meta length: %w", err)
	}
	pos += n
	if pos+int(metaLen) > len(body) {
		return nil, fmt.Errorf("binlog: table-map column-meta block truncated")
	}
	meta := body[pos : pos+int(metaLen)]

	columnMeta, err := decodeColumnMeta(tm.ColumnTypes, meta)
	if err != nil {
		return nil, err
	}
	tm.ColumnMeta = columnMeta

	return tm, nil
}

func readLengthPrefixedName(b []byte) (string, int, error) {
	if len(b) == 0 {
		return "", 0, fmt.Errorf("empty buffer")
	}
	l := int(b[0])
	if 1+l+1 > len(b) {
		return "", 0, fmt.Errorf("truncated name")
	}
	return string(b[1 : 1+l]), 1 + l + 1, nil // +1 for the trailing NUL
}

// decodeColumnMeta walks the table-map's per-column metadata block. Only
// the byte lengths matter here — the decoded values are carried for the
// inspection tool's dump and for future partial-column-presence support,
// never read by the inverter's before-image walk, which uses
// ColumnType.FixedSize and the length-encoded fallback instead.
func decodeColumnMeta(types []ColumnType, meta []byte) ([]uint16, error) {
	out := make([]uint16, len(types))
	pos := 0
	for i, t := range types {
		switch t {
		case MYSQL_TYPE_STRING, MYSQL_TYPE_ENUM, MYSQL_TYPE_SET:
			if pos+2 > len(meta) {
				return nil, fmt.Errorf("binlog: table-map meta truncated at column %d (string/enum/set)", i)
			}
			out[i] = uint16(meta[pos])<<8 | uint16(meta[pos+1])
			pos += 2
		case MYSQL_TYPE_VARCHAR, MYSQL_TYPE_VAR_STRING, MYSQL_TYPE_DECIMAL:
			if pos+2 > len(meta) {
				return nil, fmt.Errorf("binlog: table-map meta truncated at column %d (varchar)", i)
			}
			out[i] = uint16(meta[pos]) | uint16(meta[pos+1])<<8
			pos += 2
		case MYSQL_TYPE_BIT:
			if pos+2 > len(meta) {
				return nil, fmt.Errorf("binlog: table-map meta truncated at column %d (bit)", i)
			}
			bits := uint16(meta[pos])
			bytesN := uint16(meta[pos+1])
			out[i] = bytesN<<8 | bits
			pos += 2
		case MYSQL_TYPE_BLOB, MYSQL_TYPE_GEOMETRY, MYSQL_TYPE_DOUBLE, MYSQL_TYPE_FLOAT, MYSQL_TYPE_JSON:
			if pos+1 > len(meta) {
				return nil, fmt.Errorf("binlog: table-map meta truncated at column %d (blob/geometry/double/float/json)", i)
			}
			out[i] = uint16(meta[pos])
			pos++
		case MYSQL_TYPE_NEWDECIMAL:
			if pos+2 > len(meta) {
				return nil, fmt.Errorf("binlog: table-map meta truncated at column %d (newdecimal)", i)
			}
			precision := uint16(meta[pos])
			decimals := uint16(meta[pos+1])
			out[i] = precision<<8 | decimals
			pos += 2
		case MYSQL_TYPE_TIME2, MYSQL_TYPE_DATETIME2, MYSQL_TYPE_TIMESTAMP2:
			if pos+1 > len(meta) {
				return nil, fmt.Errorf("binlog: table-map meta truncated at column %d (time2/datetime2/timestamp2)", i)
			}
			out[i] = uint16(meta[pos])
			pos++
		default:
			// Fixed-width numeric/temporal types and everything else
			// carry no metadata byte.
		}
	}
	return out, nil
}
