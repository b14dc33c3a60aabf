package binlog

import (
	"encoding/binary"
)

// Test fixtures build raw binlog bytes by hand, the same way the
// teacher's and the pack's fixture-driven tests construct wire data
// with encoding/binary rather than relying on a running server.

func putHeader(buf []byte, ts uint32, eventType LogEventType, serverID, size, logPos uint32, flags uint16) {
	binary.LittleEndian.PutUint32(buf[0:4], ts)
	buf[4] = byte(eventType)
	binary.LittleEndian.PutUint32(buf[5:9], serverID)
	binary.LittleEndian.PutUint32(buf[9:13], size)
	binary.LittleEndian.PutUint32(buf[13:17], logPos)
	binary.LittleEndian.PutUint16(buf[17:19], flags)
}

// buildEvent assembles one full event: header + body, optionally
// followed by a freshly computed CRC32 checksum. offset is the event's
// starting position in the file, used to compute a correct log_pos.
func buildEvent(offset int64, eventType LogEventType, body []byte, checksum bool) []byte {
	size := BINLOG_EVENT_HEADER_LEN + len(body)
	if checksum {
		size += BINLOG_CHECKSUM_LEN
	}
	buf := make([]byte, size)
	putHeader(buf, 0, eventType, 1, uint32(size), uint32(offset)+uint32(size), 0)
	copy(buf[BINLOG_EVENT_HEADER_LEN:], body)
	if checksum {
		RewriteChecksum(buf)
	}
	return buf
}

// buildBeginEvent builds a QUERY_EVENT whose query text is "BEGIN".
func buildBeginEvent(offset int64, checksum bool) []byte {
	post := make([]byte, QUERY_EVENT_POST_HEADER_LEN)
	// slave_proxy_id, execution_time, schema_length=0, error_code, status_vars_length=0
	body := append(post, 0) // trailing NUL terminating the (empty) schema name
	body = append(body, []byte("BEGIN")...)
	return buildEvent(offset, QUERY_EVENT, body, checksum)
}

// buildXidEvent builds an XID_EVENT carrying the given transaction id.
func buildXidEvent(offset int64, xid uint64, checksum bool) []byte {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint64(body, xid)
	return buildEvent(offset, XID_EVENT, body, checksum)
}

// buildTableMapEventBytes builds a TABLE_MAP_EVENT naming schema.table,
// with the given column types. VARCHAR columns get a 2-byte max-length
// metadata entry; every other type used in tests here carries none.
func buildTableMapEventBytes(offset int64, tableID uint64, schema, table string, colTypes []ColumnType, checksum bool) []byte {
	var body []byte
	idBuf := make([]byte, 6)
	for i := 0; i < 6; i++ {
		idBuf[i] = byte(tableID >> (8 * uint(i)))
	}
	body = append(body, idBuf...)
	body = append(body, 0, 0) // flags
	body = append(body, byte(len(schema)))
	body = append(body, []byte(schema)...)
	body = append(body, 0)
	body = append(body, byte(len(table)))
	body = append(body, []byte(table)...)
	body = append(body, 0)
	body = append(body, byte(len(colTypes))) // column count, length-encoded (<0xfb form)
	for _, t := range colTypes {
		body = append(body, byte(t))
	}
	var meta []byte
	for _, t := range colTypes {
		if t == MYSQL_TYPE_VARCHAR {
			meta = append(meta, 0xff, 0x00) // max length 255, little-endian
		}
	}
	body = append(body, byte(len(meta))) // column-meta length, length-encoded (<0xfb form)
	body = append(body, meta...)
	return buildEvent(offset, TABLE_MAP_EVENT, body, checksum)
}

// testFDE returns a minimal format-description event sufficient to
// drive the row-event inverter: a post-header-length table indexed by
// EventType-1, long enough to cover TABLE_MAP_EVENT and the row events.
func testFDE(checksumEnabled bool) *FormatDescriptionEvent {
	postHeaderLen := make([]byte, PARTIAL_UPDATE_ROWS_EVENT)
	postHeaderLen[TABLE_MAP_EVENT-1] = 8
	postHeaderLen[WRITE_ROWS_EVENT-1] = ROWS_HEADER_LEN_V2
	postHeaderLen[UPDATE_ROWS_EVENT-1] = ROWS_HEADER_LEN_V2
	postHeaderLen[DELETE_ROWS_EVENT-1] = ROWS_HEADER_LEN_V2
	postHeaderLen[QUERY_EVENT-1] = QUERY_EVENT_POST_HEADER_LEN
	alg := BINLOG_CHECKSUM_ALG_OFF
	if checksumEnabled {
		alg = BINLOG_CHECKSUM_ALG_CRC32
	}
	return &FormatDescriptionEvent{
		BinlogVersion: 4,
		ServerVersion: "8.0.23",
		HeaderLength:  BINLOG_EVENT_HEADER_LEN,
		PostHeaderLen: postHeaderLen,
		ChecksumAlg:   alg,
	}
}

// buildRowEventBody assembles the body of a v2 WRITE/UPDATE/DELETE_ROWS_EVENT:
// table_id(6) + flags(2) + var_header_len(2)=2 (no extra row info) +
// column count + one all-present bitmap (numBitmaps=1) or two
// (numBitmaps=2, for UPDATE's before/after images) + rowData.
func buildRowEventBody(tableID uint64, numCol int, numBitmaps int, rowData []byte) []byte {
	var b []byte
	idBuf := make([]byte, 6)
	for i := 0; i < 6; i++ {
		idBuf[i] = byte(tableID >> (8 * uint(i)))
	}
	b = append(b, idBuf...)
	b = append(b, 0, 0) // flags
	b = append(b, 2, 0) // var_header_len = 2 (itself only, no extra data)
	b = append(b, byte(numCol))
	for i := 0; i < numBitmaps; i++ {
		b = append(b, allOnesBitmap(numCol)...)
	}
	b = append(b, rowData...)
	return b
}

func allOnesBitmap(numCol int) []byte {
	n := (numCol + 7) / 8
	b := make([]byte, n)
	for i := range b {
		b[i] = 0xff
	}
	return b
}
