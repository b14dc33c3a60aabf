//
// query.go
// Copyright (C) 2019 Jianlong Chen <jianlong99@gmail.com>
//

package binlog

import (
	"encoding/binary"
	"fmt"
)

// QueryEventPostHeader is the fixed 13-byte post-header every QUERY_EVENT
// carries.
type QueryEventPostHeader struct {
	SlaveProxyId     uint32
	ExecutionTime    uint32
	SchemaLength     uint8
	ErrorCode        uint16
	StatusVarsLength uint16
}

func decodeQueryEventPostHeader(body []byte) (*QueryEventPostHeader, error) {
	if len(body) < QUERY_EVENT_POST_HEADER_LEN {
		return nil, fmt.Errorf("binlog: query event post-header too short: %d bytes", len(body))
	}
	return &QueryEventPostHeader{
		SlaveProxyId:     binary.LittleEndian.Uint32(body[0:4]),
		ExecutionTime:    binary.LittleEndian.Uint32(body[4:8]),
		SchemaLength:     body[8],
		ErrorCode:        binary.LittleEndian.Uint16(body[9:11]),
		StatusVarsLength: binary.LittleEndian.Uint16(body[11:13]),
	}, nil
}

// queryText extracts the query string that follows a QUERY_EVENT's
// status variables and schema name: status_vars, then schema (NUL
// terminated), then the query itself runs to the end of the body.
func queryText(body []byte, post *QueryEventPostHeader) ([]byte, error) {
	pos := QUERY_EVENT_POST_HEADER_LEN
	pos += int(post.StatusVarsLength)
	pos += int(post.SchemaLength)
	pos++ // schema's trailing NUL
	if pos > len(body) {
		return nil, fmt.Errorf("binlog: query event body too short for status_vars+schema")
	}
	return body[pos:], nil
}

// isBeginQuery reports whether a QUERY_EVENT's body carries the literal
// 5-byte text "BEGIN", the marker this tool uses to recognize the start
// of a row-based transaction.
func isBeginQuery(body []byte) (bool, error) {
	post, err := decodeQueryEventPostHeader(body)
	if err != nil {
		return false, err
	}
	query, err := queryText(body, post)
	if err != nil {
		return false, err
	}
	return len(query) == BeginQueryLen && string(query) == "BEGIN", nil
}
