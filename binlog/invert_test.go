package binlog

import "testing"

func TestInvertWriteDeleteFlip(t *testing.T) {
	fde := testFDE(true)
	body := buildRowEventBody(7, 1, 1, []byte{0x00, 0x01})
	event := buildEvent(0, WRITE_ROWS_EVENT, body, true)
	tm := &TableMapEvent{ColumnCount: 1, ColumnTypes: []ColumnType{MYSQL_TYPE_TINY}}
	var scratch []byte

	inverted, skipped, err := InvertRowEvent(event, fde, tm, true, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("InvertRowEvent: %v", err)
	}
	if skipped {
		t.Fatal("WRITE_ROWS_EVENT should never be skipped")
	}
	if LogEventType(inverted[EVENT_TYPE_OFFSET]) != DELETE_ROWS_EVENT {
		t.Fatalf("event type = %v, want DELETE_ROWS_EVENT", LogEventType(inverted[EVENT_TYPE_OFFSET]))
	}
	if err := VerifyChecksum(inverted, 0); err != nil {
		t.Fatalf("checksum should be valid after inversion: %v", err)
	}

	// Inverting twice round-trips back to WRITE.
	inverted2, _, err := InvertRowEvent(inverted, fde, tm, true, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("second InvertRowEvent: %v", err)
	}
	if LogEventType(inverted2[EVENT_TYPE_OFFSET]) != WRITE_ROWS_EVENT {
		t.Fatalf("event type after double inversion = %v, want WRITE_ROWS_EVENT", LogEventType(inverted2[EVENT_TYPE_OFFSET]))
	}
}

func TestInvertDeleteFlipsToWrite(t *testing.T) {
	fde := testFDE(false)
	body := buildRowEventBody(3, 1, 1, []byte{0x00, 0x42})
	event := buildEvent(0, DELETE_ROWS_EVENT, body, false)
	tm := &TableMapEvent{ColumnCount: 1, ColumnTypes: []ColumnType{MYSQL_TYPE_TINY}}
	var scratch []byte

	inverted, _, err := InvertRowEvent(event, fde, tm, false, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("InvertRowEvent: %v", err)
	}
	if LogEventType(inverted[EVENT_TYPE_OFFSET]) != WRITE_ROWS_EVENT {
		t.Fatalf("event type = %v, want WRITE_ROWS_EVENT", LogEventType(inverted[EVENT_TYPE_OFFSET]))
	}
}

func TestInvertUpdateSwapsBeforeAfterImages(t *testing.T) {
	fde := testFDE(false)
	before := []byte{0x00, 0xAA} // null bitmap (1 col, not null) + TINY value
	after := []byte{0x00, 0xBB}
	rowData := append(append([]byte{}, before...), after...)
	body := buildRowEventBody(5, 1, 2, rowData)
	event := buildEvent(0, UPDATE_ROWS_EVENT, body, false)
	tm := &TableMapEvent{ColumnCount: 1, ColumnTypes: []ColumnType{MYSQL_TYPE_TINY}}
	var scratch []byte

	inverted, skipped, err := InvertRowEvent(event, fde, tm, false, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("InvertRowEvent: %v", err)
	}
	if skipped {
		t.Fatal("a clean single-column update should not be skipped")
	}

	// rows body starts after header(19) + table_id(6) + flags(2) +
	// var_header_len(2) + column_count(1) + 2 bitmaps(1 byte each) = 32
	const rowsBodyOffset = 19 + 6 + 2 + 2 + 1 + 1 + 1
	got := inverted[rowsBodyOffset : rowsBodyOffset+4]
	want := []byte{0x00, 0xBB, 0x00, 0xAA}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows body after inversion = %x, want %x", got, want)
		}
	}
}

func TestInvertUpdateColumnCountMismatchSkips(t *testing.T) {
	fde := testFDE(false)
	before := []byte{0x00, 0xAA}
	after := []byte{0x00, 0xBB}
	rowData := append(append([]byte{}, before...), after...)
	body := buildRowEventBody(5, 1, 2, rowData)
	event := buildEvent(0, UPDATE_ROWS_EVENT, body, false)
	// Table-map declares 2 columns; the row event only carries 1 -- mismatch.
	tm := &TableMapEvent{ColumnCount: 2, ColumnTypes: []ColumnType{MYSQL_TYPE_TINY, MYSQL_TYPE_TINY}}
	var scratch []byte

	_, skipped, err := InvertRowEvent(event, fde, tm, false, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("InvertRowEvent: %v", err)
	}
	if !skipped {
		t.Fatal("expected the event to be skipped on column-count mismatch")
	}
}

func TestInvertUpdateNullColumnContributesZeroBytes(t *testing.T) {
	fde := testFDE(false)
	// Column 0 is null in the before image (null bit set, zero bytes
	// contributed); column 1 carries a TINY value. The after image has
	// no nulls at all.
	before := []byte{0x01, 0xEE}      // null bitmap (col 0 null) + col 1's TINY value
	after := []byte{0x00, 0xCC, 0xDD} // null bitmap (no nulls) + two TINY values
	rowData := append(append([]byte{}, before...), after...)
	body := buildRowEventBody(9, 2, 2, rowData)
	event := buildEvent(0, UPDATE_ROWS_EVENT, body, false)
	tm := &TableMapEvent{ColumnCount: 2, ColumnTypes: []ColumnType{MYSQL_TYPE_TINY, MYSQL_TYPE_TINY}}
	var scratch []byte

	inverted, skipped, err := InvertRowEvent(event, fde, tm, false, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("InvertRowEvent: %v", err)
	}
	if skipped {
		t.Fatal("a null column should not cause the event to be skipped")
	}

	const rowsBodyOffset = 19 + 6 + 2 + 2 + 1 + 1 + 1
	got := inverted[rowsBodyOffset : rowsBodyOffset+5]
	want := []byte{0x00, 0xCC, 0xDD, 0x01, 0xEE}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows body after inversion = %x, want %x", got, want)
		}
	}
}

// lengthEncode builds a length-encoded integer of the given on-wire form,
// independent of whether that form is the minimal encoding for value --
// locateBeforeImageLength must follow whatever prefix byte it is given.
func lengthEncode(form string, value uint64) []byte {
	switch form {
	case "1-byte":
		return []byte{byte(value)}
	case "3-byte":
		return []byte{0xfc, byte(value), byte(value >> 8)}
	case "4-byte":
		return []byte{0xfd, byte(value), byte(value >> 8), byte(value >> 16)}
	case "9-byte":
		b := make([]byte, 9)
		b[0] = 0xfe
		for i := 0; i < 8; i++ {
			b[1+i] = byte(value >> (8 * uint(i)))
		}
		return b
	default:
		panic("unknown length-encoding form: " + form)
	}
}

// TestInvertUpdateVariableLengthColumn drives locateBeforeImageLength's
// length-encoded-integer fallback for a VARCHAR column, across every
// length-encoding form the wire format defines.
func TestInvertUpdateVariableLengthColumn(t *testing.T) {
	cases := []struct {
		form        string
		beforeValue uint64
		afterValue  uint64
	}{
		{"1-byte", 3, 2},
		{"3-byte", 5, 4},
		{"4-byte", 6, 3},
		{"9-byte", 4, 7},
	}

	for _, c := range cases {
		t.Run(c.form, func(t *testing.T) {
			fde := testFDE(false)
			beforePayload := make([]byte, c.beforeValue)
			for i := range beforePayload {
				beforePayload[i] = 'A'
			}
			afterPayload := make([]byte, c.afterValue)
			for i := range afterPayload {
				afterPayload[i] = 'B'
			}
			before := append([]byte{0x00}, lengthEncode(c.form, c.beforeValue)...)
			before = append(before, beforePayload...)
			after := append([]byte{0x00}, lengthEncode(c.form, c.afterValue)...)
			after = append(after, afterPayload...)
			rowData := append(append([]byte{}, before...), after...)

			body := buildRowEventBody(11, 1, 2, rowData)
			event := buildEvent(0, UPDATE_ROWS_EVENT, body, false)
			tm := &TableMapEvent{ColumnCount: 1, ColumnTypes: []ColumnType{MYSQL_TYPE_VARCHAR}}
			var scratch []byte

			inverted, skipped, err := InvertRowEvent(event, fde, tm, false, RejectPartial, &scratch)
			if err != nil {
				t.Fatalf("InvertRowEvent: %v", err)
			}
			if skipped {
				t.Fatal("a clean variable-length column update should not be skipped")
			}

			const rowsBodyOffset = 19 + 6 + 2 + 2 + 1 + 1 + 1
			want := append(append([]byte{}, after...), before...)
			got := inverted[rowsBodyOffset : rowsBodyOffset+len(want)]
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("rows body after inversion = %x, want %x", got, want)
				}
			}
		})
	}
}

func TestInvertUpdatePartialBitmapRejected(t *testing.T) {
	fde := testFDE(false)
	rowsHeader := buildRowEventBody(5, 1, 0, nil) // table_id+flags+var_header_len+column_count, no bitmaps yet
	partialBitmap := []byte{0x00}                 // not all-1: column absent
	fullBitmap := []byte{0xff}
	rowData := []byte{0x00, 0xAA, 0x00, 0xBB}
	body := append(append(append([]byte{}, rowsHeader...), partialBitmap...), fullBitmap...)
	body = append(body, rowData...)
	event := buildEvent(0, UPDATE_ROWS_EVENT, body, false)
	tm := &TableMapEvent{ColumnCount: 1, ColumnTypes: []ColumnType{MYSQL_TYPE_TINY}}
	var scratch []byte

	_, skipped, err := InvertRowEvent(event, fde, tm, false, RejectPartial, &scratch)
	if err != nil {
		t.Fatalf("InvertRowEvent: %v", err)
	}
	if !skipped {
		t.Fatal("expected RejectPartial to skip a non-all-1 columns-present bitmap")
	}
}
