package binlog

import (
	"testing"
)

func buildWriteRowEvent(offset int64, tableID uint64, checksum bool) []byte {
	body := buildRowEventBody(tableID, 1, 1, []byte{0x00, 0x07})
	return buildEvent(offset, WRITE_ROWS_EVENT, body, checksum)
}

func newScannerOverBytes(t *testing.T, data []byte) *Scanner {
	t.Helper()
	f := tempFileWithBytes(t, data)
	t.Cleanup(func() { f.Close() })
	fde := testFDE(false)
	return NewScanner(NewSource(f), fde, false, 0, 0, nil)
}

func TestScanSingleTransaction(t *testing.T) {
	var data []byte
	begin := buildBeginEvent(0, false)
	data = append(data, begin...)

	tm := buildTableMapEventBytes(int64(len(data)), 1, "db", "t", []ColumnType{MYSQL_TYPE_TINY}, false)
	data = append(data, tm...)

	row := buildWriteRowEvent(int64(len(data)), 1, false)
	data = append(data, row...)

	xid := buildXidEvent(int64(len(data)), 42, false)
	data = append(data, xid...)

	s := newScannerOverBytes(t, data)
	index, err := s.Scan(0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(index) != 1 {
		t.Fatalf("len(index) = %d, want 1", len(index))
	}
	if len(index[0].Rows) != 1 {
		t.Fatalf("len(index[0].Rows) = %d, want 1", len(index[0].Rows))
	}
	if index[0].Begin.Offset != 0 {
		t.Fatalf("Begin.Offset = %d, want 0", index[0].Begin.Offset)
	}
	if index[0].Xid.Offset != int64(len(begin)+len(tm)+len(row)) {
		t.Fatalf("Xid.Offset = %d, want %d", index[0].Xid.Offset, len(begin)+len(tm)+len(row))
	}
}

func TestScanMultipleTransactions(t *testing.T) {
	var data []byte
	for i := 0; i < 3; i++ {
		data = append(data, buildBeginEvent(int64(len(data)), false)...)
		data = append(data, buildTableMapEventBytes(int64(len(data)), uint64(i+1), "db", "t", []ColumnType{MYSQL_TYPE_TINY}, false)...)
		data = append(data, buildWriteRowEvent(int64(len(data)), uint64(i+1), false)...)
		data = append(data, buildXidEvent(int64(len(data)), uint64(i), false)...)
	}

	s := newScannerOverBytes(t, data)
	index, err := s.Scan(0)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("len(index) = %d, want 3", len(index))
	}
	for i, txn := range index {
		if len(txn.Rows) != 1 {
			t.Fatalf("transaction %d: len(Rows) = %d, want 1", i, len(txn.Rows))
		}
	}
}

func TestScanCorruptPosition(t *testing.T) {
	begin := buildBeginEvent(0, false)
	// Flip a byte of log_pos so it no longer matches offset+size.
	begin[13] ^= 0xff

	s := newScannerOverBytes(t, begin)
	_, err := s.Scan(0)
	if err == nil {
		t.Fatal("expected an error for a corrupted log_pos")
	}
	if _, ok := err.(*CorruptEventError); !ok {
		t.Fatalf("expected *CorruptEventError, got %T (%v)", err, err)
	}
}

func TestScanUnexpectedEventInsteadOfBegin(t *testing.T) {
	// A lone XID_EVENT where a BEGIN was expected.
	data := buildXidEvent(0, 1, false)

	s := newScannerOverBytes(t, data)
	_, err := s.Scan(0)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*UnexpectedEventTypeError); !ok {
		t.Fatalf("expected *UnexpectedEventTypeError, got %T (%v)", err, err)
	}
}

func TestScanTransactionWithNoRowsErrors(t *testing.T) {
	var data []byte
	data = append(data, buildBeginEvent(0, false)...)
	data = append(data, buildXidEvent(int64(len(data)), 1, false)...)

	s := newScannerOverBytes(t, data)
	_, err := s.Scan(0)
	if err == nil {
		t.Fatal("expected an error for a transaction with zero row events")
	}
	if _, ok := err.(*UnexpectedEventTypeError); !ok {
		t.Fatalf("expected *UnexpectedEventTypeError, got %T (%v)", err, err)
	}
}

func TestScanOversizedTableMapEvent(t *testing.T) {
	var data []byte
	data = append(data, buildBeginEvent(0, false)...)
	data = append(data, buildTableMapEventBytes(int64(len(data)), 1, "db", "t", []ColumnType{MYSQL_TYPE_TINY}, false)...)

	s := newScannerOverBytes(t, data)
	s.MaxTableMapSize = 1 // smaller than any real table-map event

	_, err := s.Scan(0)
	if err == nil {
		t.Fatal("expected an error for an oversized table-map event")
	}
	if _, ok := err.(*EventTooBigError); !ok {
		t.Fatalf("expected *EventTooBigError, got %T (%v)", err, err)
	}
}
