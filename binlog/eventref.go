package binlog

// EventRef is a pointer into the input file identifying one complete
// event, header through trailing checksum (if any). The scanner never
// retains event payloads, only these offset/size pairs — the transaction
// index is O(events), not O(bytes).
type EventRef struct {
	Offset int64
	Size   uint32
}

// End returns the offset immediately after the event, i.e. the value its
// header's log_pos field must carry.
func (r EventRef) End() int64 {
	return r.Offset + int64(r.Size)
}

// TxnRef is one scanned transaction: a BEGIN, an ordered sequence of
// table-map events (each implicitly followed in the input by exactly one
// row event at Offset+Size), and a terminal XID.
type TxnRef struct {
	Begin EventRef
	Rows  []EventRef
	Xid   EventRef
}

// Index is the ordered (commit-order) sequence of scanned transactions.
type Index []TxnRef
