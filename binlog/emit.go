//
// emit.go
//
// Reverse emitter writes the compensating log — magic, a verbatim
// format-description event, then every scanned transaction in reverse
// commit order, each transaction's table-map/row pairs also reversed,
// rows inverted via InvertRowEvent.

package binlog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Emitter writes a compensating log for a scanned Index.
type Emitter struct {
	Src             *Source
	FDE             *FormatDescriptionEvent
	ChecksumEnabled bool
	Policy          PartialColumnPolicy
	// RewriteLogPos, when true, renumbers every emitted event's log_pos
	// to match its new position in the output file and recomputes its
	// checksum accordingly. Off by default, matching the original
	// tool's behavior: the output's log_pos values still describe
	// offsets in the *input* file.
	RewriteLogPos bool
	// MaxEventSize bounds a single row event's declared data_written
	// field, the same cap the scanner enforces while building the index.
	MaxEventSize uint32
	Log          *logrus.Logger

	scratch []byte
}

// NewEmitter builds an Emitter, defaulting Log to the standard logger and
// MaxEventSize to DefaultMaxEventSize when unset.
func NewEmitter(src *Source, fde *FormatDescriptionEvent, checksumEnabled bool, policy PartialColumnPolicy, rewriteLogPos bool, log *logrus.Logger) *Emitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{
		Src:             src,
		FDE:             fde,
		ChecksumEnabled: checksumEnabled,
		Policy:          policy,
		RewriteLogPos:   rewriteLogPos,
		MaxEventSize:    DefaultMaxEventSize,
		Log:             log,
	}
}

// Emit writes the full compensating log to sink: magic, the verbatim
// FDE, then each transaction in index in reverse order.
func (e *Emitter) Emit(sink *Sink, fdeRef EventRef, index Index) error {
	if err := sink.Write(FileMagic[:]); err != nil {
		return err
	}
	if err := e.copyVerbatim(sink, fdeRef); err != nil {
		return fmt.Errorf("binlog: emitting FDE: %w", err)
	}

	rowEventsSkipped := 0
	for i := len(index) - 1; i >= 0; i-- {
		txn := index[i]

		if err := e.copyVerbatim(sink, txn.Begin); err != nil {
			return fmt.Errorf("binlog: emitting BEGIN at %d: %w", txn.Begin.Offset, err)
		}

		for j := len(txn.Rows) - 1; j >= 0; j-- {
			tmRef := txn.Rows[j]
			tmBytes, err := e.Src.ReadAt(tmRef.Offset, int(tmRef.Size))
			if err != nil {
				return fmt.Errorf("binlog: reading table-map at %d: %w", tmRef.Offset, err)
			}
			tableMap, err := DecodeTableMapEvent(tmBytes[BINLOG_EVENT_HEADER_LEN:], e.FDE)
			if err != nil {
				return fmt.Errorf("binlog: decoding table-map at %d: %w", tmRef.Offset, err)
			}

			if err := e.writeVerbatim(sink, tmBytes); err != nil {
				return fmt.Errorf("binlog: emitting table-map at %d: %w", tmRef.Offset, err)
			}

			rowOffset := tmRef.End()
			maxEventSize := e.MaxEventSize
			if maxEventSize == 0 {
				maxEventSize = DefaultMaxEventSize
			}
			rowBytes, _, err := ReadFullEvent(e.Src, rowOffset, maxEventSize)
			if err != nil {
				return fmt.Errorf("binlog: reading row event at %d: %w", rowOffset, err)
			}

			inverted, skipped, err := InvertRowEvent(rowBytes, e.FDE, tableMap, e.ChecksumEnabled, e.Policy, &e.scratch)
			if err != nil {
				return fmt.Errorf("binlog: inverting row event at %d: %w", rowOffset, err)
			}
			if skipped {
				rowEventsSkipped++
				e.Log.WithFields(logrus.Fields{
					"offset": rowOffset,
					"table":  tableMap.Schema + "." + tableMap.Table,
				}).Warn("row event column count or presence bitmap did not match table-map, emitted unmodified")
			}

			if err := e.writeVerbatim(sink, inverted); err != nil {
				return fmt.Errorf("binlog: emitting row event at %d: %w", rowOffset, err)
			}
		}

		if err := e.copyVerbatim(sink, txn.Xid); err != nil {
			return fmt.Errorf("binlog: emitting XID at %d: %w", txn.Xid.Offset, err)
		}
	}

	if rowEventsSkipped > 0 {
		e.Log.WithField("count", rowEventsSkipped).Warn("some row events could not be safely inverted")
	}
	return nil
}

// copyVerbatim reads ref's bytes from the input and writes them
// unchanged, applying log_pos rewriting if enabled.
func (e *Emitter) copyVerbatim(sink *Sink, ref EventRef) error {
	data, err := e.Src.ReadAt(ref.Offset, int(ref.Size))
	if err != nil {
		return err
	}
	return e.writeVerbatim(sink, data)
}

// writeVerbatim writes an already-loaded event's bytes, rewriting its
// log_pos and checksum first when RewriteLogPos is enabled.
func (e *Emitter) writeVerbatim(sink *Sink, data []byte) error {
	if e.RewriteLogPos {
		header, err := DecodeEventHeader(data[:BINLOG_EVENT_HEADER_LEN])
		if err != nil {
			return err
		}
		header.LogPos = uint32(sink.Written()) + uint32(len(data))
		header.EncodeInto(data[:BINLOG_EVENT_HEADER_LEN])
		if e.ChecksumEnabled {
			RewriteChecksum(data)
		}
	}
	return sink.Write(data)
}
