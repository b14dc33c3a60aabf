package binlog

import (
	"encoding/binary"
	"hash/crc32"
)

// ComputeCRC32 computes the IEEE/zlib-compatible CRC32 over event[:len(event)-4],
// the same polynomial MySQL uses for its binlog event checksum footer.
// hash/crc32 is the standard library's implementation of exactly this
// polynomial (crc32.IEEE) — no third-party CRC package in the retrieval
// pack offers anything beyond what ships in the runtime, so this one
// component is stdlib by necessity rather than by default; see DESIGN.md.
func ComputeCRC32(event []byte) uint32 {
	return crc32.ChecksumIEEE(event[:len(event)-BINLOG_CHECKSUM_LEN])
}

// RewriteChecksum recomputes and overwrites the trailing 4-byte CRC32 of
// event in place. Called whenever an event's body is modified before
// re-emission (C6, C7), and whenever log_pos is rewritten.
func RewriteChecksum(event []byte) {
	checksum := ComputeCRC32(event)
	binary.LittleEndian.PutUint32(event[len(event)-BINLOG_CHECKSUM_LEN:], checksum)
}

// VerifyChecksum checks that event's trailing 4 bytes equal the CRC32 of
// the rest of the event. Input checksum verification is opt-in
// (RunConfig.VerifyInputChecksums) — the engine trusts its input by
// default.
func VerifyChecksum(event []byte, offset int64) error {
	want := binary.LittleEndian.Uint32(event[len(event)-BINLOG_CHECKSUM_LEN:])
	got := ComputeCRC32(event)
	if want != got {
		return &BadChecksumError{Offset: offset, Want: want, Got: got}
	}
	return nil
}
