package binlog

import "testing"

func TestRewriteAndVerifyChecksum(t *testing.T) {
	event := buildBeginEvent(0, true)
	if err := VerifyChecksum(event, 0); err != nil {
		t.Fatalf("freshly built event should checksum clean: %v", err)
	}

	event[10] ^= 0xff // corrupt a header byte covered by the checksum without touching the checksum
	if err := VerifyChecksum(event, 0); err == nil {
		t.Fatal("expected a checksum mismatch after corrupting the body")
	} else if badErr, ok := err.(*BadChecksumError); !ok {
		t.Fatalf("expected *BadChecksumError, got %T", err)
	} else if badErr.Offset != 0 {
		t.Fatalf("unexpected offset in error: %+v", badErr)
	}

	RewriteChecksum(event)
	if err := VerifyChecksum(event, 0); err != nil {
		t.Fatalf("expected checksum to verify after RewriteChecksum: %v", err)
	}
}
