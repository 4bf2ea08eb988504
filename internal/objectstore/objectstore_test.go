package objectstore

import (
	"bytes"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	data := []byte(`{"project":"demo"}`)
	cid, err := s.Put(data)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(cid) != 64 {
		t.Fatalf("expected 64-char hex cid, got %q", cid)
	}

	got, err := s.Get(cid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: %q", got)
	}

	// Same content yields the same CID.
	cid2, err := s.Put(data)
	if err != nil {
		t.Fatalf("second put: %v", err)
	}
	if cid2 != cid {
		t.Fatalf("expected stable cid, got %q vs %q", cid, cid2)
	}

	if !s.Has(cid) {
		t.Fatal("expected Has to report stored blob")
	}
}

func TestGetMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	missing := "0000000000000000000000000000000000000000000000000000000000000000"
	if _, err := s.Get(missing); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRejectsMalformedCID(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, cid := range []string{"", "xyz", "../../etc/passwd", "ABCDEF"} {
		if _, err := s.Get(cid); err != ErrNotFound {
			t.Errorf("Get(%q): expected ErrNotFound, got %v", cid, err)
		}
		if s.Has(cid) {
			t.Errorf("Has(%q): expected false", cid)
		}
	}
}
