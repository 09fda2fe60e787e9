package cancelreader

import (
	"context"
	"strings"
	"testing"
)

func TestReadCapsAtChunkSize(t *testing.T) {
	big := strings.Repeat("x", ChunkSize*2)
	r := New(context.Background(), strings.NewReader(big))
	buf := make([]byte, ChunkSize*2)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n > ChunkSize {
		t.Fatalf("Read() returned %d bytes, want <= %d", n, ChunkSize)
	}
}

func TestReadRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(ctx, strings.NewReader("hello"))
	buf := make([]byte, 16)
	if _, err := r.Read(buf); err != context.Canceled {
		t.Fatalf("Read() err = %v, want context.Canceled", err)
	}
}
