package textsplit

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunks := Split("short text", 100, 20)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("Split = %v, want the text unchanged", chunks)
	}
}

func TestSplitChunksWithOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := Split(text, 40, 10)

	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if len(chunk) != 40 {
			t.Errorf("chunks[%d] length = %d, want 40", i, len(chunk))
		}
	}

	// Adjacent chunks share the overlap region
	if chunks[0][30:] != chunks[1][:10] {
		t.Error("chunks do not overlap at the boundary")
	}
}

func TestSplitCoversWholeText(t *testing.T) {
	text := strings.Repeat("x", 95) + "END"
	chunks := Split(text, 40, 10)
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "END") {
		t.Errorf("final chunk %q does not reach the end of the text", last)
	}
}

func TestSplitOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("y", 100)
	chunks := Split(text, 20, 30) // step falls back to chunkSize

	joined := strings.Join(chunks, "")
	if len(joined) != 100 {
		t.Errorf("fallback step produced %d chars across chunks, want exact cover", len(joined))
	}
}

func TestSplitMultibyte(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 20) // 120 runes
	chunks := Split(text, 50, 10)

	for i, chunk := range chunks {
		if !strings.HasPrefix(text, chunks[0]) && i == 0 {
			t.Error("first chunk must be a prefix of the text")
		}
		for _, r := range chunk {
			if r == '�' {
				t.Fatal("rune split across chunk boundary")
			}
		}
	}
}
