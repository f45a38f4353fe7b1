package segment

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_ShortTextUnchanged(t *testing.T) {
	s := New(2000)
	for _, in := range []string{"", "Hello", " leading and trailing \n", strings.Repeat("x", 2000)} {
		got := s.Split(in)
		if in == "" {
			if len(got) != 0 {
				t.Errorf("Split(\"\") = %v, want none", got)
			}
			continue
		}
		if len(got) != 1 || got[0] != in {
			t.Errorf("Split(%q) = %q, want single unchanged chunk", in, got)
		}
	}
}

func TestSplit_NoBreakPoints(t *testing.T) {
	in := strings.Repeat("a", 5000)
	got := New(2000).Split(in)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, c := range got {
		if len(c) > 2000 {
			t.Errorf("chunk %d len = %d", i, len(c))
		}
	}
	if strings.Join(got, "") != in {
		t.Error("chunks do not reassemble input")
	}
}

func TestSplit_PrefersNewline(t *testing.T) {
	first := strings.Repeat("a", 60) + "\n"
	in := first + strings.Repeat("b", 60)
	got := New(100).Split(in)
	if len(got) != 2 {
		t.Fatalf("got %d chunks", len(got))
	}
	if got[0] != strings.Repeat("a", 60) {
		t.Errorf("chunk 0 = %q", got[0])
	}
	if got[1] != strings.Repeat("b", 60) {
		t.Errorf("chunk 1 = %q", got[1])
	}
}

func TestSplit_IgnoresEarlyNewline(t *testing.T) {
	// Newline before C/2 is not a cut candidate; sentence end is used instead.
	in := "ab\n" + strings.Repeat("c", 60) + ". " + strings.Repeat("d", 60)
	got := New(100).Split(in)
	if !strings.HasSuffix(got[0], ".") {
		t.Errorf("chunk 0 = %q, want cut after sentence end", got[0])
	}
}

func TestSplit_SentenceBoundary(t *testing.T) {
	in := strings.Repeat("w", 70) + "! " + strings.Repeat("z", 70)
	got := New(100).Split(in)
	if got[0] != strings.Repeat("w", 70)+"!" {
		t.Errorf("chunk 0 = %q", got[0])
	}
	if got[1] != strings.Repeat("z", 70) {
		t.Errorf("chunk 1 = %q", got[1])
	}
}

func TestSplit_WordBoundary(t *testing.T) {
	in := strings.Repeat("w", 90) + " " + strings.Repeat("z", 50)
	got := New(100).Split(in)
	if got[0] != strings.Repeat("w", 90) {
		t.Errorf("chunk 0 = %q", got[0])
	}
	if got[1] != strings.Repeat("z", 50) {
		t.Errorf("chunk 1 = %q", got[1])
	}
}

func TestSplit_EarlySpaceIgnored(t *testing.T) {
	// A space before 0.8*C is not used; the hard cut applies.
	in := strings.Repeat("w", 40) + " " + strings.Repeat("z", 100)
	got := New(100).Split(in)
	if utf8.RuneCountInString(got[0]) != 100 {
		t.Errorf("chunk 0 len = %d, want 100", utf8.RuneCountInString(got[0]))
	}
}

func TestSplit_ReassemblesWithTrimmedWhitespace(t *testing.T) {
	para := "The quick brown fox jumps over the lazy dog. It was not amused! Why? Nobody knows.\n"
	in := strings.Repeat(para, 80)
	c := 500
	got := New(c).Split(in)

	var b strings.Builder
	pos := 0
	for i, chunk := range got {
		if n := utf8.RuneCountInString(chunk); n > c {
			t.Fatalf("chunk %d len %d > %d", i, n, c)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Fatalf("chunk %d is blank", i)
		}
		// Re-insert the whitespace that was trimmed at the cut.
		for pos < len(in) && !strings.HasPrefix(in[pos:], chunk) {
			if !strings.ContainsRune(" \n\t\r", rune(in[pos])) {
				t.Fatalf("non-whitespace lost before chunk %d at %d", i, pos)
			}
			b.WriteByte(in[pos])
			pos++
		}
		b.WriteString(chunk)
		pos += len(chunk)
	}
	if b.String() != in {
		t.Error("reassembled text differs from input")
	}
}

func TestSplit_MultibyteCountsCharacters(t *testing.T) {
	in := strings.Repeat("é", 250)
	got := New(100).Split(in)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, c := range got {
		if !utf8.ValidString(c) {
			t.Error("chunk split inside a multibyte character")
		}
	}
}

func TestNew_DefaultCeiling(t *testing.T) {
	in := strings.Repeat("x", DefaultCeiling+1)
	got := New(0).Split(in)
	if len(got) != 2 || len(got[0]) != DefaultCeiling {
		t.Errorf("default ceiling not applied: %d chunks", len(got))
	}
}
