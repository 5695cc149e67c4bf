package table

// sanitize.go layers the readers that stand between raw input and the CSV
// parser, so one messy export cannot abort a parse:
//
//   - capReader enforces the raw byte limit
//   - bomReader drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - utf8Reader replaces invalid UTF-8 bytes with "_"
//
// The cap sits closest to the source so it counts raw bytes; the BOM check
// runs before any decoding; UTF-8 repair feeds the parser last.

import (
	"bufio"
	"io"
	"unicode/utf8"
)

// invalidByteReplacement substitutes each byte that is not part of a valid
// UTF-8 sequence. A plain ASCII stand-in keeps the stream from growing.
const invalidByteReplacement = '_'

// newSanitizedReader builds the reader stack for a parse. maxBytes <= 0
// means no cap.
func newSanitizedReader(r io.Reader, maxBytes int64) io.Reader {
	if maxBytes > 0 {
		r = &capReader{r: r, max: maxBytes}
	}
	return newUTF8Reader(newBOMReader(r))
}

// capReader fails with ErrTooLarge once more than max raw bytes have been
// read from the source.
type capReader struct {
	r    io.Reader
	max  int64
	read int64
}

func (c *capReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.max {
		return n, ErrTooLarge
	}
	return n, err
}

// bomReader skips a UTF-8 byte-order mark, commonly prepended by Windows
// spreadsheet exports, and is transparent otherwise.
type bomReader struct {
	r       io.Reader
	checked bool
	rest    []byte
	eof     bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		var head [3]byte
		n, err := io.ReadFull(b.r, head[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			b.eof = true
		} else if err != nil {
			return 0, err
		}
		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			b.rest = append(b.rest, head[:n]...)
		}
	}
	if len(b.rest) > 0 {
		n := copy(p, b.rest)
		b.rest = b.rest[n:]
		return n, nil
	}
	if b.eof {
		return 0, io.EOF
	}
	return b.r.Read(p)
}

// utf8Reader repairs invalid UTF-8 on the fly. Runs of plain ASCII are
// copied in bulk; everything else is decoded rune by rune, with each
// invalid byte replaced.
type utf8Reader struct {
	br      *bufio.Reader
	pending []byte // encoded rune bytes that did not fit the last output
}

func newUTF8Reader(r io.Reader) *utf8Reader {
	return &utf8Reader{br: bufio.NewReader(r)}
}

func (u *utf8Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(u.pending) > 0 {
			c := copy(p[n:], u.pending)
			u.pending = u.pending[c:]
			n += c
			continue
		}

		// Fast path: most CSV data is ASCII and needs no decoding.
		want := len(p) - n
		if want > 512 {
			want = 512
		}
		peek, _ := u.br.Peek(want)
		ascii := 0
		for ascii < len(peek) && peek[ascii] < utf8.RuneSelf {
			ascii++
		}
		if ascii > 0 {
			copy(p[n:], peek[:ascii])
			u.br.Discard(ascii)
			n += ascii
			continue
		}

		r, size, err := u.br.ReadRune()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if r == utf8.RuneError && size == 1 {
			r = invalidByteReplacement
		}
		if r < utf8.RuneSelf {
			p[n] = byte(r)
			n++
			continue
		}
		var buf [utf8.UTFMax]byte
		size = utf8.EncodeRune(buf[:], r)
		c := copy(p[n:], buf[:size])
		n += c
		if c < size {
			u.pending = append(u.pending[:0], buf[c:size]...)
		}
	}
	return n, nil
}
