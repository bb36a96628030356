package csv

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/darianmavgo/csv2sqlite/converters/common"
)

// Reader reads records from a delimited text stream.
//
// Fields may be quoted; a quoted field can hold the delimiter, line breaks
// and the quote character doubled. Quoted content is kept verbatim. Records
// end at "\n", "\r\n" or end of input, and empty lines are skipped. Unlike
// encoding/csv the quote character is configurable.
type Reader struct {
	// Comma is the field delimiter.
	Comma rune
	// Quote is the quote character.
	Quote rune
	// TrimSpace trims unquoted fields and ignores whitespace around quotes.
	TrimSpace bool
	// Logger receives a DEBUG record for blank lines skipped before a record.
	Logger *slog.Logger

	r        *bufio.Reader
	pushback []rune

	// line counts the line feeds consumed so far.
	line int
	// col is the 1-based rune position on the current line.
	col int
	// prevCol is the position of the line feed that ended the previous line.
	prevCol int

	field strings.Builder
}

// NewReader returns a new Reader that reads from r with the excel dialect.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{
		Comma: common.DefaultDelimiter,
		Quote:  common.DefaultQuote,
		Logger: slog.Default(),
		r:      br,
	}
}

func (r *Reader) readRune() (rune, error) {
	var c rune
	if n := len(r.pushback); n > 0 {
		c = r.pushback[n-1]
		r.pushback = r.pushback[:n-1]
	} else {
		var err error
		c, _, err = r.r.ReadRune()
		if err != nil {
			return 0, err
		}
	}
	if c == '\n' {
		r.line++
		r.prevCol = r.col + 1
		r.col = 0
	} else {
		r.col++
	}
	return c, nil
}

// unread pushes back a rune other than '\n'.
func (r *Reader) unread(c rune) {
	r.pushback = append(r.pushback, c)
	r.col--
}

// atEndOfLine reports whether c terminates the line, consuming the '\n' of
// a "\r\n" pair. A '\r' followed by anything else is ordinary data.
func (r *Reader) atEndOfLine(c rune) (bool, error) {
	if c == '\n' {
		return true, nil
	}
	if c != '\r' {
		return false, nil
	}
	next, err := r.readRune()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if next == '\n' {
		return true, nil
	}
	r.unread(next)
	return false, nil
}

func (r *Reader) isSpace(c rune) bool {
	return c != r.Comma && c != '\n' && c != '\r' && unicode.IsSpace(c)
}

// parseErr locates err at the last rune read. Input that ends right after
// a line feed is reported on the line that feed closed.
func (r *Reader) parseErr(startLine int, err error) error {
	line, col := r.line+1, r.col
	if col == 0 && r.line > 0 {
		line, col = r.line, r.prevCol
	}
	return &common.ParseError{StartLine: startLine, Line: line, Column: col, Err: err}
}

// Read reads one record. It returns io.EOF when no records remain.
func (r *Reader) Read() (common.RawRow, error) {
	skipped := 0
	for {
		c, err := r.readRune()
		if err != nil {
			return common.RawRow{}, err
		}
		eol, err := r.atEndOfLine(c)
		if err != nil {
			return common.RawRow{}, err
		}
		if !eol {
			r.unread(c)
			break
		}
		skipped++
	}

	startLine := r.line + 1
	if skipped > 0 && r.Logger != nil {
		r.Logger.Debug("skipped blank lines",
			slog.Int("first_line", startLine-skipped),
			slog.Int("count", skipped))
	}
	var fields []string
	for {
		field, more, err := r.readField(startLine)
		if err != nil {
			return common.RawRow{}, err
		}
		fields = append(fields, field)
		if !more {
			return common.RawRow{Line: startLine, Fields: fields}, nil
		}
	}
}

// ReadAll reads the remaining records.
func (r *Reader) ReadAll() ([]common.RawRow, error) {
	var rows []common.RawRow
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// readField parses one field. more is true when a delimiter ended it,
// so another field follows on the same record.
func (r *Reader) readField(startLine int) (field string, more bool, err error) {
	r.field.Reset()

	c, err := r.readRune()
	if errors.Is(err, io.EOF) {
		// A delimiter right before end of input opens an empty last field.
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if r.TrimSpace {
		for r.isSpace(c) {
			c, err = r.readRune()
			if errors.Is(err, io.EOF) {
				return "", false, nil
			}
			if err != nil {
				return "", false, err
			}
		}
	}

	if c == r.Quote {
		return r.readQuoted(startLine)
	}

	for {
		if c == r.Comma {
			return r.unquoted(), true, nil
		}
		if c == r.Quote {
			return "", false, r.parseErr(startLine, common.ErrBareQuote)
		}
		eol, err := r.atEndOfLine(c)
		if err != nil {
			return "", false, err
		}
		if eol {
			return r.unquoted(), false, nil
		}
		r.field.WriteRune(c)

		c, err = r.readRune()
		if errors.Is(err, io.EOF) {
			return r.unquoted(), false, nil
		}
		if err != nil {
			return "", false, err
		}
	}
}

func (r *Reader) readQuoted(startLine int) (string, bool, error) {
	for {
		c, err := r.readRune()
		if errors.Is(err, io.EOF) {
			return "", false, r.parseErr(startLine, common.ErrUnterminatedQuote)
		}
		if err != nil {
			return "", false, err
		}
		if c != r.Quote {
			r.field.WriteRune(c)
			continue
		}

		// Closing quote, or the first half of an escaped one.
		c, err = r.readRune()
		if errors.Is(err, io.EOF) {
			return r.field.String(), false, nil
		}
		if err != nil {
			return "", false, err
		}
		if c == r.Quote {
			r.field.WriteRune(c)
			continue
		}
		if r.TrimSpace {
			for r.isSpace(c) {
				c, err = r.readRune()
				if errors.Is(err, io.EOF) {
					return r.field.String(), false, nil
				}
				if err != nil {
					return "", false, err
				}
			}
		}
		if c == r.Comma {
			return r.field.String(), true, nil
		}
		eol, err := r.atEndOfLine(c)
		if err != nil {
			return "", false, err
		}
		if eol {
			return r.field.String(), false, nil
		}
		return "", false, r.parseErr(startLine, common.ErrExtraneousQuote)
	}
}

func (r *Reader) unquoted() string {
	s := r.field.String()
	if r.TrimSpace {
		s = strings.TrimSpace(s)
	}
	return s
}
