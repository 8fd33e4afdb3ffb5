package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var (
	ErrInputClosed = errors.New("input closed during read")
	ErrBadInput    = errors.New("malformed input")
)

// IO is the console of a running program. Reads block on the underlying
// reader.
type IO struct {
	in  *bufio.Reader
	out io.Writer
}

func NewIO(stdin io.Reader, stdout io.Writer) *IO {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	return &IO{in: bufio.NewReader(stdin), out: stdout}
}

func closed(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrInputClosed
	}
	return err
}

// ReadChar reads a single byte.
func (c *IO) ReadChar() (byte, error) {
	b, err := c.in.ReadByte()
	if err != nil {
		return 0, closed(err)
	}
	return b, nil
}

// Read skips leading whitespace and returns the following run of
// non-whitespace bytes. The terminating whitespace is consumed.
func (c *IO) Read() (string, error) {
	var sb strings.Builder
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", closed(err)
		}
		if unicode.IsSpace(rune(b)) {
			if sb.Len() == 0 {
				continue
			}
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// ReadLine reads at most limit bytes, stopping after a newline.
func (c *IO) ReadLine(limit int) (string, error) {
	var sb strings.Builder
	for sb.Len() < limit {
		b, err := c.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				break
			}
			return "", closed(err)
		}
		sb.WriteByte(b)
		if b == '\n' {
			break
		}
	}
	return sb.String(), nil
}

// Write copies s to the output.
func (c *IO) Write(s string) error {
	if _, err := io.WriteString(c.out, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
