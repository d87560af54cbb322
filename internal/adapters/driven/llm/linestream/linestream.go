// Package linestream turns a line-oriented HTTP response body into a
// driven.ChatStream. Ollama sends one JSON object per line; Anthropic sends
// server-sent events. Each adapter supplies a Decoder for its format.
package linestream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/sai-navyanth-p/AI-Teaching-Assistant/internal/core/ports/driven"
)

const maxLine = 1 << 20

var _ driven.ChatStream = (*Stream)(nil)

// Decoder interprets one non-blank line. It returns the text to hand out,
// possibly empty, and whether the line ends the reply. An error also ends it.
type Decoder func(line []byte) (delta string, done bool, err error)

// Stream reads deltas lazily as Recv is called.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	decode  Decoder
	done    bool
}

func New(body io.ReadCloser, decode Decoder) *Stream {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Stream{body: body, scanner: sc, decode: decode}
}

// Recv returns the next non-empty delta. After the decoder reports done, or
// the body ends, it returns io.EOF. A delta on the final line is still
// returned before io.EOF.
func (s *Stream) Recv() (string, error) {
	for !s.done && s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		delta, done, err := s.decode(line)
		if err != nil {
			s.done = true
			return "", err
		}
		s.done = done
		if delta != "" {
			return delta, nil
		}
	}
	if !s.done {
		s.done = true
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stream: %w", err)
		}
	}
	return "", io.EOF
}

// Close releases the connection. Recv returns io.EOF afterwards.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}
