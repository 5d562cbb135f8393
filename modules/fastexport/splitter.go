package fastexport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// splitterState is the Unstructured Splitter's state machine position.
type splitterState int

const (
	stateBeforeData splitterState = iota
	stateInData
	stateAfterData
)

// UnstructuredObject is one fast-export object before grammar parsing: the
// text before its `data <N>` section, the exact N-byte payload, and the
// text after it, split apart only by byte-counting (never by scanning the
// payload for a terminator, since payload bytes can be arbitrary binary).
type UnstructuredObject struct {
	BeforeData string
	Data       []byte
	AfterData  string
}

// Splitter reads raw `git fast-export` output and yields UnstructuredObjects
// one at a time, using the exact BeforeData/InData(N)/AfterData state
// machine fast-export's own grammar requires: only a `data <N>` header line
// tells us how many raw bytes follow, and only a later `progress <K>
// objects` marker tells us an object boundary has been reached.
type Splitter struct {
	r               *bufio.Reader
	expectedObject  int
	state           splitterState
	pendingDataSize int

	before strings.Builder
	after  strings.Builder
	data   []byte
}

// NewSplitter wraps r (typically a command's stdout pipe) in a Splitter
// starting at object 1, matching fast-export's own 1-based `progress`
// counter.
func NewSplitter(r io.Reader) *Splitter {
	return &Splitter{
		r:              bufio.NewReaderSize(r, 64*1024),
		expectedObject: 1,
		state:          stateBeforeData,
	}
}

func progressMarker(n int) string {
	return "progress " + strconv.Itoa(n) + " objects"
}

// Next returns the next UnstructuredObject, or io.EOF once the stream is
// exhausted. It never inspects the payload bytes it counts out in the
// InData state, so binary blob content passes through untouched.
func (s *Splitter) Next() (UnstructuredObject, error) {
	for {
		switch s.state {
		case stateBeforeData:
			line, err := s.readLine()
			if err != nil {
				return UnstructuredObject{}, err
			}
			if strings.HasPrefix(line, "data ") {
				n, perr := strconv.Atoi(strings.TrimPrefix(line, "data "))
				if perr != nil {
					return UnstructuredObject{}, fmt.Errorf("fastexport: malformed data header %q: %w", line, perr)
				}
				s.pendingDataSize = n
				s.state = stateInData
			}
			s.before.WriteString(line)
			s.before.WriteByte('\n')

		case stateInData:
			buf := make([]byte, s.pendingDataSize)
			if _, err := io.ReadFull(s.r, buf); err != nil {
				return UnstructuredObject{}, fmt.Errorf("fastexport: reading %d-byte data section: %w", s.pendingDataSize, err)
			}
			s.data = buf
			s.state = stateAfterData

		case stateAfterData:
			line, err := s.readLine()
			if err != nil {
				return UnstructuredObject{}, err
			}
			if strings.HasPrefix(line, progressMarker(s.expectedObject)) {
				s.expectedObject++
				obj := UnstructuredObject{
					BeforeData: s.before.String(),
					Data:       s.data,
					AfterData:  s.after.String(),
				}
				s.before.Reset()
				s.after.Reset()
				s.data = nil
				s.state = stateBeforeData
				return obj, nil
			}
			s.after.WriteString(line)
			s.after.WriteByte('\n')
		}
	}
}

// readLine reads one '\n'-terminated line with the trailing newline
// stripped. It returns io.EOF only when zero bytes were read (a clean
// end-of-stream); a partial final line still returns its content.
func (s *Splitter) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}
