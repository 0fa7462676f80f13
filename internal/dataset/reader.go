package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zentsystems-ctrl/uniswap-ai-liquitiy-manager-pro/internal/types"
)

const maxLineBytes = 4 * 1024 * 1024

// LineError is a skipped line and why.
type LineError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Reason)
}

// Result is the outcome of reading a dataset. Total counts non-blank lines.
type Result struct {
	Records []Record    `json:"records"`
	Total   int         `json:"total"`
	Errors  []LineError `json:"errors"`
}

type Reader struct {
	log zerolog.Logger
}

func NewReader(logger zerolog.Logger) *Reader {
	return &Reader{log: logger.With().Str("component", "dataset").Logger()}
}

// ReadFile reads an NDJSON file. A missing file wraps types.ErrNotFound.
func (r *Reader) ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset %s: %w", path, types.ErrNotFound)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return r.Read(f)
}

// Read decodes every line of src. Lines that cannot be resolved into a snapshot and a label
// are skipped and reported; only I/O failures are returned as errors.
func (r *Reader) Read(src io.Reader) (*Result, error) {
	res := &Result{}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		res.Total++

		rec, err := decodeRecord(line, []byte(text))
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: line, Reason: err.Error()})
			r.log.Debug().Int("line", line).Err(err).Msg("Skipped dataset line")
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read dataset: %w", err)
	}

	r.log.Info().
		Int("total", res.Total).
		Int("valid", len(res.Records)).
		Int("skipped", len(res.Errors)).
		Msg("Dataset read")
	return res, nil
}
