package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLineSize bounds one input line. Whole datasets often arrive on a
// single line, e.g. from paste -sd' '.
const maxLineSize = 256 << 20

// readValues reads whitespace-separated numbers. Text after '#' on a line
// is ignored.
func readValues(r io.Reader) ([]float32, error) {
	var values []float32
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, field := range strings.Fields(text) {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid number %q", line, field)
			}
			values = append(values, float32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// readInput reads values from the named file, or from stdin when no file
// or "-" is given.
func readInput(stdin io.Reader, args []string) ([]float32, error) {
	if len(args) == 0 || args[0] == "-" {
		return readValues(stdin)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	values, err := readValues(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return values, nil
}
