package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Line is a single non blank line read from a file, with its position for error messages.
type Line struct {
	Filename string
	N        int
	Text     string
}

func (l Line) String() string { return fmt.Sprintf("%s:%d", l.Filename, l.N) }

// Scan reads every non blank line of r.
// filename is for error message only.
func Scan(filename string, r io.Reader) ([]Line, error) {
	var list []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		txt := scanner.Text()
		if strings.TrimSpace(txt) == "" {
			continue
		}
		list = append(list, Line{filename, n, txt})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", filename, err)
	}
	return list, nil
}

// ReadFiles reads all lines from a set of files, in order.
func ReadFiles(filenames ...string) ([]Line, error) {
	list := make([]Line, 0, 1024)
	for _, filename := range filenames {
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot open %q for reading: %w", filename, err)
		}
		lines, err := Scan(filename, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		list = append(list, lines...)
	}
	return list, nil
}

// Write writes v followed by a newline.
func Write(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
