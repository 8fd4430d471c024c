package yield

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-hep.org/x/hep/hbook"
)

// Write serialises the set as a YODA text archive, histograms in name order.
func Write(w io.Writer, set Set) error {
	for _, name := range sortedNames(set) {
		h := set[name]
		setName(h, name)
		data, err := h.MarshalYODA()
		if err != nil {
			return fmt.Errorf("failed to marshal histogram %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if !bytes.HasSuffix(data, []byte("\n")) {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile writes the set to the given path, creating the parent
// directory when needed and truncating any existing file.
func WriteFile(path string, set Set) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create yield file %s: %w", path, err)
	}
	if err := Write(f, set); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read parses a YODA text archive into a yield histogram set. Histogram
// names are taken from the block header path.
func Read(r io.Reader) (Set, error) {
	set := Set{}

	var (
		block   bytes.Buffer
		name    string
		inBlock bool
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "BEGIN YODA_HISTO1D"):
			if inBlock {
				return nil, fmt.Errorf("nested BEGIN block for %q", line)
			}
			inBlock = true
			block.Reset()
			name = blockName(line)
			block.WriteString(line)
			block.WriteString("\n")
		case strings.HasPrefix(line, "END YODA_HISTO1D"):
			if !inBlock {
				return nil, fmt.Errorf("END without BEGIN: %q", line)
			}
			block.WriteString(line)
			block.WriteString("\n")
			h := hbook.NewH1D(1, 0, 1)
			if err := h.UnmarshalYODA(block.Bytes()); err != nil {
				return nil, fmt.Errorf("failed to unmarshal histogram %s: %w", name, err)
			}
			if name == "" {
				name = h.Name()
			}
			if _, dup := set[name]; dup {
				return nil, fmt.Errorf("duplicate histogram %s in file", name)
			}
			set[name] = h
			inBlock = false
		case inBlock:
			block.WriteString(line)
			block.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inBlock {
		return nil, fmt.Errorf("unterminated block for histogram %s", name)
	}
	return set, nil
}

// ReadFile reads a YODA yield file.
func ReadFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open yield file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	set, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("yield file %s: %w", path, err)
	}
	return set, nil
}

// blockName extracts the histogram name from a BEGIN header line, e.g.
// "BEGIN YODA_HISTO1D_V2 /Yield" -> "Yield".
func blockName(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return ""
	}
	return strings.TrimPrefix(fields[2], "/")
}
