package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "data/documents.json"
)

var (
	ErrMissing     = errors.New("document source not found")
	ErrMalformed   = errors.New("document source is malformed")
	ErrNoDocuments = errors.New("document source contains no documents")
)

// Record is a single entry of the static document source. Fields other than id and text are
// ignored.
type Record struct {
	ID   ID     `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// ID is a document identifier. Sources may spell it as a string or as a number, it is always
// kept in its string form.
type ID string

func (i *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", string(data))
	}
	*i = ID(n.String())
	return nil
}

func (i *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("id must be a scalar (line %d)", value.Line)
	}
	*i = ID(value.Value)
	return nil
}

func (i ID) String() string {
	return string(i)
}

// Load reads the ordered records from path. A .json or .yaml file holds a list of records; a
// path containing glob characters turns every matching file into one record.
func Load(path string) ([]Record, error) {
	var (
		records []Record
		err     error
	)
	if isGlob(path) {
		records, err = loadGlob(path)
	} else {
		records, err = loadFile(path)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, path)
	}
	if err := validate(records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	return records, nil
}

// Write stores records as an indented JSON list, the format Load reads back.
func Write(path string, records []Record) error {
	recordBytes, err := json.MarshalIndent(records, "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal document records: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	err = os.WriteFile(path, recordBytes, 0644)
	if err != nil {
		return fmt.Errorf("failed to write document records: %w", err)
	}
	return nil
}

func loadFile(path string) ([]Record, error) {
	recordBytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("unexpected error reading document source %s: %w", path, err)
	}

	var records []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(recordBytes, &records)
	default:
		err = json.Unmarshal(recordBytes, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	return records, nil
}

func loadGlob(path string) ([]Record, error) {
	base, pattern := doublestar.SplitPattern(filepath.ToSlash(path))
	if _, err := os.Stat(base); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, base)
	}

	fsys := os.DirFS(base)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %s: %w", ErrMalformed, path, err)
	}
	sort.Strings(matches)

	records := make([]Record, 0, len(matches))
	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", match, err)
		}
		if info.IsDir() {
			continue
		}
		content, err := fs.ReadFile(fsys, match)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", match, err)
		}
		records = append(records, Record{
			ID:   ID(match),
			Text: strings.TrimSpace(string(content)),
		})
	}
	return records, nil
}

func validate(records []Record) error {
	seen := make(map[ID]int, len(records))
	for i, record := range records {
		if strings.TrimSpace(string(record.ID)) == "" {
			return fmt.Errorf("record %d has no id", i)
		}
		if strings.TrimSpace(record.Text) == "" {
			return fmt.Errorf("record %d (%s) has no text", i, record.ID)
		}
		if prev, exists := seen[record.ID]; exists {
			return fmt.Errorf("duplicate id %s at records %d and %d", record.ID, prev, i)
		}
		seen[record.ID] = i
	}
	return nil
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
