package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Dataset maps subset name -> split name -> ordered records. Built once by
// LoadFromDisk and read-only afterward.
type Dataset map[string]map[string][]Record

// Records returns the rows for a subset/split, or nil when the pair was not
// found on disk.
func (d Dataset) Records(subset, split string) []Record {
	return d[subset][split]
}

// fileFormats is the extension priority order: whichever exists first wins.
var fileFormats = []struct {
	ext  string
	read func(ctx context.Context, path string) ([]Record, error)
}{
	{".jsonl", readJSONLFile},
	{".csv", readCSVFile},
}

// LoadFromDisk reads `{subset}_{split}{ext}` files for every subset x split
// pair. nameOrPath is used directly when it exists on disk, otherwise it is
// resolved under workDir. Missing files are not an error: the subset/split is
// simply absent from the result.
func LoadFromDisk(ctx context.Context, nameOrPath, workDir string, subsets, splits []string) (Dataset, error) {
	if ctx == nil {
		return nil, errors.New("dataset: nil context")
	}
	if nameOrPath == "" {
		return nil, errors.New("dataset: empty dataset name or path")
	}

	baseDir := nameOrPath
	if _, err := os.Stat(nameOrPath); err != nil {
		baseDir = filepath.Join(workDir, nameOrPath)
	}

	out := make(Dataset, len(subsets))
	for _, subset := range subsets {
		for _, split := range splits {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			for _, f := range fileFormats {
				path := filepath.Join(baseDir, subset+"_"+split+f.ext)
				if _, err := os.Stat(path); err != nil {
					continue
				}
				records, err := f.read(ctx, path)
				if err != nil {
					return out, err
				}
				if out[subset] == nil {
					out[subset] = make(map[string][]Record, len(splits))
				}
				out[subset][split] = records
				break
			}
		}
	}
	return out, nil
}

func readJSONLFile(ctx context.Context, path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeJSONLStream(ctx, f, path)
}

func decodeJSONLStream(ctx context.Context, r io.Reader, path string) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var out []Record
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw map[string]any
		if err := json.Unmarshal(line, &raw); err != nil {
			return out, fmt.Errorf("dataset: parse jsonl %q: %w", path, err)
		}
		out = append(out, fromRow(stringifyRow(raw)))
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("dataset: read jsonl %q: %w", path, err)
	}
	return out, nil
}

func readCSVFile(ctx context.Context, path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("dataset: read csv header %q: %w", path, err)
	}

	var out []Record
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, fmt.Errorf("dataset: read csv %q: %w", path, err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i >= len(fields) {
				break
			}
			row[name] = fields[i]
		}
		out = append(out, fromRow(row))
	}
	return out, nil
}

// stringifyRow flattens JSON scalar values to strings; source files commonly
// carry numeric ids.
func stringifyRow(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch value := v.(type) {
		case string:
			out[k] = value
		case float64:
			out[k] = strconv.FormatFloat(value, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(value)
		case nil:
			// Dropped: an explicit null is the same as an absent key.
		default:
			out[k] = fmt.Sprintf("%v", value)
		}
	}
	return out
}
