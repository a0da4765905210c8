package table

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
)

// ReadCSV parses a CSV stream whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return New(nil), nil
	}
	if err != nil {
		return nil, err
	}

	t := New(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Append(record)
	}
	return t, nil
}

// LoadCSV reads a CSV file from path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &TableError{Type: SourceNotFound, Path: path, Err: err}
		}
		return nil, &TableError{Type: InvalidFormat, Path: path, Err: err}
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, &TableError{Type: InvalidFormat, Path: path, Err: err}
	}
	return t, nil
}

// WriteCSV writes the header and rows as CSV.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// SaveCSV writes the table to path, replacing any existing file.
func SaveCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return &TableError{Type: WriteFailed, Path: path, Err: err}
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return &TableError{Type: WriteFailed, Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &TableError{Type: WriteFailed, Path: path, Err: err}
	}
	return nil
}
