// Package refdata loads the static locality reference list used to validate
// customer addresses and resolve postal codes.
package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrLocalityNotFound is returned when a locality has no zip code entry.
var ErrLocalityNotFound = errors.New("refdata: locality not found")

// LocalityList is an in-memory copy of the locality reference dataset.
// Each row holds the locality name, county and postal code; lookups are
// case-insensitive.
type LocalityList struct {
	rows [][]string
}

// LoadLocalityList reads the reference CSV from disk.
func LoadLocalityList(path string) (*LocalityList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open locality list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("refdata: read locality list: %w", err)
	}
	return &LocalityList{rows: rows}, nil
}

// NewLocalityList builds a list from in-memory rows. Test constructor.
func NewLocalityList(rows [][]string) *LocalityList {
	return &LocalityList{rows: rows}
}

// Exists reports whether a locality or county name appears in the dataset.
func (l *LocalityList) Exists(name string) bool {
	if l == nil {
		return false
	}
	needle := strings.TrimSpace(name)
	for _, row := range l.rows {
		for _, field := range row {
			if strings.EqualFold(field, needle) {
				return true
			}
		}
	}
	return false
}

// Zipcode returns the postal code for a locality.
func (l *LocalityList) Zipcode(locality string) (string, error) {
	if l == nil {
		return "", ErrLocalityNotFound
	}
	needle := strings.TrimSpace(locality)
	for _, row := range l.rows {
		if len(row) >= 4 && strings.EqualFold(row[0], needle) {
			return row[3], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLocalityNotFound, locality)
}
