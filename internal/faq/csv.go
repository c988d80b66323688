package faq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ImportCSV bulk-loads FAQ records from tabular input. The header row
// must contain "question" and "answer" columns (case-insensitive,
// trimmed); a "category" column is optional. Rows whose question or
// answer is empty after trimming are skipped. When clearExisting is set
// the store is emptied before import. Returns the number of rows
// actually imported.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader, clearExisting bool) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("%w: missing header row", ErrBadFormat)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	questionCol, answerCol, categoryCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			questionCol = i
		case "answer":
			answerCol = i
		case "category":
			categoryCol = i
		}
	}
	if questionCol < 0 || answerCol < 0 {
		return 0, fmt.Errorf("%w: header must contain question and answer columns", ErrBadFormat)
	}

	var imported []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadFormat, err)
		}

		question := fieldAt(row, questionCol)
		answer := fieldAt(row, answerCol)
		if question == "" || answer == "" {
			continue
		}
		imported = append(imported, newRecord(question, answer, fieldAt(row, categoryCol)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []Record
	if !clearExisting {
		records = s.Load(ctx)
	}
	records = append(records, imported...)
	if err := s.backend.Save(ctx, records); err != nil {
		return 0, fmt.Errorf("persist collection: %w", err)
	}

	s.logger.Info().Int("imported", len(imported)).Bool("cleared", clearExisting).Msg("CSV import complete")
	return len(imported), nil
}

func fieldAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
