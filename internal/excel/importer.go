package excel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/accessbot/pkg/models"
)

// phoneColumnHeader is the localized header of the column holding phone
// numbers in the spreadsheets admins upload.
const phoneColumnHeader = "Телефон"

// ErrPhoneColumnNotFound is returned when the spreadsheet has no
// column labeled "Телефон".
var ErrPhoneColumnNotFound = errors.New("no phone column in spreadsheet")

// PhoneStore inserts phones into the whitelist.
type PhoneStore interface {
	Add(ctx context.Context, phone int64) error
}

// ImportResult holds the result of a bulk phone import
type ImportResult struct {
	TotalCells int      // non-empty cells in the phone column
	Added      int      // phones inserted into the whitelist
	Skipped    int      // cells that are not mobile numbers
	Errors     []string // per-row insertion failures
}

// ImportPhones reads an xlsx document, locates the "Телефон" column on
// the first sheet and inserts every normalized number into the
// whitelist. Insertion failures (duplicates included) are accumulated
// per row and never abort the import.
func ImportPhones(ctx context.Context, r io.Reader, store PhoneStore) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrPhoneColumnNotFound
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrPhoneColumnNotFound
	}

	column := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == phoneColumnHeader {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, ErrPhoneColumnNotFound
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows[1:] {
		if column >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[column])
		if cell == "" {
			continue
		}
		result.TotalCells++

		phone, ok := models.NormalizePhone(cell)
		if !ok {
			result.Skipped++
			continue
		}

		if err := store.Add(ctx, phone); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		result.Added++
	}

	return result, nil
}
