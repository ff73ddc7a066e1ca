package excel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/example/accessbot/internal/database"
)

type fakePhoneStore struct {
	added map[int64]bool
}

func newFakePhoneStore() *fakePhoneStore {
	return &fakePhoneStore{added: make(map[int64]bool)}
}

func (f *fakePhoneStore) Add(_ context.Context, phone int64) error {
	if f.added[phone] {
		return fmt.Errorf("phone %d: %w", phone, database.ErrDuplicateKey)
	}
	f.added[phone] = true
	return nil
}

func buildSheet(t *testing.T, headers []string, rows [][]string) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			if value == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestImportPhones(t *testing.T) {
	sheet := buildSheet(t,
		[]string{"ФИО", "Телефон"},
		[][]string{
			{"Иванов", "+7 911 123-45-67"},
			{"Петров", "89161234568"},
			{"Сидоров", "abc"},
			{"Смирнов", ""},
			{"Кузнецов", "9161234569"},
		},
	)

	store := newFakePhoneStore()
	result, err := ImportPhones(context.Background(), sheet, store)
	if err != nil {
		t.Fatalf("ImportPhones: %v", err)
	}

	if result.TotalCells != 4 {
		t.Errorf("TotalCells = %d, want 4", result.TotalCells)
	}
	if result.Added != 3 {
		t.Errorf("Added = %d, want 3", result.Added)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	for _, phone := range []int64{9111234567, 9161234568, 9161234569} {
		if !store.added[phone] {
			t.Errorf("phone %d not imported", phone)
		}
	}
}

func TestImportPhonesRecordsRowErrors(t *testing.T) {
	sheet := buildSheet(t,
		[]string{"Телефон"},
		[][]string{
			{"9161234567"},
			{"8 916 123-45-67"}, // same number again
		},
	)

	store := newFakePhoneStore()
	result, err := ImportPhones(context.Background(), sheet, store)
	if err != nil {
		t.Fatalf("ImportPhones: %v", err)
	}

	if result.Added != 1 {
		t.Errorf("Added = %d, want 1", result.Added)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", result.Errors)
	}
}

func TestImportPhonesMissingColumn(t *testing.T) {
	sheet := buildSheet(t,
		[]string{"ФИО", "Email"},
		[][]string{{"Иванов", "ivanov@example.com"}},
	)

	_, err := ImportPhones(context.Background(), sheet, newFakePhoneStore())
	if !errors.Is(err, ErrPhoneColumnNotFound) {
		t.Fatalf("ImportPhones = %v, want ErrPhoneColumnNotFound", err)
	}
}

func TestImportPhonesRejectsGarbage(t *testing.T) {
	_, err := ImportPhones(context.Background(), bytes.NewReader([]byte("not a spreadsheet")), newFakePhoneStore())
	if err == nil {
		t.Fatal("ImportPhones accepted a non-xlsx payload")
	}
}
