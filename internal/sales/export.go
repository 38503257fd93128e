package sales

import (
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const sheetName = "Sales"

var xlsxHeader = []string{"Product", "Quantity", "Total", "Date"}

// WriteCSV writes rows with a product,quantity,total,date header.
func WriteCSV(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "write csv")
}

// ReadCSV parses a document produced by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	return rows, nil
}

func cell(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)
	for i, h := range xlsxHeader {
		f.SetCellValue(sheetName, cell(i, 1), h)
	}
	for i, r := range rows {
		line := i + 2
		f.SetCellValue(sheetName, cell(0, line), r.Product)
		f.SetCellValue(sheetName, cell(1, line), r.Quantity)
		total, err := decimal.NewFromString(r.Total)
		if err != nil {
			f.SetCellValue(sheetName, cell(2, line), r.Total)
		} else {
			f.SetCellValue(sheetName, cell(2, line), total.InexactFloat64())
		}
		f.SetCellValue(sheetName, cell(3, line), r.Date)
	}
	f.SetColWidth(sheetName, "A", "A", 40)
	return errors.Wrap(f.Write(w), "write xlsx")
}
