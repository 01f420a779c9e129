// Package export renders inquiry records into downloadable report formats.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"wqsolutions/internal/database"
)

const inquirySheet = "Inquiries"

var inquiryHeader = []string{"ID", "Name", "Email", "Phone", "Subject", "Service Interest", "Message", "Read", "Received At"}

// InquiriesExcel builds a workbook with one row per inquiry and returns the
// serialized bytes.
func InquiriesExcel(inquiries []database.Inquiry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(inquirySheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range inquiryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(inquirySheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, inquiry := range inquiries {
		values := []any{
			inquiry.ID,
			inquiry.Name,
			inquiry.Email,
			inquiry.Phone,
			inquiry.Subject,
			inquiry.ServiceInterest,
			inquiry.Message,
			strconv.FormatBool(inquiry.Read),
			inquiry.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(inquirySheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
