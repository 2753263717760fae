package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"signage_server/internal/models"

	"github.com/xuri/excelize/v2"
)

const logSheetName = "Device Logs"

var logExportHeader = []string{"Timestamp", "Device ID", "Device Name", "Action"}

// ExportLogs renders the caller's logs (optionally one device's) as an XLSX workbook.
// Every detail key becomes its own column.
func (s *CheckInService) ExportLogs(ctx context.Context, ownerID uint, devicePK *uint, limit int) ([]byte, error) {
	logs, err := s.ListLogs(ctx, ownerID, devicePK, limit)
	if err != nil {
		return nil, err
	}
	devices, err := s.catalog.ListDevices(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Device, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}
	return generateLogWorkbook(logs, byID)
}

func detailColumns(logs []models.DeviceLog) []string {
	seen := map[string]struct{}{}
	for _, l := range logs {
		for k := range l.Details {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func generateLogWorkbook(logs []models.DeviceLog, devices map[uint]models.Device) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(logSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	keys := detailColumns(logs)
	headers := append(append([]string{}, logExportHeader...), keys...)
	for col, header := range headers {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			return nil, err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(logSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(logSheetName, "A", "A", 22); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(logSheetName, "B", "C", 20); err != nil {
		return nil, err
	}

	for i, l := range logs {
		row := i + 2
		device := devices[l.DeviceID]
		values := []interface{}{
			l.Timestamp.UTC().Format(time.RFC3339),
			device.DeviceID,
			device.Name,
			l.Action,
		}
		for _, k := range keys {
			v, ok := l.Details[k]
			if !ok {
				values = append(values, nil)
				continue
			}
			switch v.Kind() {
			case models.LogNumber:
				n, _ := v.Num()
				values = append(values, n)
			case models.LogBool:
				b, _ := v.Flag()
				values = append(values, b)
			default:
				values = append(values, v.Text())
			}
		}
		for col, value := range values {
			if value == nil {
				continue
			}
			if err := setCellValue(f, col+1, row, value); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(logSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(logSheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	return nil
}
