package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelRenderer builds one workbook holding every requested response as a
// titled section on a single sheet: a header row, a key/value metadata block
// and a numbered question/answer table, separated by blank spacing rows.
type ExcelRenderer struct {
	log *zap.Logger
}

func NewExcelRenderer(log *zap.Logger) *ExcelRenderer {
	return &ExcelRenderer{log: log}
}

const excelSheetName = "All Feedback Responses"

type excelStyles struct {
	sectionHeader int
	metaLabel     int
	tableHeader   int
	questionCell  int
	answerCell    int
	subLabelCell  int
	footer        int
}

func (r *ExcelRenderer) Render(responses []ExportResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", excelSheetName)

	styles, err := buildStyles(f)
	if err != nil {
		r.log.Error("excel style setup failed", zap.Error(err))
		return nil, &RenderError{Format: "Excel", Err: err}
	}

	row := 1
	for _, response := range responses {
		row, err = r.writeSection(f, styles, row, response)
		if err != nil {
			r.log.Error("excel section failed",
				zap.Uint("response_id", response.ID),
				zap.Error(err))
			return nil, &RenderError{Format: "Excel", Err: err}
		}
		row += 3
	}

	footer := fmt.Sprintf("Generated by GIA Feedback System - %s", time.Now().Format(time.RFC1123))
	if err := mergedCell(f, row, footer, styles.footer); err != nil {
		return nil, &RenderError{Format: "Excel", Err: err}
	}

	f.SetColWidth(excelSheetName, "A", "A", 6)
	f.SetColWidth(excelSheetName, "B", "B", 50)
	f.SetColWidth(excelSheetName, "C", "C", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		r.log.Error("excel write failed", zap.Error(err))
		return nil, &RenderError{Format: "Excel", Err: err}
	}
	return buf.Bytes(), nil
}

func (r *ExcelRenderer) writeSection(f *excelize.File, styles excelStyles, row int, response ExportResponse) (int, error) {
	visitorName := strOr(response.VisitorName, "Unknown Visitor")
	header := fmt.Sprintf("RESPONSE #%d - %s", response.ID, visitorName)
	if err := mergedCell(f, row, header, styles.sectionHeader); err != nil {
		return row, err
	}
	f.SetRowHeight(excelSheetName, row, 30)
	row++

	meta := [][2]string{
		{"Visitor Name:", strOr(response.VisitorName, "N/A")},
		{"Visitor Type:", visitorTypeText(response.VisitorType)},
		{"Form:", strOr(response.FormTitle, "N/A")},
		{"Organization:", strOr(response.Organization, "N/A")},
		{"ID Number:", strOr(response.IDNumber, "N/A")},
		{"Date:", response.SubmittedAt.Format(time.RFC1123)},
	}
	for _, kv := range meta {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		endCell, _ := excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(excelSheetName, labelCell, kv[0])
		f.MergeCell(excelSheetName, valueCell, endCell)
		f.SetCellValue(excelSheetName, valueCell, kv[1])
		f.SetCellStyle(excelSheetName, labelCell, labelCell, styles.metaLabel)
		row++
	}
	row++

	for col, title := range []string{"#", "Question", "Answer"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(excelSheetName, cell, title)
	}
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(3, row)
	f.SetCellStyle(excelSheetName, start, end, styles.tableHeader)
	f.SetRowHeight(excelSheetName, row, 25)
	row++

	groups := Aggregate(response.Answers)
	if len(groups) == 0 {
		if err := mergedCell(f, row, "No answers provided", styles.footer); err != nil {
			return row, err
		}
		return row + 1, nil
	}

	for i, g := range groups {
		numCell, _ := excelize.CoordinatesToCellName(1, row)
		qCell, _ := excelize.CoordinatesToCellName(2, row)
		aCell, _ := excelize.CoordinatesToCellName(3, row)
		f.SetCellValue(excelSheetName, numCell, i+1)
		f.SetCellValue(excelSheetName, qCell, g.QText)
		f.SetCellStyle(excelSheetName, qCell, qCell, styles.questionCell)

		if len(g.SubAnswers) == 0 {
			f.SetCellValue(excelSheetName, aCell, FormatAnswerValue(g.Value))
			f.SetCellStyle(excelSheetName, aCell, aCell, styles.answerCell)
			row++
			continue
		}

		row++
		for _, sub := range g.SubAnswers {
			subQCell, _ := excelize.CoordinatesToCellName(2, row)
			subACell, _ := excelize.CoordinatesToCellName(3, row)
			f.SetCellValue(excelSheetName, subQCell, sub.SubQuestionLabel)
			f.SetCellStyle(excelSheetName, subQCell, subQCell, styles.subLabelCell)
			f.SetCellValue(excelSheetName, subACell, FormatAnswerValue(sub.Value))
			f.SetCellStyle(excelSheetName, subACell, subACell, styles.answerCell)
			row++
		}
	}
	return row, nil
}

func mergedCell(f *excelize.File, row int, value string, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(3, row)
	if err := f.MergeCell(excelSheetName, start, end); err != nil {
		return err
	}
	if err := f.SetCellValue(excelSheetName, start, value); err != nil {
		return err
	}
	return f.SetCellStyle(excelSheetName, start, end, style)
}

func buildStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	thin := []excelize.Border{
		{Type: "top", Style: 1, Color: "D1D5DB"},
		{Type: "left", Style: 1, Color: "D1D5DB"},
		{Type: "bottom", Style: 1, Color: "D1D5DB"},
		{Type: "right", Style: 1, Color: "D1D5DB"},
	}

	if s.sectionHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F2937"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.metaLabel, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "1F2937"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FEF3C7"}},
		Border: thin,
	}); err != nil {
		return s, err
	}
	if s.tableHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C9A961"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.questionCell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "1F2937"},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.answerCell, err = f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFBF0"}},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	if s.subLabelCell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Color: "1F2937"},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top", Indent: 1},
		Border:    thin,
	}); err != nil {
		return s, err
	}
	s.footer, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 9, Color: "6B7280"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FEF3C7"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return s, err
}

func strOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func visitorTypeText(t *string) string {
	if t == nil {
		return "N/A"
	}
	switch *t {
	case "guest":
		return "Guest Visitor"
	case "internal":
		return "Internal Visitor"
	default:
		return *t
	}
}
