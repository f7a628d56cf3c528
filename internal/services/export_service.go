package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/toeic-session-service/internal/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportService struct {
	sessions SessionService
	logger   *slog.Logger
}

func NewExportService(sessions SessionService, logger *slog.Logger) ExportService {
	return &exportService{sessions: sessions, logger: logger}
}

// ExportSession renders a graded session as a workbook with a Summary and an
// Answers sheet.
func (s *exportService) ExportSession(ctx context.Context, userID, sessionID string) (*ExportFile, error) {
	result, err := s.sessions.Result(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, result); err != nil {
		return nil, err
	}
	if err := writeAnswersSheet(f, result); err != nil {
		return nil, err
	}
	// NewFile starts with Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Session exported", "session_id", sessionID, "user_id", userID, "answers", len(result.Graded))
	return &ExportFile{
		Filename:    fmt.Sprintf("session_%s.xlsx", sessionID),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

func writeSummarySheet(f *excelize.File, result *session.Result) error {
	const sheet = "Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]interface{}{
		{"Session", result.SessionID},
		{"Mode", string(result.Mode)},
		{"Ended by", string(result.Reason)},
		{"Finished at", result.FinishedAt.Format("2006-01-02 15:04:05")},
		{"Total", result.Summary.Total},
		{"Correct", result.Summary.Correct},
		{"Incorrect", result.Summary.Incorrect},
		{"Unanswered", result.Summary.Unanswered},
		{"Score (%)", result.Summary.Score},
	}
	if result.Timer != nil {
		rows = append(rows, []interface{}{"Time used (s)", int(result.Timer.TimeElapsed.Seconds())})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeAnswersSheet(f *excelize.File, result *session.Result) error {
	const sheet = "Answers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"Question", "Selected", "Correct answer", "Result"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, g := range result.Graded {
		outcome := "incorrect"
		switch {
		case g.IsNotAnswer:
			outcome = "unanswered"
		case g.IsCorrect:
			outcome = "correct"
		}
		row := []interface{}{g.Key.String(), string(g.Selected), string(g.Correct), outcome}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write answer row: %w", err)
		}
	}
	return nil
}
