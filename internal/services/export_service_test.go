package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/toeic-session-service/internal/models"
)

func TestExportService_ExportSession(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, SessionSettings{})
	f.lessonContent(t)
	f.repo.sessions.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repo.journeys.On("UpdateDayStatus", mock.Anything, mock.Anything, uint(1), models.ProgressCompleted).Return(nil)

	snap := f.startLesson(t)
	_, err := f.svc.Answer(ctx, "u1", snap.ID, &AnswerRequest{Key: "10", Letter: "A"})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, "u1", snap.ID)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, "u1", snap.ID)
	require.Error(t, err, "second question is unanswered")

	// Lessons keep the button disabled until the current question is answered.
	_, err = f.svc.Answer(ctx, "u1", snap.ID, &AnswerRequest{Key: "11", Letter: "B"})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, "u1", snap.ID)
	require.NoError(t, err)

	export := NewExportService(f.svc, testLogger())
	file, err := export.ExportSession(ctx, "u1", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "session_"+snap.ID+".xlsx", file.Filename)
	assert.Equal(t, xlsxContentType, file.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"Summary", "Answers"}, wb.GetSheetList())

	score, err := wb.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, "100", score)

	rows, err := wb.GetRows("Answers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Question", "Selected", "Correct answer", "Result"}, rows[0])
	assert.Equal(t, []string{"10", "A", "A", "correct"}, rows[1])
}

func TestExportService_UnfinishedSession(t *testing.T) {
	f := newSessionFixture(t, SessionSettings{})
	f.lessonContent(t)
	snap := f.startLesson(t)

	_, err := NewExportService(f.svc, testLogger()).ExportSession(context.Background(), "u1", snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFinished)
}
