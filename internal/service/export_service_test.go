package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	goals, metrics, sessions, store, evaluator, notifier := newProgressFixture()
	store.records = []models.ProgressRecord{
		{
			ID:           "rec-1",
			GoalID:       "goal-1",
			SessionID:    "session-1",
			ActualValue:  55,
			TargetValue:  50,
			Delta:        5,
			Status:       models.StatusMet,
			CalculatedAt: time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
		},
	}
	store.total = 1
	progress := newProgressService(goals, metrics, sessions, store, evaluator, notifier)
	return NewExportService(progress, nil, nil, nil)
}

func TestExportServiceCSV(t *testing.T) {
	service := newExportFixture(t)

	file, err := service.Export(context.Background(), "goal-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Data)
	assert.Contains(t, body, "calculated_at,session_id,actual_value,target_value,delta,status")
	assert.Contains(t, body, "2026-03-14T19:30:00Z,session-1,55,50,5,MET")
}

func TestExportServiceDefaultsToCSV(t *testing.T) {
	service := newExportFixture(t)

	file, err := service.Export(context.Background(), "goal-1", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportServicePDF(t *testing.T) {
	service := newExportFixture(t)

	file, err := service.Export(context.Background(), "goal-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	service := newExportFixture(t)

	_, err := service.Export(context.Background(), "goal-1", "xlsx")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportServiceUnknownGoal(t *testing.T) {
	service := newExportFixture(t)

	_, err := service.Export(context.Background(), "missing", "csv")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
