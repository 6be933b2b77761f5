package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/courtside/courtside-api/pkg/errors"
	"github.com/courtside/courtside-api/pkg/export"
)

// exportHistoryLimit bounds one export to a sane number of rows.
const exportHistoryLimit = 5000

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a goal's progress history as a CSV or PDF download.
type ExportService struct {
	progress *ProgressService
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(progress *ProgressService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{progress: progress, csv: csv, pdf: pdf, logger: logger}
}

// Export renders the goal's full history in the requested format.
func (s *ExportService) Export(ctx context.Context, goalID, format string) (*ExportFile, error) {
	history, err := s.progress.History(ctx, goalID, exportHistoryLimit, 0)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"calculated_at", "session_id", "actual_value", "target_value", "delta", "status"},
		Rows:    make([][]string, 0, len(history.Progress)),
	}
	for _, record := range history.Progress {
		dataset.Rows = append(dataset.Rows, []string{
			record.CalculatedAt.Format(time.RFC3339),
			record.SessionID,
			strconv.FormatFloat(record.ActualValue, 'f', -1, 64),
			strconv.FormatFloat(record.TargetValue, 'f', -1, 64),
			strconv.FormatFloat(record.Delta, 'f', -1, 64),
			string(record.Status),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "csv", "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("goal-progress-%s-%s.csv", goalID, stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		title := fmt.Sprintf("Goal Progress - %s", history.Goal.Name)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("goal-progress-%s-%s.pdf", goalID, stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
