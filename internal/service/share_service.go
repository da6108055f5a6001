package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var shareTracer = otel.Tracer("service/shares")

// ShareService records donation reports shared with outside parties.
type ShareService struct {
	reports port.ReportStore
	logger  *zap.Logger
}

func NewShareService(reports port.ReportStore, logger *zap.Logger) *ShareService {
	return &ShareService{reports: reports, logger: logger}
}

func (s *ShareService) Share(ctx context.Context, actor domain.Identity, reportID string, target domain.ShareTarget, notes string) (*domain.ExternalReport, error) {
	ctx, span := shareTracer.Start(ctx, "ShareService.Share")
	defer span.End()

	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return nil, &domain.ErrValidation{Field: "reportId", Message: "is required"}
	}
	if !domain.ValidShareTarget(target) {
		return nil, &domain.ErrValidation{Field: "sharedTo", Message: "must be auditor or government"}
	}

	if _, err := s.reports.GetReport(ctx, reportID); err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	share, err := s.reports.CreateExternalReport(ctx, &domain.ExternalReport{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		Notes:     strings.TrimSpace(notes),
		SharedTo:  target,
		SharedBy:  actor.Email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("share report: %w", err)
	}

	s.logger.Info("report shared externally",
		zap.String("report_id", reportID),
		zap.String("shared_to", string(target)),
		zap.String("shared_by", actor.Email),
	)
	return share, nil
}

func (s *ShareService) List(ctx context.Context) ([]domain.ExternalReport, error) {
	ctx, span := shareTracer.Start(ctx, "ShareService.List")
	defer span.End()

	rows, err := s.reports.ListExternalReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return rows, nil
}
