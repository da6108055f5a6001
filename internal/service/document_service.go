package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var documentTracer = otel.Tracer("service/documents")

// DocumentService shares uploaded files between roles.
type DocumentService struct {
	store  port.DocumentStore
	files  port.FileStorage
	bucket string
	logger *zap.Logger
}

func NewDocumentService(store port.DocumentStore, files port.FileStorage, bucket string, logger *zap.Logger) *DocumentService {
	return &DocumentService{store: store, files: files, bucket: bucket, logger: logger}
}

// Share uploads the file as "<unix-millis>-<name>" and records the share.
func (s *DocumentService) Share(ctx context.Context, actor domain.Identity, in domain.ShareDocumentInput) (*domain.Document, error) {
	ctx, span := documentTracer.Start(ctx, "DocumentService.Share")
	defer span.End()

	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)
	switch {
	case subject == "":
		return nil, &domain.ErrValidation{Field: "subject", Message: "is required"}
	case message == "":
		return nil, &domain.ErrValidation{Field: "message", Message: "is required"}
	case in.File == nil || in.File.Body == nil:
		return nil, &domain.ErrValidation{Field: "file", Message: "is required"}
	case len(in.SharedWith) == 0:
		return nil, &domain.ErrValidation{Field: "sharedWith", Message: "select at least one role"}
	}
	for _, r := range in.SharedWith {
		if _, ok := domain.ParseRole(string(r)); !ok {
			return nil, &domain.ErrValidation{Field: "sharedWith", Message: "unknown role " + string(r)}
		}
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFileName(in.File.FileName))
	if err := s.files.Upload(ctx, s.bucket, name, in.File.ContentType, in.File.Body); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	doc, err := s.store.CreateDocument(ctx, &domain.Document{
		ID:         uuid.NewString(),
		Subject:    subject,
		Message:    message,
		ImageURL:   s.files.PublicURL(s.bucket, name),
		SharedWith: in.SharedWith,
		SharedBy:   actor.Email,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record document: %w", err)
	}

	s.logger.Info("document shared",
		zap.String("id", doc.ID),
		zap.String("object", name),
		zap.String("shared_by", actor.Email),
	)
	return doc, nil
}

// List returns what actor shared and what was shared with actor's role.
func (s *DocumentService) List(ctx context.Context, actor domain.Identity) (*domain.DocumentInbox, error) {
	ctx, span := documentTracer.Start(ctx, "DocumentService.List")
	defer span.End()

	inbox := &domain.DocumentInbox{}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.ListDocuments(gCtx, domain.DocumentFilter{SharedBy: actor.Email})
		inbox.SharedByYou = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.store.ListDocuments(gCtx, domain.DocumentFilter{SharedWith: actor.Role})
		inbox.SharedToYou = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return inbox, nil
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}
