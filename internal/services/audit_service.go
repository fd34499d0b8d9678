package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/heavenboards/user-service/internal/auditctx"
	"github.com/heavenboards/user-service/internal/models"
	"github.com/heavenboards/user-service/internal/repository"
	"github.com/heavenboards/user-service/pkg/logger"
	"github.com/heavenboards/user-service/pkg/metrics"
)

// Audit actions recorded by the services.
const (
	AuditActionRegister         = "auth.register"
	AuditActionAuthenticate     = "auth.authenticate"
	AuditActionInvitationCreate = "invitation.create"
	AuditActionInvitationAccept = "invitation.accept"
	AuditActionInvitationReject = "invitation.reject"
)

// AuditEntry captures a single audit event to persist. Empty request fields
// are filled from the actor stored on the context.
type AuditEntry struct {
	UserID    string
	Username  string
	Action    string
	Resource  string
	Result    string
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

// AuditService persists audit trail entries and enforces their retention.
type AuditService struct {
	store *repository.Store
	now   func() time.Time
	log   *zap.Logger
}

// NewAuditService constructs an AuditService on top of the store.
func NewAuditService(store *repository.Store) (*AuditService, error) {
	if store == nil {
		return nil, errors.New("audit service: store is required")
	}
	return &AuditService{
		store: store,
		now:   time.Now,
		log:   logger.WithModule("audit"),
	}, nil
}

// Log stores an audit entry, marshalling metadata into JSON form.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if strings.TrimSpace(entry.Result) == "" {
		return errors.New("audit service: result is required")
	}

	if actor, ok := auditctx.FromContext(ctx); ok {
		if entry.IPAddress == "" {
			entry.IPAddress = actor.IPAddress
		}
		if entry.UserAgent == "" {
			entry.UserAgent = actor.UserAgent
		}
		if entry.UserID == "" {
			entry.UserID = actor.UserID
		}
		if entry.Username == "" {
			entry.Username = actor.Username
		}
	}

	record := models.AuditLog{
		Action:    strings.TrimSpace(entry.Action),
		Resource:  strings.TrimSpace(entry.Resource),
		Result:    strings.TrimSpace(entry.Result),
		Username:  strings.TrimSpace(entry.Username),
		IPAddress: strings.TrimSpace(entry.IPAddress),
		UserAgent: strings.TrimSpace(entry.UserAgent),
	}
	if id := strings.TrimSpace(entry.UserID); id != "" {
		record.UserID = &id
	}
	if len(entry.Metadata) > 0 {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		record.Metadata = datatypes.JSON(encoded)
	}

	if err := s.store.AuditLogs().Create(ctx, &record); err != nil {
		return fmt.Errorf("audit service: create entry: %w", err)
	}
	return nil
}

// CleanupOlderThan removes audit logs older than the supplied retention window (in days).
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	removed, err := s.store.AuditLogs().DeleteOlderThan(ensureContext(ctx), cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", err)
	}

	metrics.AuditPruned.Add(float64(removed))
	return removed, nil
}

// recordAudit logs the supplied entry while tolerating audit failures.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		audit.log.Warn("audit entry dropped", zap.String("action", entry.Action), zap.Error(err))
	}
}
