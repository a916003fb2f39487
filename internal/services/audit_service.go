package services

import (
	"context"

	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
	"gorm.io/gorm"
)

// AuditMeta identifies who triggered a mutation
type AuditMeta struct {
	Actor     string
	IPAddress string
	UserAgent string
}

type auditMetaKey struct{}

// WithAuditMeta attaches caller identity to ctx for audit entries
func WithAuditMeta(ctx context.Context, meta AuditMeta) context.Context {
	return context.WithValue(ctx, auditMetaKey{}, meta)
}

// AuditMetaFrom returns the caller identity carried by ctx, "system" when absent
func AuditMetaFrom(ctx context.Context) AuditMeta {
	meta, _ := ctx.Value(auditMetaKey{}).(AuditMeta)
	if meta.Actor == "" {
		meta.Actor = "system"
	}
	return meta
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry. Failures are logged and never abort the mutation
// being audited. A nil service is a no-op.
func (s *AuditService) Log(ctx context.Context, action, entity string, entityID uint, details string) {
	if s == nil || s.db == nil {
		return
	}

	meta := AuditMetaFrom(ctx)
	entry := &models.AuditLog{
		Actor:     meta.Actor,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Warn("audit log write failed", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// AuditQuery filters audit log listings
type AuditQuery struct {
	Limit    int
	Offset   int
	Entity   string
	EntityID uint
}

// List retrieves audit logs with filters, newest first
func (s *AuditService) List(ctx context.Context, query AuditQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if query.Entity != "" {
		db = db.Where("entity = ?", query.Entity)
	}
	if query.EntityID != 0 {
		db = db.Where("entity_id = ?", query.EntityID)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.Limit <= 0 {
		query.Limit = 50
	}
	result := db.Order("created_at desc").Limit(query.Limit).Offset(query.Offset).Find(&logs)
	return logs, total, result.Error
}
