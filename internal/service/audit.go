package service

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-staff-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// emitAudit persists an audit entry. Failures are logged and never fail the caller.
func emitAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, source string, log *models.AuditLog) {
	if audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = source
	if err := audit.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to persist audit log", zap.String("action", log.Action), zap.Error(err))
	}
}

func auditSnapshot(value interface{}) []byte {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return payload
}

func auditActor(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	id := actor.UserID
	return &id
}

func auditResourceID(id int64) *string {
	value := strconv.FormatInt(id, 10)
	return &value
}
