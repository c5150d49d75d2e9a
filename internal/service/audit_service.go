package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/apperror"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, action, userID string, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetAuditLogs retrieves paginated audit records with users pre-loaded,
// optionally narrowed by action type or acting user.
func (s *auditService) GetAuditLogs(ctx context.Context, action, userID string, page, limit int) ([]AuditLogResponse, int64, error) {
	filter := repository.AuditFilter{Action: action}
	if userID != "" {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return nil, 0, apperror.Validationf("invalid user id: %s", userID)
		}
		filter.UserID = &uid
	}

	logs, total, err := s.auditRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		entry := AuditLogResponse{
			ID:         l.ID.String(),
			Username:   "System",
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		}
		if l.User != nil {
			entry.Username = l.User.Username
		}
		if l.UserID != nil {
			entry.UserID = l.UserID.String()
		}
		res = append(res, entry)
	}
	return res, total, nil
}
