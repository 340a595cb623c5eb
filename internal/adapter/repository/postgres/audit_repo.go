package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// AuditFilter narrows an audit log listing.
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

// AuditRepository implements audit log persistence
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx inserts an audit log entry inside tx
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	var beforeStateJSON, afterStateJSON []byte

	if log.BeforeState != nil {
		beforeStateJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return err
		}
	}

	if log.AfterState != nil {
		afterStateJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, action, resource_type, resource_id, request_id,
			before_state, after_state, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = pgxTx.Exec(ctx, query,
		log.ID,
		log.UserID,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		beforeStateJSON,
		afterStateJSON,
		string(log.Status),
		log.ErrorMessage,
		log.CreatedAt,
	)

	return err
}

// List retrieves audit logs with filtering, newest first
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, user_id, action, resource_type, resource_id, request_id,
		       before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != "" {
		query += ` AND user_id = ` + arg(filter.UserID)
	}

	if filter.Action != "" {
		query += ` AND action = ` + arg(filter.Action)
	}

	if filter.ResourceType != "" {
		query += ` AND resource_type = ` + arg(filter.ResourceType)
	}

	if filter.ResourceID != "" {
		query += ` AND resource_id = ` + arg(filter.ResourceID)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log                             domain.AuditLog
			action, status                  string
			beforeStateJSON, afterStateJSON []byte
		)

		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&beforeStateJSON,
			&afterStateJSON,
			&status,
			&log.ErrorMessage,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		log.Action = domain.AuditAction(action)
		log.Status = domain.AuditStatus(status)

		if beforeStateJSON != nil {
			_ = json.Unmarshal(beforeStateJSON, &log.BeforeState)
		}

		if afterStateJSON != nil {
			_ = json.Unmarshal(afterStateJSON, &log.AfterState)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

// GetByResourceID retrieves all audit logs for a specific resource
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.List(ctx, AuditFilter{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
}
