package apiclient

import (
	"context"
	"net/http"

	"pos-terminal/internal/models"
)

func (c *Client) ListAuditLogs(ctx context.Context, token string) ([]models.AuditLog, error) {
	env, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/auditlogs",
		route:  "/api/auditlogs",
		token:  token,
	})
	if err != nil {
		return nil, err
	}

	var logs []models.AuditLog
	if err := decodeData(env, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
