package worker

import (
	"github.com/auditkit/revision-service/internal/service"
)

// StartAuditWorker registers the event handlers that log changes and keep the
// audit table cache fresh.
func StartAuditWorker(auditLog *service.AuditLogService, audit *service.AuditService) {
	if auditLog != nil {
		auditLog.RegisterHandlers()
	}
	if audit != nil {
		audit.RegisterHandlers()
	}
}
