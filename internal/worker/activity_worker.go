package worker

import (
	"github.com/helpdesk-tools/ticket-dashboard/internal/service"
)

// StartActivityWorker registers the activity handlers.
func StartActivityWorker(activity *service.ActivityService) {
	if activity == nil {
		return
	}
	activity.RegisterHandlers()
}
