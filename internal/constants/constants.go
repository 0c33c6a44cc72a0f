package constants

import "time"

// Context keys
const (
	ContextKeyUser      = "user"
	ContextKeyRequestID = "request_id"

	HeaderRequestID = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 6
	DefaultTokenTTL   = 168 * time.Hour
	BearerPrefix      = "Bearer "
	TokenQueryParam   = "token"
)

// Activity
const (
	ActivityFeedLimit = 50

	ActionTaskCreated       = "Task Created"
	ActionTaskStatusUpdated = "Task Status Updated"
	ActionProjectCreated    = "Project Created"
)

// Real-time events
const (
	EventTaskCreated  = "task-created"
	EventTaskUpdated  = "task-updated"
	EventJoinProject  = "join-project"
	EventLeaveProject = "leave-project"

	ProjectChannelPrefix = "project-"
)

// MaxAIGeneratedTasks caps how many drafts a single suggestion request may return
const MaxAIGeneratedTasks = 20
