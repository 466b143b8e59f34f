package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, userID, role, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("role", role),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogSwipe(ctx context.Context, userID, role, counterpartID, status, details string) {
	al.LogAction(ctx, userID, role, "swipe", "profile", counterpartID, status, details)
}

func (al *Logger) LogShareJobs(ctx context.Context, userID, role, matchID, status, details string) {
	al.LogAction(ctx, userID, role, "share_jobs", "match", matchID, status, details)
}

func (al *Logger) LogJobInterest(ctx context.Context, userID, role, jobPostingID, status, details string) {
	al.LogAction(ctx, userID, role, "job_interest", "job_posting", jobPostingID, status, details)
}

func (al *Logger) LogSchedule(ctx context.Context, userID, role, matchID, status, details string) {
	al.LogAction(ctx, userID, role, "schedule_interview", "match", matchID, status, details)
}

func (al *Logger) LogDenied(ctx context.Context, userID, role, reason string) {
	al.LogAction(ctx, userID, role, "access_denied", "api", "", "denied", reason)
}
