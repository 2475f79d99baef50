package logger

import "context"

// Logger is the leveled, printf-style logger used across the bot.
// Fields attached to ctx with WithFields are appended to every record.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}
