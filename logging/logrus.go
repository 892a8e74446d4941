package logging

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger 基于 logrus 的 Logger 实现，CLI 与服务进程使用。
type LogrusLogger struct {
	entry *logrus.Entry
}

// LogrusOptions logrus 构造选项
type LogrusOptions struct {
	Level  Level
	JSON   bool
	Output io.Writer
}

// NewLogrusLogger 创建 logrus 适配器
func NewLogrusLogger(opts LogrusOptions) *LogrusLogger {
	l := logrus.New()
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetLevel(toLogrusLevel(opts.Level))
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func toLogrusLevel(level Level) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func toLogrusFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out[f.Key] = err.Error()
			continue
		}
		out[f.Key] = f.Value
	}
	return out
}

func (l *LogrusLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.entry.WithContext(ctx).WithFields(toLogrusFields(fields)).Debug(msg)
}

func (l *LogrusLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.entry.WithContext(ctx).WithFields(toLogrusFields(fields)).Info(msg)
}

func (l *LogrusLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.entry.WithContext(ctx).WithFields(toLogrusFields(fields)).Warn(msg)
}

func (l *LogrusLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.entry.WithContext(ctx).WithFields(toLogrusFields(fields)).Error(msg)
}

func (l *LogrusLogger) WithFields(fields ...Field) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(toLogrusFields(fields))}
}
