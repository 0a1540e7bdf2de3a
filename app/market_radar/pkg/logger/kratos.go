package logger

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

// kratosLogger 把 kratos 的 key/value 日志转发到 logrus
type kratosLogger struct {
	entry func() *logrus.Logger
}

// NewKratosLogger 返回一个写入全局 Log 的 kratos log.Logger
func NewKratosLogger() log.Logger {
	return &kratosLogger{entry: func() *logrus.Logger { return Log }}
}

var _ log.Logger = (*kratosLogger)(nil)

func (l *kratosLogger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	fields := make(logrus.Fields, len(keyvals)/2)
	var msg string
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields[key] = keyvals[i+1]
	}

	e := l.entry().WithFields(fields)
	switch level {
	case log.LevelDebug:
		e.Debug(msg)
	case log.LevelWarn:
		e.Warn(msg)
	case log.LevelError, log.LevelFatal:
		e.Error(msg)
	default:
		e.Info(msg)
	}
	return nil
}
