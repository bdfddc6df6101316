package rabbitmq_common

// Logger - минимальный интерфейс логгера pkg-уровня, не зависящий от сервисов.
// Сервис подключает свой логгер через адаптер.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(err error, msg string, keysAndValues ...interface{})
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{})        {}
func (discardLogger) Info(string, ...interface{})         {}
func (discardLogger) Warn(string, ...interface{})         {}
func (discardLogger) Error(error, string, ...interface{}) {}

// LoggerOrDiscard подставляет пустой логгер вместо nil.
func LoggerOrDiscard(l Logger) Logger {
	if l == nil {
		return discardLogger{}
	}
	return l
}
