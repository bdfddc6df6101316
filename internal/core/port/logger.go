package port

// Fields - структурированные данные для записи в лог.
type Fields map[string]interface{}

// LoggerPort абстрагирует ядро приложения от конкретной реализации логгера.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error записывает ошибку вместе с объектом error (может быть nil).
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)
	// WithFields возвращает новый логгер с добавленными полями.
	WithFields(fields Fields) LoggerPort
}
