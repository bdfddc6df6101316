package rabbitmq_adapter

import (
	"fmt"

	"marketplace-service/internal/core/port"
	"marketplace-service/pkg/rabbitmq/rabbitmq_common"
)

// danglingKey - ключ для значения без пары.
const danglingKey = "!extra"

// PkgLoggerBridge пишет логи pkg/rabbitmq через LoggerPort сервиса.
type PkgLoggerBridge struct {
	logger port.LoggerPort
}

func NewPkgLoggerBridge(logger port.LoggerPort) rabbitmq_common.Logger {
	return &PkgLoggerBridge{logger: logger.WithFields(port.Fields{"component": "rabbitmq"})}
}

// pairsToFields раскладывает key/value пары. Ключ не-строка приводится через fmt.
func pairsToFields(kv []interface{}) port.Fields {
	if len(kv) == 0 {
		return nil
	}
	fields := make(port.Fields, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			fields[danglingKey] = kv[i]
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	return fields
}

func (b *PkgLoggerBridge) Debug(msg string, kv ...interface{}) { b.logger.Debug(msg, pairsToFields(kv)) }
func (b *PkgLoggerBridge) Info(msg string, kv ...interface{})  { b.logger.Info(msg, pairsToFields(kv)) }
func (b *PkgLoggerBridge) Warn(msg string, kv ...interface{})  { b.logger.Warn(msg, pairsToFields(kv)) }

func (b *PkgLoggerBridge) Error(err error, msg string, kv ...interface{}) {
	b.logger.Error(msg, err, pairsToFields(kv))
}
