package logger

import (
	"go.uber.org/zap"

	"github.com/teranos/obelisk/sym"
)

// Symbol-aware logging helpers.
// The symbol goes into a structured field, never into the message, so logs
// stay queryable by symbol:
//
//	log := logger.AddDBSymbol(base)
//	log.Debugw("Schema applied", logger.FieldPath, path)

// WithSymbol returns l tagged with symbol. A nil l yields a no-op logger.
func WithSymbol(l *zap.SugaredLogger, symbol string) *zap.SugaredLogger {
	return OrNop(l).With(FieldSymbol, symbol)
}

// AddDBSymbol tags a storage logger with the DB symbol (⊔)
func AddDBSymbol(l *zap.SugaredLogger) *zap.SugaredLogger {
	return WithSymbol(l, sym.DB)
}

// AddWatchSymbol tags a watcher logger with the Watch symbol (꩜)
func AddWatchSymbol(l *zap.SugaredLogger) *zap.SugaredLogger {
	return WithSymbol(l, sym.Watch)
}

// SymbolInfow logs on the global logger with any symbol
func SymbolInfow(symbol, msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, symbol}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}
