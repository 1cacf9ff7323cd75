// Package controllers holds the application's operation layer. Every public
// operation runs through Execute, which gives the UI one uniform contract:
// lifecycle events on the bus, a loading flag, and an OperationResult that is
// always safe to display.
package controllers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/trrcms/trrcms/internal/apperrors"
	"github.com/trrcms/trrcms/internal/events"
	"github.com/trrcms/trrcms/internal/metrics"
	"github.com/trrcms/trrcms/internal/result"
)

// Base carries the shared machinery of every controller: the event bus, the
// logger, the loading flag, and the last error. Domain controllers embed it.
type Base struct {
	name   string
	bus    *events.Bus
	logger zerolog.Logger

	mu        sync.RWMutex
	loading   bool
	lastError string
}

// NewBase creates controller plumbing under the given controller name. The
// name appears in lifecycle events, logs, and metrics.
func NewBase(name string, bus *events.Bus, logger zerolog.Logger) Base {
	return Base{
		name:   name,
		bus:    bus,
		logger: logger.With().Str("controller", name).Logger(),
	}
}

// Bus exposes the event bus for subscribers.
func (b *Base) Bus() *events.Bus {
	return b.bus
}

// IsLoading reports whether an operation is currently running.
func (b *Base) IsLoading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

// LastError returns the message of the most recent failed operation, or ""
// after a success.
func (b *Base) LastError() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

func (b *Base) setLoading(loading bool) {
	b.mu.Lock()
	b.loading = loading
	b.mu.Unlock()
	b.bus.Publish(events.LoadingChanged, loading)
}

func (b *Base) setLastError(msg string) {
	b.mu.Lock()
	b.lastError = msg
	b.mu.Unlock()
}

// Execute runs one named operation under the uniform lifecycle:
//
//	operation.started(controller, operation)
//	loading.changed(true)
//	... fn ...
//	loading.changed(false)
//	operation.completed(controller, operation) + data.changed   on success
//	operation.error(controller, operation, message)             on failure
//
// Errors and panics from fn never escape; both become a failed
// OperationResult with a displayable message. The loading flag is cleared on
// every path.
func Execute[T any](b *Base, operation string, fn func() (T, error)) (res result.OperationResult[T]) {
	b.bus.Publish(events.OperationStarted, b.name, operation)
	b.setLoading(true)

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Str("operation", operation).Interface("panic", r).Msg("Operation panicked")
			res = result.Fail[T](
				fmt.Sprintf("Unexpected error: %v", r),
				"خطأ غير متوقع",
			)
			b.finish(operation, res.Success, res.Message)
		}
	}()

	data, err := fn()
	if err != nil {
		res = failureResult[T](err)
		b.logger.Warn().Str("operation", operation).Err(err).Msg("Operation failed")
		b.finish(operation, false, res.Message)
		return res
	}

	res = result.Ok(data)
	b.finish(operation, true, "")
	return res
}

// ExecuteMsg is Execute with explicit success messages for operations whose
// outcome the UI announces (create, submit, approve, and so on).
func ExecuteMsg[T any](b *Base, operation string, message, messageAr string, fn func() (T, error)) result.OperationResult[T] {
	res := Execute(b, operation, fn)
	if res.Success {
		res.Message = message
		res.MessageAr = messageAr
	}
	return res
}

func (b *Base) finish(operation string, success bool, errMsg string) {
	b.setLoading(false)
	if success {
		b.setLastError("")
		metrics.OperationsTotal.WithLabelValues(b.name, operation, "success").Inc()
		b.bus.Publish(events.OperationCompleted, b.name, operation)
		b.bus.Publish(events.DataChanged, b.name)
	} else {
		b.setLastError(errMsg)
		metrics.OperationsTotal.WithLabelValues(b.name, operation, "error").Inc()
		b.bus.Publish(events.OperationError, b.name, operation, errMsg)
	}
}

// failureResult flattens a typed error into a bilingual OperationResult.
// Validation errors additionally carry one entry per invalid field.
func failureResult[T any](err error) result.OperationResult[T] {
	var validation *apperrors.ErrValidation
	if errors.As(err, &validation) {
		return result.Fail[T]("Validation failed", "فشل التحقق من البيانات", validation.Fields...)
	}

	var notFound *apperrors.ErrNotFound
	if errors.As(err, &notFound) {
		return result.Fail[T](err.Error(), arabicNotFound(notFound.Resource))
	}

	var transition *apperrors.ErrStatusTransition
	if errors.As(err, &transition) {
		return result.Fail[T](err.Error(), "تغيير الحالة غير مسموح به")
	}

	var unavailable *apperrors.ErrBackendUnavailable
	if errors.As(err, &unavailable) {
		return result.Fail[T]("Cannot reach the central server", "تعذر الوصول إلى الخادم المركزي")
	}

	var unauthorized *apperrors.ErrUnauthorized
	if errors.As(err, &unauthorized) {
		return result.Fail[T](err.Error(), "غير مصرح")
	}

	return result.FailErr[T](err)
}

var arabicResourceNames = map[string]string{
	"claim":    "المطالبة غير موجودة",
	"Claim":    "المطالبة غير موجودة",
	"Person":   "الشخص غير موجود",
	"Unit":     "الوحدة غير موجودة",
	"Building": "المبنى غير موجود",
	"User":     "المستخدم غير موجود",
	"Survey":   "المسح غير موجود",
}

func arabicNotFound(resource string) string {
	if msg, ok := arabicResourceNames[resource]; ok {
		return msg
	}
	return "السجل غير موجود"
}
