package supervisor

import (
	"fmt"

	"github.com/spotifreak/spotifreak/l3"
)

// boundLogger prefixes every message with a job's id and type, satisfying
// spec.md §4.3.3's "logger bound to {sync_id, sync_type}" requirement. l3's
// Logger has no structured-field support, so binding means formatting a
// prefix once and delegating.
type boundLogger struct {
	inner  l3.Logger
	prefix string
}

func bindLogger(inner l3.Logger, syncID, syncType string) l3.Logger {
	return &boundLogger{inner: inner, prefix: fmt.Sprintf("[%s:%s] ", syncID, syncType)}
}

func (b *boundLogger) Error(a ...interface{})            { b.inner.Error(b.prepend(a)...) }
func (b *boundLogger) Warn(a ...interface{})              { b.inner.Warn(b.prepend(a)...) }
func (b *boundLogger) Info(a ...interface{})              { b.inner.Info(b.prepend(a)...) }
func (b *boundLogger) Debug(a ...interface{})             { b.inner.Debug(b.prepend(a)...) }
func (b *boundLogger) Trace(a ...interface{})             { b.inner.Trace(b.prepend(a)...) }
func (b *boundLogger) ErrorF(f string, a ...interface{})  { b.inner.ErrorF(b.prefix+f, a...) }
func (b *boundLogger) WarnF(f string, a ...interface{})   { b.inner.WarnF(b.prefix+f, a...) }
func (b *boundLogger) InfoF(f string, a ...interface{})   { b.inner.InfoF(b.prefix+f, a...) }
func (b *boundLogger) DebugF(f string, a ...interface{})  { b.inner.DebugF(b.prefix+f, a...) }
func (b *boundLogger) TraceF(f string, a ...interface{})  { b.inner.TraceF(b.prefix+f, a...) }

func (b *boundLogger) prepend(a []interface{}) []interface{} {
	return append([]interface{}{b.prefix}, a...)
}
