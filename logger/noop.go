package logger

// noop discards everything. It is the default Logger for library code
// so that importing mailtree never forces a logging framework on a
// caller that didn't ask for one.
type noop struct{}

// NewNoOp returns a Logger that discards every call.
func NewNoOp() Logger { return noop{} }

func (noop) Panicln(v ...any)               {}
func (noop) Panicf(format string, v ...any) {}
func (noop) Fatalln(v ...any)               {}
func (noop) Fatalf(format string, v ...any) {}
func (noop) Errorln(v ...any)               {}
func (noop) Errorf(format string, v ...any) {}
func (noop) Warnln(v ...any)                {}
func (noop) Warnf(format string, v ...any)  {}
func (noop) Infoln(v ...any)                {}
func (noop) Infof(format string, v ...any)  {}
func (noop) Debugln(v ...any)               {}
func (noop) Debugf(format string, v ...any) {}
func (noop) Traceln(v ...any)               {}
func (noop) Tracf(format string, v ...any)  {}
