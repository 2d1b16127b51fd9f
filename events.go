package playcore

// Events receives fire-and-forget notifications about the request lifecycle
// and authentication state. The client never consumes a return value, so
// implementations are free to drop, buffer or fan out as they like. They
// must not block for long, since serialized dispatch runs them inline.
type Events interface {
	RequestStarted(method, path string)
	RequestFinished(method, path string, ok bool, status int)
	TokenRefreshed(ok bool)
	BannedDetected(details any)
	AuthStateChanged(userID string)
}

// NopEvents discards every notification. It is the default sink.
type NopEvents struct{}

func (NopEvents) RequestStarted(method, path string)                  {}
func (NopEvents) RequestFinished(method, path string, ok bool, s int) {}
func (NopEvents) TokenRefreshed(ok bool)                              {}
func (NopEvents) BannedDetected(details any)                          {}
func (NopEvents) AuthStateChanged(userID string)                      {}

// CombineEvents fans notifications out to every sink in order.
func CombineEvents(sinks ...Events) Events {
	return multiEvents(sinks)
}

type multiEvents []Events

func (m multiEvents) RequestStarted(method, path string) {
	for _, e := range m {
		e.RequestStarted(method, path)
	}
}

func (m multiEvents) RequestFinished(method, path string, ok bool, status int) {
	for _, e := range m {
		e.RequestFinished(method, path, ok, status)
	}
}

func (m multiEvents) TokenRefreshed(ok bool) {
	for _, e := range m {
		e.TokenRefreshed(ok)
	}
}

func (m multiEvents) BannedDetected(details any) {
	for _, e := range m {
		e.BannedDetected(details)
	}
}

func (m multiEvents) AuthStateChanged(userID string) {
	for _, e := range m {
		e.AuthStateChanged(userID)
	}
}

// LogEvents mirrors every notification to a Logger at debug/info level.
type LogEvents struct {
	Logger Logger
}

func (l LogEvents) RequestStarted(method, path string) {
	l.Logger.Debug("request started", "method", method, "path", path)
}

func (l LogEvents) RequestFinished(method, path string, ok bool, status int) {
	l.Logger.Debug("request finished", "method", method, "path", path, "ok", ok, "status", status)
}

func (l LogEvents) TokenRefreshed(ok bool) {
	l.Logger.Info("token refreshed", "ok", ok)
}

func (l LogEvents) BannedDetected(details any) {
	l.Logger.Warn("banned account detected", "details", details)
}

func (l LogEvents) AuthStateChanged(userID string) {
	l.Logger.Info("auth state changed", "userID", userID)
}
