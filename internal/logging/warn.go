package logging

import "log/slog"

// warnDefaults fill the triage fields a warning did not set itself. Every
// skipped file or degraded epoch should say what happened to the photos.
var warnDefaults = []Attr{
	String(FieldErrorHint, "see the run log for the failing path"),
	String(FieldImpact, "sort completed with warnings"),
}

// WarnWithContext logs msg at warn level tagged with eventType. Missing
// error_hint and impact fields are filled from warnDefaults.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+len(warnDefaults)+1)
	if !hasKey(attrs, FieldEventType) {
		args = append(args, String(FieldEventType, eventType))
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	for _, d := range warnDefaults {
		if !hasKey(attrs, d.Key) {
			args = append(args, d)
		}
	}
	logger.Warn(msg, args...)
}
