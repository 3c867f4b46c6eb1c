package sl

import (
	"errors"
	"log/slog"
)

// Err creates the "error" attribute for err. A nil error yields an empty attribute, which handlers drop.
// When err wraps a slog.LogValuer that logs as a group, the attribute becomes a group holding the
// message under "msg" followed by the error's own attributes.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	var detail slog.LogValuer
	if errors.As(err, &detail) {
		if value := detail.LogValue().Resolve(); value.Kind() == slog.KindGroup {
			attrs := append([]slog.Attr{slog.String("msg", err.Error())}, value.Group()...)
			return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
		}
	}

	return slog.String("error", err.Error())
}
