package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs one line per RPC
// with the procedure, session ID, protocol, duration and outcome. Expected
// failures (a *connect.Error) log at warn level, anything else at error.
// Place it after RequireSession so the session ID is in the context.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("protocol", req.Peer().Protocol),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if sessionID := GetSessionID(ctx); sessionID != "" {
				attrs = append(attrs, slog.String("session_id", sessionID))
			}

			level, msg := slog.LevelInfo, "RPC ok"
			if err != nil {
				msg = "RPC error"
				attrs = append(attrs, slog.String("code", connect.CodeOf(err).String()))
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					level = slog.LevelWarn
					attrs = append(attrs, slog.String("error", connectErr.Message()))
				} else {
					level = slog.LevelError
					attrs = append(attrs, slog.Any("error", err))
				}
			}
			slog.LogAttrs(ctx, level, msg, attrs...)

			return resp, err
		}
	}
}
