package contexthelpers

import (
	"context"
)

// CurrentUserID returns the session-scoped user id or empty string when the
// request has not passed the session middleware.
func CurrentUserID(ctx context.Context) string {
	userID, ok := ctx.Value(currentUserIDContextKey).(string)
	if !ok {
		return ""
	}

	return userID
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}
