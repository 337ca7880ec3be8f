package contexthelpers

type contextKey string

const currentUserIDContextKey = contextKey("currentUserID")
const currentPathContextKey = contextKey("currentPath")
