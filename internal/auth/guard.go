package auth

import "usermgmt/internal/models"

// Authorize reports whether the caller may perform an action restricted to
// requiredRole. The decision is made against the caller's stored role, not
// token claims, and fails closed when no caller record was resolved.
func Authorize(caller *models.User, requiredRole string) bool {
	return caller != nil && caller.Role == requiredRole
}
