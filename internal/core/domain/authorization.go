package domain

// CanAccess reports whether identity may act on a resource owned by ownerID.
// Admins bypass the ownership check.
func CanAccess(identity *Account, ownerID int64) bool {
	if identity == nil {
		return false
	}
	return identity.IsAdmin() || identity.ID == ownerID
}

// Authorize is CanAccess expressed as an error: ErrForbidden when denied.
// Callers must check that the resource exists before calling it, so a missing
// resource is always reported as not found rather than forbidden.
func Authorize(identity *Account, ownerID int64) error {
	if !CanAccess(identity, ownerID) {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin returns ErrUnauthorized for an absent identity and
// ErrForbidden unless identity carries the admin flag.
func RequireAdmin(identity *Account) error {
	if identity == nil {
		return ErrUnauthorized
	}
	if !identity.Admin {
		return ErrForbidden
	}
	return nil
}
