package models

// CanView decides whether a viewer may see an owner's routine or session.
// viewerID 0 means anonymous. friended is the result of an accepted-friendship
// lookup in either direction; it is consulted only for friends visibility.
// The same rule applies to routines and sessions.
func CanView(ownerID int, visibility Visibility, viewerID int, friended bool) bool {
	if viewerID != 0 && viewerID == ownerID {
		return true
	}
	switch visibility {
	case VisibilityPublic:
		return true
	case VisibilityPrivate:
		return false
	case VisibilityFriends:
		return viewerID != 0 && friended
	}
	return false
}
