// Package policy holds the single ownership rule shared by every mutating
// resource operation: a resource may be changed by its owner or by the
// configured site owner, nobody else.
package policy

// CanMutate reports whether the actor may update or delete a resource owned
// by ownerID.
func CanMutate(actorID, ownerID string, isSiteOwner bool) bool {
	return actorID == ownerID || isSiteOwner
}
