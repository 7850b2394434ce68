package reservation

// Capability checks for the lifecycle transitions. Plain predicates over
// resolved actor and owner ids, so authorization rules stay testable without
// any transport or framework in the loop.

// CanView allows the requester, the owning landlord and admins to read a
// reservation.
func CanView(res *Reservation, propertyOwnerID, callerID string, callerIsAdmin bool) bool {
	if res == nil || callerID == "" {
		return false
	}
	if callerIsAdmin {
		return true
	}
	return res.RequesterID == callerID || (propertyOwnerID != "" && propertyOwnerID == callerID)
}

// CanRespond allows only the owner of the unit's property to approve or
// reject.
func CanRespond(propertyOwnerID, callerID string) bool {
	return callerID != "" && propertyOwnerID == callerID
}

// CanCancel allows only the original requester to cancel.
func CanCancel(res *Reservation, callerID string) bool {
	return res != nil && callerID != "" && res.RequesterID == callerID
}
