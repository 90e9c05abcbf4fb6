package domain

// Principal is the identity attached to a request after a presented token
// validates. RawToken is kept so logout can re-derive the stored digest.
type Principal struct {
	User     *User
	RawToken string
}

// CoachPrincipal is a capability-narrowed view of Principal. It can only be
// obtained through Principal.Coach, so a handler taking a CoachPrincipal is
// statically known to act on behalf of a coach.
type CoachPrincipal struct {
	Principal
}

// Coach narrows the principal to coach capability. Returns ErrForbidden
// when the underlying user is not a coach.
func (p Principal) Coach() (CoachPrincipal, error) {
	if p.User == nil || !p.User.IsCoach {
		return CoachPrincipal{}, ErrForbidden
	}
	return CoachPrincipal{Principal: p}, nil
}
