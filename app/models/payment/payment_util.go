package payment

// IsPending reports whether the payment still awaits confirmation.
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

// IsCompleted reports whether the payment confirmed successfully.
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// IsTerminal reports whether the payment reached a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// ValidKind reports whether kind names a known payment kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindRent, KindDeposit, KindDepositRegistration, KindSubscription:
		return true
	}
	return false
}
