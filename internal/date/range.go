package date

// Range is an inclusive span of days. A zero From or To leaves that side open.
type Range struct{ From, To Date }

// Contains reports whether d falls within r.
func (r Range) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Valid reports whether r is not inverted. Open ranges are always valid.
func (r Range) Valid() bool {
	return r.From.IsZero() || r.To.IsZero() || !r.From.After(r.To)
}

func (r Range) String() string {
	from, to := "-", "-"
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return from + ".." + to
}
