package alert

// Actor identifies where an alert was raised.
type Actor struct {
	// Hostname is the machine name running the monitor.
	Hostname string
	// Username is the system user being monitored.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}
