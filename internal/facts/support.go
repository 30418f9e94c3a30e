package facts

// Sentinels recorded when an optional read is not possible.
const (
	Unknown      = "Unknown"
	NotAvailable = "Not Available"
	NotSet       = "Not Set"
	NotInstalled = "Not Installed"
)

// Support is the tri-state result of a capability check.
type Support int

const (
	// SupportUnknown means the check itself could not run.
	SupportUnknown Support = iota
	// Supported means the capability is present.
	Supported
	// Unsupported means the check ran and the capability is absent.
	Unsupported
)

// SupportOf maps a definite check result to Supported or Unsupported.
func SupportOf(ok bool) Support {
	if ok {
		return Supported
	}
	return Unsupported
}

// String returns the display name of the state.
func (s Support) String() string {
	switch s {
	case Supported:
		return "supported"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Value renders the state as true, false or "Unknown".
func (s Support) Value() Value {
	switch s {
	case Supported:
		return Bool(true)
	case Unsupported:
		return Bool(false)
	default:
		return String(Unknown)
	}
}
