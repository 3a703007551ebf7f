package models

// ConnectivityState is ephemeral and never persisted. Consumers gate on it;
// nobody mutates it.
type ConnectivityState struct {
	Online bool

	// Metered reports the configured connection class; large downloads may
	// be deferred on metered links.
	Metered bool
}
