// Package session owns the authentication state of erpctl: the bearer
// token, the logged-in identity and the login/logout/restore transitions.
//
// The Store is created once at startup, hydrated from durable storage and
// handed by reference to the components that need it. Storage is a
// write-through mirror; after Hydrate all reads go through memory.
//
// State machine:
//
//	Anonymous --login ok--> Authenticated
//	Authenticated --logout | 401 | restore failure--> Anonymous
//
// Loading is orthogonal to the two states and only reflects in-flight
// exchanges.
package session
