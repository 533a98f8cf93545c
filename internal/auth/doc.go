// Package auth models roles, capabilities, and caller identities, and provides
// the credential primitives behind them: bcrypt password hashing and signed
// HS256 bearer tokens.
//
// Authorization is a table lookup: each Role maps to a capability set and
// engine guards ask an Identity whether it holds a Capability. Admin holds
// every capability, so no code compares role strings directly.
package auth
