// Package accounts manages tagflow users: registration with bcrypt-hashed
// passwords, login issuing signed bearer tokens, token resolution back to an
// auth.Identity, user listing, and the bootstrap admin created on daemon
// start.
package accounts
