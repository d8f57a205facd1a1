//go:build !windows

package config

// Elsewhere integrated authentication goes through Kerberos, using the ticket
// cache of the current user.
const trustedAuthenticator = "krb5"
