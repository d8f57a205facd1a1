//go:build !windows

package sqlserver

// Registers the krb5 authenticator named by trusted connection strings.
import _ "github.com/microsoft/go-mssqldb/integratedauth/krb5"
