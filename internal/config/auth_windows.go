package config

// Windows resolves integrated authentication through SSPI when no user is given.
const trustedAuthenticator = ""
