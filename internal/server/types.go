package server

// TLSConfig locates the PEM files the server presents and trusts.  With
// CAFile set, clients must present a certificate signed by that CA
// (mutual TLS).
type TLSConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

// Enabled reports whether a certificate was configured.
func (c TLSConfig) Enabled() bool {
	return c.CertFile != "" || c.KeyFile != ""
}
