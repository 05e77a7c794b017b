// Package oracle talks to the external text-inference service that judges
// headers, column types and string values during cleaning.
//
// The service is treated as fallible and untrusted. Every call may fail or
// return nonsense, so callers translate errors into "no judgment" and fall
// back to mechanical behavior; nothing in this package retries.
//
// Client speaks the OpenAI-compatible chat-completions protocol and can route
// its traffic through a SOCKS5 proxy. Unavailable stands in when no API key
// is configured, and Func adapts a plain function for tests.
package oracle
