// Package secrets redacts credentials from text before it leaves the
// process: envelope messages, error details, and log lines.
package secrets
