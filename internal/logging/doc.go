// Package logging provides a unified logging interface for the order
// processing simulator. It abstracts the underlying logging implementation,
// allowing consistent logging across components. Every sink is zerolog: JSON
// lines for the server, a console writer for terminals and a no-op logger for
// the dashboard.
package logging
