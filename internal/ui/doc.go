// Package ui holds the color themes shared by the CLI and the dashboard.
// It is a leaf dependency so that business packages never import
// presentation code.
package ui
