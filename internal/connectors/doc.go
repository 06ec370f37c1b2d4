// Package connectors holds the sources that course files are read from.
// coursedir reads a local directory tree and watches it for changes.
package connectors
