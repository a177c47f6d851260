// Package cli provides the interactive pdfdesk command-line client.
//
// It wires configuration, the HTTP API client, a token file and an
// interactive REPL. Typical flow: restore a saved session (or log in),
// then list, upload, download and delete PDFs.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or stdin is closed.
package cli
