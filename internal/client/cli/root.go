package cli

import (
	"context"
	"fmt"
)

// Root prints the banner and runs the REPL until exit or EOF.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to pdfdesk CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
