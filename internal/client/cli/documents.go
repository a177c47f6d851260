package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) List(ctx context.Context) error {
	docs, err := a.docService.List(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No documents yet")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintln(a.out, d)
	}
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: upload <path>", ErrUsage)
	}
	doc, err := a.docService.Upload(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s as %s\n", doc.FileName, doc.ID)
	return nil
}

// Download saves a document into the given directory, or the current one.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: download <id> [dir]", ErrUsage)
	}

	dir := "."
	if len(args) == 2 {
		dir = args[1]
	}
	if fi, err := os.Stat(dir); err != nil {
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	path, err := a.docService.Download(ctx, args[0], dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete <id>", ErrUsage)
	}
	if err := a.docService.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
