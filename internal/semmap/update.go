package semmap

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// UpdateOptions configure Update.
type UpdateOptions struct {
	// DocPath is the document to reconcile in place.
	DocPath string
	// Root is the directory to scan. Empty means the document's directory.
	Root string
	// Scan carries the scan contract; its Root is replaced by Root.
	Scan ScanOptions
	// DryRun computes the result without writing.
	DryRun bool
}

// UpdateResult is the outcome of an update.
type UpdateResult struct {
	Report   ReconcileReport
	Document *Document
	Warnings []Warning
	// Changed is set when the encoded document differs from the file on disk.
	Changed bool
}

// Update parses the document at DocPath, regenerates from Root, reconciles the
// two and writes the merged document back atomically when its bytes changed.
func Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	if opts.DocPath == "" {
		return nil, fmt.Errorf("%w: no document path", ErrNoDocument)
	}
	old, original, err := ReadDocument(opts.DocPath)
	if err != nil {
		return nil, err
	}

	root := opts.Root
	if root == "" {
		root = filepath.Dir(opts.DocPath)
	}
	scan := opts.Scan
	scan.Root = root
	scan.ExcludeFiles = append(append([]string(nil), scan.ExcludeFiles...), opts.DocPath)
	if scan.ProjectName == "" {
		scan.ProjectName = old.ProjectName
	}
	fresh, err := Generate(ctx, scan)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	prefix, err := ScanPrefix(filepath.Dir(opts.DocPath), root)
	if err != nil {
		return nil, err
	}
	merged, report := Reconcile(old, fresh.Document, prefix)

	encoded, err := CodecForPath(opts.DocPath).Encode(merged)
	if err != nil {
		return nil, err
	}
	result := &UpdateResult{
		Report:   report,
		Document: merged,
		Warnings: fresh.Warnings,
		Changed:  !bytes.Equal(encoded, original),
	}

	log := scan.logger()
	log.Info("reconciled semantic map",
		slog.String("file", opts.DocPath),
		slog.String("prefix", prefix),
		slog.Int("added", len(report.Added)),
		slog.Int("removed", len(report.Removed)))

	if opts.DryRun || !result.Changed {
		return result, nil
	}
	if err := WriteFileAtomic(opts.DocPath, encoded); err != nil {
		return nil, err
	}
	return result, nil
}
