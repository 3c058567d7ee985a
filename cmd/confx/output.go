package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/termfx/confx/internal/bootstrap"
	"github.com/termfx/confx/internal/model"
	"github.com/termfx/confx/models"
)

// finishResult renders a completed operation and folds any error into
// the result for JSON mode.
func finishResult(res *model.Result, err error, flags *rootFlags, b *bootstrap.Bootstrapper) error {
	if err != nil {
		if flags.jsonOutput && res != nil {
			res.Error = err.Error()
			res.ErrorCode = model.CodeFor(err)
			printJSON(res)
			os.Exit(1)
		}
		return err
	}

	if flags.jsonOutput {
		printJSON(res)
		return nil
	}

	if flags.showDiff && res.OriginalContent != res.ModifiedContent {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(res.OriginalContent),
			B:        difflib.SplitLines(res.ModifiedContent),
			FromFile: "a/" + res.File,
			ToFile:   "b/" + res.File,
			Context:  flags.diffContext,
		}
		if text, derr := difflib.GetUnifiedDiffString(diff); derr == nil {
			fmt.Print(text)
		}
	}

	suffix := ""
	if res.DryRun {
		suffix = " (dry-run)"
	}
	switch res.Operation {
	case model.OpInit:
		fmt.Printf("✓ %s — created from template%s\n", res.File, suffix)
	case model.OpRotate:
		fmt.Printf("✓ %s — rotated %s (%d bytes)%s\n", res.File, res.Key, res.ByteLength, suffix)
	}

	if res.Warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", res.Warning)
	}

	if flags.dryRun {
		fmt.Fprintf(os.Stderr, "\n%s", b.Writer().Summary())
	}
	return nil
}

func printJSON(v any) {
	out, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting result to JSON: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func printHistory(rotations []models.Rotation, jsonOut bool) error {
	if jsonOut {
		printJSON(rotations)
		return nil
	}

	if len(rotations) == 0 {
		fmt.Println("No rotations recorded.")
		return nil
	}

	for _, r := range rotations {
		appended := ""
		if r.Appended {
			appended = " (appended)"
		}
		fmt.Printf("%s  %s  %d bytes  %.12s  %s%s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Key, r.ByteLength, r.ValueDigest, r.File, appended)
	}
	return nil
}
