// Command confx bootstraps an application's environment config file from
// its checked-in template and rotates secret keys in place.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/termfx/confx/db"
	"github.com/termfx/confx/internal/bootstrap"
	"github.com/termfx/confx/internal/model"
)

type rootFlags struct {
	configPath   string
	templatePath string
	dryRun       bool
	showDiff     bool
	diffContext  int
	jsonOutput   bool
	backup       bool
	auditDB      string
	noAudit      bool
	debug        bool
}

func main() {
	flags := &rootFlags{}
	cmd := newRootCmd(flags)
	if err := cmd.Execute(); err != nil {
		printFatal(err, flags.jsonOutput)
	}
}

func newRootCmd(flags *rootFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "confx",
		Short:         "Bootstrap and rotate secrets in a KEY=VALUE config file",
		Long:          "confx copies a checked-in sample config into place and rotates secret keys\nwith fresh cryptographically random, base64-encoded values.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", bootstrap.DefaultConfigPath, "Path to the config file.")
	pf.StringVarP(&flags.templatePath, "template", "t", bootstrap.DefaultTemplatePath, "Path to the sample template file.")
	pf.BoolVarP(&flags.dryRun, "dry-run", "d", false, "Perform a trial run without writing any files.")
	pf.BoolVarP(&flags.showDiff, "diff", "D", false, "Show a unified diff of the changes.")
	pf.IntVarP(&flags.diffContext, "diff-context", "C", 3, "Lines of context for the diff.")
	pf.BoolVarP(&flags.jsonOutput, "json", "j", false, "Output results in JSON format.")
	pf.BoolVarP(&flags.backup, "backup", "b", false, "Keep a timestamped backup of the previous file.")
	pf.StringVar(&flags.auditDB, "audit-db", "", "Path to the rotation audit database (default: .confx/confx.db).")
	pf.BoolVar(&flags.noAudit, "no-audit", false, "Disable the rotation audit trail.")
	pf.BoolVar(&flags.debug, "debug", false, "Enable verbose database logging.")

	root.AddCommand(
		newCreateConfigCmd(flags),
		newRotateCmd(flags),
		newBaseKeyCmd(flags),
		newCloakKeyCmd(flags),
		newHistoryCmd(flags),
	)

	return root
}

func newCreateConfigCmd(flags *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "create-config",
		Aliases: []string{"create_config"},
		Short:   "Copy the sample template into place as the config file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := bootstrap.New(bootstrap.Options{
				ConfigPath:   flags.configPath,
				TemplatePath: flags.templatePath,
				Force:        force,
				DryRun:       flags.dryRun,
				Backup:       flags.backup,
			})
			res, err := b.InitializeConfig(cmd.Context())
			return finishResult(res, err, flags, b)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file.")
	return cmd
}

func newRotateCmd(flags *rootFlags) *cobra.Command {
	var (
		key      string
		nbytes   int
		appendOK bool
	)

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate an arbitrary key with fresh random data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRotate(cmd.Context(), flags, key, nbytes, appendOK)
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Key name to rotate. (Required)")
	cmd.Flags().IntVarP(&nbytes, "bytes", "n", 32, "Number of random bytes to generate.")
	cmd.Flags().BoolVarP(&appendOK, "append", "a", false, "Append the key line when it is absent instead of failing.")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newBaseKeyCmd(flags *rootFlags) *cobra.Command {
	var appendOK bool

	cmd := &cobra.Command{
		Use:     "base-key",
		Aliases: []string{"base_key"},
		Short:   fmt.Sprintf("Rotate %s with %d random bytes", bootstrap.KeySecretBase, bootstrap.SecretBaseBytes),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRotate(cmd.Context(), flags, bootstrap.KeySecretBase, bootstrap.SecretBaseBytes, appendOK)
		},
	}

	cmd.Flags().BoolVarP(&appendOK, "append", "a", false, "Append the key line when it is absent instead of failing.")
	return cmd
}

func newCloakKeyCmd(flags *rootFlags) *cobra.Command {
	var appendOK bool

	cmd := &cobra.Command{
		Use:     "cloak-key",
		Aliases: []string{"cloak_key"},
		Short:   fmt.Sprintf("Rotate %s with %d random bytes", bootstrap.KeyCloak, bootstrap.CloakBytes),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRotate(cmd.Context(), flags, bootstrap.KeyCloak, bootstrap.CloakBytes, appendOK)
		},
	}

	cmd.Flags().BoolVarP(&appendOK, "append", "a", false, "Append the key line when it is absent instead of failing.")
	return cmd
}

func runRotate(ctx context.Context, flags *rootFlags, key string, nbytes int, appendOK bool) error {
	audit, err := openAudit(flags)
	if err != nil {
		// The audit trail is best-effort; rotation still proceeds.
		fmt.Fprintf(os.Stderr, "Warning: audit trail unavailable: %v\n", err)
	}

	b := bootstrap.New(bootstrap.Options{
		ConfigPath: flags.configPath,
		Append:     appendOK,
		DryRun:     flags.dryRun,
		Backup:     flags.backup,
		AuditDB:    audit,
	})
	res, rerr := b.RotateKey(ctx, key, nbytes)
	return finishResult(res, rerr, flags, b)
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recorded rotation audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			audit, err := openAudit(flags)
			if err != nil {
				return err
			}
			if audit == nil {
				return fmt.Errorf("audit trail is disabled")
			}

			rotations, err := db.ListRotations(audit, limit)
			if err != nil {
				return err
			}
			return printHistory(rotations, flags.jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries to show, 0 means all.")
	return cmd
}

// openAudit connects to the audit database, honoring --no-audit. The
// default database lives next to the config file.
func openAudit(flags *rootFlags) (*gorm.DB, error) {
	if flags.noAudit {
		return nil, nil
	}

	dsn := flags.auditDB
	if dsn == "" {
		dsn = filepath.Join(filepath.Dir(flags.configPath), ".confx", "confx.db")
	}
	return db.Connect(dsn, flags.debug)
}

func printFatal(err error, jsonOut bool) {
	if jsonOut {
		fmt.Println(model.WrapCLI(err).JSON())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
