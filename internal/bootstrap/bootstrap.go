// Package bootstrap implements the config bootstrap operations: creating
// the config file from its checked-in template and rotating secret keys
// in place.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/termfx/confx/db"
	"github.com/termfx/confx/internal/envfile"
	"github.com/termfx/confx/internal/model"
	"github.com/termfx/confx/internal/secret"
	"github.com/termfx/confx/internal/util"
	"github.com/termfx/confx/internal/writer"
	"github.com/termfx/confx/models"
)

// Default file names, matching the layout the downstream application
// ships with.
const (
	DefaultTemplatePath = "wanderer-conf.env.sample"
	DefaultConfigPath   = "wanderer-conf.env"
)

// Managed keys and their rotation byte lengths.
const (
	KeySecretBase = "SECRET_KEY_BASE"
	KeyCloak      = "CLOAK_KEY"

	SecretBaseBytes = 48
	CloakBytes      = 32
)

// Options configures a Bootstrapper.
type Options struct {
	ConfigPath   string
	TemplatePath string
	Force        bool // overwrite an existing config file on init
	Append       bool // append a missing key line instead of failing
	DryRun       bool
	Backup       bool

	// AuditDB records rotations when non-nil. Audit failures after a
	// successful write surface as a Result warning, not an error.
	AuditDB *gorm.DB
}

// Bootstrapper performs one-shot operations on the config file.
type Bootstrapper struct {
	opts Options
	w    writer.Writer
}

// New creates a Bootstrapper with the appropriate writer for the
// configured mode.
func New(opts Options) *Bootstrapper {
	if opts.ConfigPath == "" {
		opts.ConfigPath = DefaultConfigPath
	}
	if opts.TemplatePath == "" {
		opts.TemplatePath = DefaultTemplatePath
	}

	var w writer.Writer
	if opts.DryRun {
		w = writer.NewDryRunWriter()
	} else {
		w = writer.NewDiskWriter(opts.Backup)
	}

	return &Bootstrapper{opts: opts, w: w}
}

// Writer exposes the underlying writer for summary output.
func (b *Bootstrapper) Writer() writer.Writer {
	return b.w
}

// InitializeConfig copies the template file to the config path. An
// existing config file is refused unless Force is set.
func (b *Bootstrapper) InitializeConfig(ctx context.Context) (*model.Result, error) {
	res := &model.Result{
		Operation: model.OpInit,
		File:      b.opts.ConfigPath,
		DryRun:    b.opts.DryRun,
	}

	tmplInfo, err := os.Stat(b.opts.TemplatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", model.ErrTemplateNotFound, b.opts.TemplatePath)
		}
		return res, fmt.Errorf("stat template %s: %w", b.opts.TemplatePath, err)
	}

	if _, err := os.Stat(b.opts.ConfigPath); err == nil && !b.opts.Force {
		return res, fmt.Errorf("%w: %s (use --force to overwrite)", model.ErrConfigExists, b.opts.ConfigPath)
	}

	content, err := os.ReadFile(b.opts.TemplatePath)
	if err != nil {
		return res, fmt.Errorf("reading template %s: %w", b.opts.TemplatePath, err)
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := b.w.WriteFile(b.opts.ConfigPath, content, tmplInfo.Mode().Perm()); err != nil {
		return res, err
	}

	res.Modified = true
	res.ModifiedSHA1 = util.SHA1Hex(content)
	res.ModifiedContent = string(content)
	return res, nil
}

// RotateKey replaces the value of key with nbytes of fresh random data,
// base64-encoded. Exactly one line changes; every other byte of the
// file is preserved.
func (b *Bootstrapper) RotateKey(ctx context.Context, key string, nbytes int) (*model.Result, error) {
	res := &model.Result{
		Operation:  model.OpRotate,
		File:       b.opts.ConfigPath,
		Key:        key,
		ByteLength: nbytes,
		DryRun:     b.opts.DryRun,
	}

	info, err := os.Stat(b.opts.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w: %s (run create-config first)", model.ErrConfigNotFound, b.opts.ConfigPath)
		}
		return res, fmt.Errorf("stat config %s: %w", b.opts.ConfigPath, err)
	}

	original, err := os.ReadFile(b.opts.ConfigPath)
	if err != nil {
		return res, fmt.Errorf("reading config %s: %w", b.opts.ConfigPath, err)
	}
	res.OriginalSHA1 = util.SHA1Hex(original)
	res.OriginalContent = string(original)

	encoded, err := secret.Generate(nbytes)
	if err != nil {
		return res, err
	}

	f := envfile.Parse(original)
	appended := false
	if err := f.SetKey(key, encoded); err != nil {
		if errors.Is(err, model.ErrKeyNotFound) && b.opts.Append {
			f.AppendKey(key, encoded)
			appended = true
		} else {
			return res, err
		}
	}

	modified := f.Render()
	if err := verifyRendered(f, key, encoded); err != nil {
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	// The file must not have changed between our read and the write.
	if after, err := os.Stat(b.opts.ConfigPath); err == nil {
		if writer.RaceDetected(info, after) {
			return res, fmt.Errorf("%w: %s", model.ErrWriteRace, b.opts.ConfigPath)
		}
	}

	if err := b.w.WriteFile(b.opts.ConfigPath, modified, info.Mode().Perm()); err != nil {
		return res, err
	}

	res.Modified = true
	res.ValueDigest = secret.Digest(encoded)
	res.ModifiedSHA1 = util.SHA1Hex(modified)
	res.ModifiedContent = string(modified)

	if b.opts.AuditDB != nil && !b.opts.DryRun {
		rec := &models.Rotation{
			File:        b.opts.ConfigPath,
			Key:         key,
			ByteLength:  nbytes,
			ValueDigest: res.ValueDigest,
			Appended:    appended,
			BaseDigest:  res.OriginalSHA1,
			AfterDigest: res.ModifiedSHA1,
		}
		if err := db.RecordRotation(b.opts.AuditDB, rec); err != nil {
			res.Warning = fmt.Sprintf("rotation succeeded but audit record failed: %v", err)
		}
	}

	return res, nil
}

// verifyRendered confirms the rendered file resolves key to the value we
// just wrote, using the same dotenv semantics the downstream consumer
// applies.
func verifyRendered(f *envfile.File, key, want string) error {
	got, ok := f.Lookup(key)
	if !ok {
		return fmt.Errorf("rendered config does not resolve %s", key)
	}
	if got != want {
		return fmt.Errorf("rendered config resolves %s to an unexpected value", key)
	}
	return nil
}
