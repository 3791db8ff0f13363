package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"loadable/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a loadable project",
	Long: `Initialize a loadable project by creating a starter loadable.toml.
If [path] is omitted, initializes the current directory. If a non-existing
path is provided, the directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(defaultProjectManifest()), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized loadable project in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", project.ManifestName)
	return nil
}

func defaultProjectManifest() string {
	return `# loadable project manifest
[build]
wrapper = "next/dynamic"
client_root = "dist/client"
manifest = "dist/server/loadable-manifest.json"
fingerprint = "default"
source_root = "src"

# Declare modules and the chunks the bundler produced for them, then run
# 'loadable build'.
#
# [modules."pages/index"]
# boundary = true
# file = "pages/index.js"
#
# [modules."components/Hello"]
# layer = "client"
# lazy = true
# parent = "pages/index"
# chunks = ["chunks/hello"]
#
# [chunks."chunks/hello"]
# assets = ["dist/client/static/chunks/Hello.js"]
`
}
