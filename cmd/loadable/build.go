// Package main implements the loadable CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"loadable/internal/pipeline"
	"loadable/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Build the lazy-load manifest",
	Long:  "Build the lazy-load manifest using loadable.toml as the project definition.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return err
	}
	outOverride, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	wantTUI, err := useTUIFor(uiValue)
	if err != nil {
		return err
	}

	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}
	manifestPath, found, err := project.Find(startDir)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no %s found in %s or any parent directory", project.ManifestName, startDir)
	}

	cfg, err := project.Load(manifestPath)
	if err != nil {
		return err
	}
	rootDir := filepath.Dir(manifestPath)
	req, err := project.Materialize(cfg, rootDir)
	if err != nil {
		return err
	}
	if outOverride != "" {
		out := filepath.FromSlash(outOverride)
		if !filepath.IsAbs(out) {
			out = filepath.Join(rootDir, out)
		}
		req.OutputPath = out
	}
	if dryRun {
		req.OutputPath = ""
	}
	req.Jobs = jobs

	if !noCache {
		cache, cacheErr := openCache(cacheDir)
		if cacheErr != nil {
			// A broken cache directory degrades to a cold build.
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", cacheErr)
		} else {
			req.Cache = cache
		}
	}

	modules := cfg.ModulePaths()
	useTUI := wantTUI && !quiet

	var res pipeline.Result
	if useTUI && len(modules) > 0 {
		res, err = runBuildWithUI(cmd.Context(), "loadable build", modules, req)
	} else {
		res, err = pipeline.Build(cmd.Context(), req)
	}
	if err != nil {
		if showTimings {
			printStageTimings(os.Stdout, res.Timings)
		}
		return err
	}

	if showTimings {
		printStageTimings(os.Stdout, res.Timings)
	}
	if quiet {
		return nil
	}

	summary := fmt.Sprintf("%d manifest entries", len(res.Manifest))
	if res.CacheHit {
		summary += " (cached)"
	}
	if req.OutputPath != "" {
		fmt.Fprintf(os.Stdout, "%s %s -> %s\n", color.GreenString("wrote"), summary, formatPathForOutput(rootDir, req.OutputPath))
	} else {
		fmt.Fprintf(os.Stdout, "%s %s (not written)\n", color.GreenString("built"), summary)
	}
	return nil
}

// useTUIFor interprets the --ui flag. "auto" defers to whether stdout is a
// terminal.
func useTUIFor(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("--ui must be auto, on, or off (got %q)", value)
}

func openCache(dir string) (*pipeline.DiskCache, error) {
	if dir != "" {
		return pipeline.OpenDiskCacheAt(dir)
	}
	return pipeline.OpenDiskCache("loadable")
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func init() {
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	buildCmd.Flags().Bool("no-cache", false, "skip the aggregation disk cache")
	buildCmd.Flags().String("cache-dir", "", "cache directory (default: XDG cache)")
	buildCmd.Flags().String("out", "", "override the manifest output path")
	buildCmd.Flags().Bool("dry-run", false, "build the manifest without writing it")
}
