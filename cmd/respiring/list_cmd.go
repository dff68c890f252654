// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/danibene/respiring/internal/catalog"
	"github.com/danibene/respiring/internal/config"
	"github.com/danibene/respiring/internal/version"
)

func runList(args []string) int {
	fs := flag.NewFlagSet("respiring list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var limit int
	var asJSON bool
	fs.IntVar(&limit, "limit", 50, "maximum number of videos to show")
	fs.BoolVar(&asJSON, "json", false, "output JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if limit < 1 {
		limit = 50
	}

	cfg, err := config.NewLoader(resolveDefaultConfigPath(), version.Version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	store, err := catalog.NewStore(filepath.Join(cfg.DataDir, "catalog.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	videos, total, err := store.List(context.Background(), limit, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := writeVideoList(os.Stdout, videos, total, asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func writeVideoList(w io.Writer, videos []catalog.Video, total int, asJSON bool) error {
	if asJSON {
		if videos == nil {
			videos = []catalog.Video{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Videos []catalog.Video `json:"videos"`
			Total  int             `json:"total"`
		}{videos, total})
	}

	if len(videos) == 0 {
		_, err := fmt.Fprintln(w, "No videos cataloged.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPATTERN\tDURATION\tSIZE\tCREATED")
	for _, v := range videos {
		size := "-"
		if v.SizeBytes > 0 {
			size = formatBytes(v.SizeBytes)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%ds\t%s\t%s\n",
			v.ID, v.Status, v.Pattern, v.DurationSeconds, size,
			v.CreatedAt.UTC().Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d shown\n", len(videos), total)
	return err
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
