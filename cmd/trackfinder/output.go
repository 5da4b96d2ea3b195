package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
	dimColor   = color.New(color.Faint)
)

// exitError carries a process exit code for failures already reported on
// stdout, so main does not print them a second time.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResolution(w io.Writer, res domain.Resolution) {
	d := res.Details
	if res.Success {
		okColor.Fprintln(w, res.Message)
	} else {
		failColor.Fprintln(w, res.Message)
	}

	field := func(label, value string) {
		if value == "" {
			return
		}
		labelColor.Fprintf(w, "  %-12s", label)
		fmt.Fprintln(w, value)
	}

	if d.Track != nil {
		field("position", fmt.Sprintf("%d of %d", d.Position, d.TotalCandidates))
		field("album", d.Track.Album)
		field("query", d.QueryUsed)
	}
	field("title", d.Title)
	field("artist", d.Artist)
	field("preference", string(d.Preferences.Active()))
	field("parsed by", string(d.ParseMethod))
	if d.Disambiguated {
		field("chosen by", "disambiguator")
	}
	if !res.Success && len(d.QueriesTried) > 0 {
		labelColor.Fprintln(w, "  tried")
		for _, q := range d.QueriesTried {
			dimColor.Fprintf(w, "    %s\n", q)
		}
	}
}

func printQueries(w io.Writer, req domain.MusicRequest, queries []string) {
	labelColor.Fprintf(w, "%-8s", "title")
	fmt.Fprintln(w, req.Title)
	if req.HasArtist() {
		labelColor.Fprintf(w, "%-8s", "artist")
		fmt.Fprintln(w, req.Artist)
	}
	labelColor.Fprintf(w, "%-8s", "method")
	fmt.Fprintln(w, req.Method)
	for i, q := range queries {
		fmt.Fprintf(w, "%2d. %s\n", i+1, q)
	}
}

func printEntry(w io.Writer, e domain.JournalEntry) {
	mark := okColor.Sprint("ok  ")
	if !e.Resolution.Success {
		mark = failColor.Sprint("fail")
	}
	request := strings.TrimSpace(e.Request.Raw)
	if request == "" {
		request = strings.TrimSpace(e.Request.Title + " " + e.Request.Artist)
	}
	fmt.Fprintf(w, "%s %s %s %q\n", mark, dimColor.Sprint(e.CreatedAt.Local().Format("2006-01-02 15:04:05")), e.ID, request)
	dimColor.Fprintf(w, "     %s\n", e.Resolution.Message)
}
