// Command podiumctl renders a competition's committed leaderboard in the
// terminal, for organizers watching judging progress without the web UI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

type rankedEntry struct {
	SubmissionID string   `json:"submission_id"`
	Track        string   `json:"track,omitempty"`
	Aggregate    *float64 `json:"aggregate"`
	Rank         *int     `json:"rank"`
}

func main() {
	addr := flag.String("addr", "http://localhost:9080", "podium server base URL")
	competition := flag.String("competition", "", "competition ID (required)")
	limit := flag.Int("limit", 25, "number of entries to show")
	track := flag.String("track", "", "filter to one sub-track")
	watch := flag.Duration("watch", 0, "refresh interval, e.g. 5s (0 = once)")
	flag.Parse()

	if *competition == "" {
		color.Red("missing -competition")
		flag.Usage()
		os.Exit(2)
	}

	for {
		if err := render(*addr, *competition, *limit, *track); err != nil {
			color.Red("error: %v", err)
			os.Exit(1)
		}
		if *watch <= 0 {
			return
		}
		time.Sleep(*watch)
	}
}

func render(addr, competition string, limit int, track string) error {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if track != "" {
		q.Set("track", track)
	}
	endpoint := fmt.Sprintf("%s/competitions/%s/leaderboard?%s", addr, url.PathEscape(competition), q.Encode())

	resp, err := http.Get(endpoint) //nolint:gosec // operator-supplied URL
	if err != nil {
		return fmt.Errorf("fetch leaderboard: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var entries []rankedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("decode leaderboard: %w", err)
	}

	color.Yellow("\nLeaderboard for competition %s", competition)
	if track != "" {
		color.Cyan("track: %s", track)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Submission", "Track", "Aggregate"})
	for _, e := range entries {
		rank := "-"
		if e.Rank != nil {
			rank = strconv.Itoa(*e.Rank)
		}
		agg := "-"
		if e.Aggregate != nil {
			agg = strconv.FormatFloat(*e.Aggregate, 'f', 1, 64)
		}
		table.Append([]string{rank, e.SubmissionID, e.Track, agg})
	}
	table.Render()
	return nil
}
