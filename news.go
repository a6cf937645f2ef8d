// deriving the news feed from upload dates
package main

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type NewsEntry struct {
	Title      string `json:"title"`
	Identifier string `json:"identifier"`
	Caption    string `json:"caption"`
	Date       string `json:"date"`
	TintColor  string `json:"tintColor"`
	Notify     bool   `json:"notify"`
	AppID      string `json:"appID"`
	URL        string `json:"url,omitempty"`
}

// colours alternated across news entries.
var NEWS_TINT_COLORS = []string{"#00BFA6", "#FFD700"}

// the news feed is capped independently of how many versions each app keeps.
var MAX_NEWS_ENTRIES = 10

// one caption line for `record`: "Demo - (YTLite) 1.2" or "Demo - 1.2".
// the named tweak is the first that isn't some bare lib.
func news_line(record AppRecord) string {
	for _, tweak := range record.TweakList {
		if !strings.HasPrefix(tweak, "lib") {
			return fmt.Sprintf("%s - (%s) %s", record.Name, tweak, record.Version)
		}
	}
	return fmt.Sprintf("%s - %s", record.Name, record.Version)
}

// "2024-12-21" => "12.21". dates that don't parse fall back to dotted form.
func news_version(date string) string {
	dt, err := time.Parse(DATE_FORMAT, date)
	if err != nil {
		return strings.ReplaceAll(date, "-", ".")
	}
	return fmt.Sprintf("%d.%d", int(dt.Month()), dt.Day())
}

// builds the news feed: one entry per upload date, newest first.
// records sharing a date are listed together, ordered by bundle identifier
// so reruns produce identical output.
func generate_news(record_list []AppRecord, cfg Config) []NewsEntry {
	date_map := map[string][]AppRecord{}
	for _, record := range record_list {
		date_map[record.FileDate] = append(date_map[record.FileDate], record)
	}

	date_list := []string{}
	for date := range date_map {
		date_list = append(date_list, date)
	}
	slices.Sort(date_list)
	slices.Reverse(date_list)
	if len(date_list) > MAX_NEWS_ENTRIES {
		date_list = date_list[:MAX_NEWS_ENTRIES]
	}

	news := []NewsEntry{}
	for idx, date := range date_list {
		date_records := slices.Clone(date_map[date])
		slices.SortStableFunc(date_records, func(a, b AppRecord) int {
			return strings.Compare(a.BundleId, b.BundleId)
		})

		line_list := []string{}
		for _, record := range date_records {
			line_list = append(line_list, news_line(record))
		}

		news = append(news, NewsEntry{
			Title:      "⚙️ Telos Update " + news_version(date),
			Identifier: "telos-update-" + date,
			Caption:    "New Files Uploaded:\n" + strings.Join(line_list, "\n"),
			Date:       date,
			TintColor:  NEWS_TINT_COLORS[idx%len(NEWS_TINT_COLORS)],
			Notify:     true,
			AppID:      date_records[0].BundleId,
			URL:        cfg.NewsURL,
		})
	}
	return news
}
