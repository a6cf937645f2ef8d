// assembling the scarlet document
package main

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

type ScarletMetadata struct {
	SourceType   string `json:"sourceType"`
	OriginalFile string `json:"originalFile"`
}

type ScarletApp struct {
	Name                 string          `json:"name"`
	BundleIdentifier     string          `json:"bundleIdentifier"`
	DeveloperName        string          `json:"developerName"`
	LocalizedDescription string          `json:"localizedDescription"`
	Version              string          `json:"version"`
	VersionDate          string          `json:"versionDate"`
	VersionDescription   string          `json:"versionDescription"`
	Size                 int64           `json:"size"`
	IconURL              string          `json:"iconURL"`
	DownloadURL          string          `json:"downloadURL"`
	MinOSVersion         string          `json:"minOSVersion"`
	SupportedPlatforms   []string        `json:"supportedPlatforms"`
	DeviceFamilies       []int           `json:"deviceFamilies"`
	Metadata             ScarletMetadata `json:"metadata"`
}

// a colour component in 0..1 that always renders with a decimal point,
// "1.0" rather than "1".
type ColorChannel float64

func (c ColorChannel) MarshalJSON() ([]byte, error) {
	s := strconv.FormatFloat(float64(c), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return []byte(s), nil
}

type AccentColor struct {
	Red   ColorChannel `json:"red"`
	Green ColorChannel `json:"green"`
	Blue  ColorChannel `json:"blue"`
}

type ScarletLocalization struct {
	Name        string `json:"name"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

type ScarletDocument struct {
	Name        string                         `json:"name"`
	Identifier  string                         `json:"identifier"`
	Subtitle    string                         `json:"subtitle"`
	Description string                         `json:"description"`
	Version     string                         `json:"version"`
	VersionDate string                         `json:"versionDate"`
	AccentColor AccentColor                    `json:"accentColor"`
	IconURL     string                         `json:"iconURL"`
	Localized   map[string]ScarletLocalization `json:"localized"`
	AppList     []ScarletApp                   `json:"apps"`
}

// parses a six digit hex colour like "FF0000" into rgb components scaled
// to 0..1 and rounded to two decimal places.
func hex_to_rgb(hex_str string) (AccentColor, error) {
	empty_response := AccentColor{}
	if len(hex_str) < 6 {
		return empty_response, fmt.Errorf("too short to be a colour: %q", hex_str)
	}

	component := func(s string) (ColorChannel, error) {
		n, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("not a hex colour component: %q", s)
		}
		return ColorChannel(math.Round(float64(n)/255.0*100) / 100), nil
	}

	red, err := component(hex_str[0:2])
	if err != nil {
		return empty_response, err
	}
	green, err := component(hex_str[2:4])
	if err != nil {
		return empty_response, err
	}
	blue, err := component(hex_str[4:6])
	if err != nil {
		return empty_response, err
	}
	return AccentColor{Red: red, Green: green, Blue: blue}, nil
}

// builds the scarlet document from the scanned records.
// one entry per bundle identifier, the first archive seen wins.
func generate_scarlet(record_list []AppRecord, cfg Config) ScarletDocument {
	bundle_order := []string{}
	seen_map := map[string]AppRecord{}
	for _, record := range record_list {
		_, present := seen_map[record.BundleId]
		if !present {
			seen_map[record.BundleId] = record
			bundle_order = append(bundle_order, record.BundleId)
		}
	}

	app_entries := []ScarletApp{}
	for _, bundle_id := range bundle_order {
		record := seen_map[bundle_id]
		app_entries = append(app_entries, ScarletApp{
			Name:                 record.Name,
			BundleIdentifier:     record.BundleId,
			DeveloperName:        cfg.DeveloperName,
			LocalizedDescription: app_description(record),
			Version:              record.Version,
			VersionDate:          record.FileDate,
			VersionDescription:   "Version " + record.Version,
			Size:                 record.FileSize,
			IconURL:              "",
			DownloadURL:          record.DownloadURL,
			MinOSVersion:         record.MinIOS,
			SupportedPlatforms:   []string{"iOS"},
			DeviceFamilies:       record.DeviceFamilyList,
			Metadata:             ScarletMetadata{SourceType: "telegram", OriginalFile: record.FileName},
		})
	}

	slices.SortStableFunc(app_entries, func(a, b ScarletApp) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	accent, err := hex_to_rgb(strings.TrimLeft(cfg.TintColor, "#"))
	if err != nil {
		// the stock blue, for tints that aren't colours.
		accent = AccentColor{Red: 0.35, Green: 0.4, Blue: 0.95}
	}

	localization := ScarletLocalization{
		Name:        cfg.SourceName,
		Subtitle:    cfg.SourceSubtitle,
		Description: cfg.SourceDescription,
	}

	return ScarletDocument{
		Name:        cfg.SourceName,
		Identifier:  cfg.SourceId,
		Subtitle:    cfg.SourceSubtitle,
		Description: cfg.SourceDescription,
		Version:     "1.0.0",
		VersionDate: today_utc(),
		AccentColor: accent,
		IconURL:     cfg.IconURL,
		Localized:   map[string]ScarletLocalization{"default": localization},
		AppList:     app_entries,
	}
}
