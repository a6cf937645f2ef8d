// assembling the AltStore compatible source document, used for both
// store.json and feather.json. field order in the structs below follows
// the official AltStore sources so emitted documents diff cleanly against
// hand maintained ones.
package main

import (
	"fmt"
	"slices"
	"strings"
)

type AppPermissions struct {
	Entitlements []string          `json:"entitlements"`
	Privacy      map[string]string `json:"privacy"`
}

type VersionEntry struct {
	Version              string `json:"version"`
	Date                 string `json:"date"`
	LocalizedDescription string `json:"localizedDescription"`
	DownloadURL          string `json:"downloadURL"`
	Size                 int64  `json:"size"`
}

type AppEntry struct {
	Beta                 bool           `json:"beta"`
	Name                 string         `json:"name"`
	BundleIdentifier     string         `json:"bundleIdentifier"`
	DeveloperName        string         `json:"developerName"`
	Subtitle             string         `json:"subtitle"`
	Version              string         `json:"version"`
	VersionDate          string         `json:"versionDate"`
	VersionDescription   string         `json:"versionDescription"`
	DownloadURL          string         `json:"downloadURL"`
	LocalizedDescription string         `json:"localizedDescription"`
	IconURL              string         `json:"iconURL"`
	TintColor            string         `json:"tintColor"`
	Size                 int64          `json:"size"`
	Screenshots          []string       `json:"screenshots"`
	AppPermissions       AppPermissions `json:"appPermissions"`
	VersionEntryList     []VersionEntry `json:"versions"`
}

type StoreDocument struct {
	Name          string      `json:"name"`
	Identifier    string      `json:"identifier"`
	Subtitle      string      `json:"subtitle"`
	Description   string      `json:"description"`
	IconURL       string      `json:"iconURL"`
	HeaderURL     string      `json:"headerURL"`
	Website       string      `json:"website"`
	TintColor     string      `json:"tintColor"`
	FeaturedApps  []string    `json:"featuredApps"`
	AppEntryList  []AppEntry  `json:"apps"`
	NewsEntryList []NewsEntry `json:"news"`
}

// groups records by bundle identifier.
// group creation follows input order, records keep their input order.
func group_by_bundle(record_list []AppRecord) ([]string, map[string][]AppRecord) {
	bundle_order := []string{}
	group_map := map[string][]AppRecord{}
	for _, record := range record_list {
		_, present := group_map[record.BundleId]
		if !present {
			bundle_order = append(bundle_order, record.BundleId)
		}
		group_map[record.BundleId] = append(group_map[record.BundleId], record)
	}
	return bundle_order, group_map
}

// repeated version strings within one app's history get a letter suffix.
// the first occurrence keeps the bare version: "1.0", "1.0a", "1.0b", ...
func display_versions(group []AppRecord) []string {
	count_map := map[string]int{}
	display_list := make([]string, 0, len(group))
	for _, record := range group {
		count := count_map[record.Version]
		count_map[record.Version] = count + 1
		if count == 0 {
			display_list = append(display_list, record.Version)
		} else {
			display_list = append(display_list, record.Version+string(rune('a'+count-1)))
		}
	}
	return display_list
}

// release notes for a single version. lists the injected tweaks when there
// are any, otherwise just names the version.
func version_blurb(display_version string, tweak_list []string) string {
	if len(tweak_list) > 0 {
		return fmt.Sprintf("Version: %s\nTweaks: %s", display_version, strings.Join(tweak_list, ", "))
	}
	return "Version " + display_version
}

// subtitle for an app entry: the first couple of tweaks, or a stock line.
func app_subtitle(record AppRecord) string {
	if len(record.TweakList) > 0 {
		shortlist := record.TweakList
		if len(shortlist) > 2 {
			shortlist = shortlist[:2]
		}
		return "Tweaked with " + strings.Join(shortlist, ", ")
	}
	return fallback_description(record.Name)
}

// builds the AltStore compatible source document from the scanned records.
// one entry per bundle identifier carrying up to `max_versions` versions,
// newest upload first, entries sorted by name.
func generate_store(record_list []AppRecord, cfg Config) StoreDocument {
	bundle_order, group_map := group_by_bundle(record_list)
	tint_color := "#" + strings.TrimLeft(cfg.TintColor, "#")

	app_entries := []AppEntry{}
	for _, bundle_id := range bundle_order {
		group := slices.Clone(group_map[bundle_id])
		slices.SortStableFunc(group, func(a, b AppRecord) int {
			return strings.Compare(b.FileDate, a.FileDate)
		})
		if len(group) > cfg.MaxVersions {
			group = group[:cfg.MaxVersions]
		}
		if len(group) == 0 {
			continue
		}
		primary := group[0]

		display_list := display_versions(group)
		version_entries := make([]VersionEntry, 0, len(group))
		for i, record := range group {
			version_entries = append(version_entries, VersionEntry{
				Version:              display_list[i],
				Date:                 record.FileDate,
				LocalizedDescription: version_blurb(display_list[i], record.TweakList),
				DownloadURL:          record.DownloadURL,
				Size:                 record.FileSize,
			})
		}

		version_description := "Version: " + primary.Version
		if len(primary.TweakList) > 0 {
			version_description += "\nTweaks: " + strings.Join(primary.TweakList, ", ")
		}

		app_entries = append(app_entries, AppEntry{
			Beta:                 false,
			Name:                 primary.Name,
			BundleIdentifier:     bundle_id,
			DeveloperName:        cfg.DeveloperName,
			Subtitle:             app_subtitle(primary),
			Version:              primary.Version,
			VersionDate:          primary.FileDate,
			VersionDescription:   version_description,
			DownloadURL:          primary.DownloadURL,
			LocalizedDescription: app_description(primary),
			IconURL:              "",
			TintColor:            tint_color,
			Size:                 primary.FileSize,
			Screenshots:          []string{},
			AppPermissions: AppPermissions{
				Entitlements: primary.EntitlementList,
				Privacy:      primary.PrivacyMap,
			},
			VersionEntryList: version_entries,
		})
	}

	slices.SortStableFunc(app_entries, func(a, b AppEntry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	featured := []string{}
	for _, entry := range app_entries {
		if len(featured) == 5 {
			break
		}
		featured = append(featured, entry.BundleIdentifier)
	}

	return StoreDocument{
		Name:          cfg.SourceName,
		Identifier:    cfg.SourceId,
		Subtitle:      cfg.SourceSubtitle,
		Description:   cfg.SourceDescription,
		IconURL:       cfg.IconURL,
		HeaderURL:     cfg.HeaderURL,
		Website:       cfg.Website,
		TintColor:     tint_color,
		FeaturedApps:  featured,
		AppEntryList:  app_entries,
		NewsEntryList: generate_news(record_list, cfg),
	}
}
