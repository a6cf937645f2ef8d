package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func test_record(bundle_id string, name string, version string, date string, tweak_list ...string) AppRecord {
	if tweak_list == nil {
		tweak_list = []string{}
	}
	file_name := name + "-" + version + ".ipa"
	return AppRecord{
		BundleId:         bundle_id,
		Name:             name,
		Version:          version,
		Build:            "1",
		MinIOS:           "12.0",
		DeviceFamilyList: []int{1, 2},
		TweakList:        tweak_list,
		EntitlementList:  []string{},
		PrivacyMap:       map[string]string{},
		FileName:         file_name,
		FileSize:         1000,
		FileDate:         date,
		DownloadURL:      "https://example.com/IPAs/" + file_name,
	}
}

func Test_group_by_bundle(t *testing.T) {
	record_list := []AppRecord{
		test_record("b", "B", "1.0", "2024-01-01"),
		test_record("a", "A", "1.0", "2024-01-02"),
		test_record("b", "B", "1.1", "2024-01-03"),
	}
	bundle_order, group_map := group_by_bundle(record_list)
	assert.Equal(t, []string{"b", "a"}, bundle_order)
	assert.Equal(t, 2, len(group_map["b"]))
	assert.Equal(t, 1, len(group_map["a"]))
}

// repeats of a version string get a letter suffix so clients see distinct releases.
func Test_display_versions(t *testing.T) {
	group := []AppRecord{
		test_record("a", "A", "1.0", "2024-03-03"),
		test_record("a", "A", "1.0", "2024-03-02"),
		test_record("a", "A", "1.0", "2024-03-01"),
		test_record("a", "A", "0.9", "2024-02-01"),
	}
	assert.Equal(t, []string{"1.0", "1.0a", "1.0b", "0.9"}, display_versions(group))
}

func Test_version_blurb(t *testing.T) {
	assert.Equal(t, "Version 2.1", version_blurb("2.1", nil))
	assert.Equal(t, "Version: 2.1\nTweaks: YTLite, FLEX", version_blurb("2.1", []string{"YTLite", "FLEX"}))
}

func Test_app_subtitle(t *testing.T) {
	assert.Equal(t, "Demo for iOS", app_subtitle(test_record("a", "Demo", "1.0", "2024-03-01")))
	assert.Equal(t, "Tweaked with YTLite", app_subtitle(test_record("a", "Demo", "1.0", "2024-03-01", "YTLite")))
	// only the first two make the subtitle
	assert.Equal(t, "Tweaked with A, B", app_subtitle(test_record("a", "Demo", "1.0", "2024-03-01", "A", "B", "C")))
}

func Test_generate_store(t *testing.T) {
	record_list := []AppRecord{
		test_record("com.zeta.app", "Zeta", "1.0", "2024-03-01", "YTLite", "libflex", "Extra"),
		test_record("com.alpha.app", "alpha", "2.0", "2024-03-02"),
		test_record("com.zeta.app", "Zeta", "1.0", "2024-02-28"),
		test_record("com.zeta.app", "Zeta", "0.9", "2024-02-27"),
	}
	doc := generate_store(record_list, default_config())

	assert.Equal(t, "TELOS IPA Library", doc.Name)
	assert.Equal(t, "com.telos.library", doc.Identifier)
	assert.Equal(t, "#5865F2", doc.TintColor)

	// entries are sorted by name, case insensitively
	assert.Equal(t, 2, len(doc.AppEntryList))
	assert.Equal(t, "alpha", doc.AppEntryList[0].Name)
	assert.Equal(t, "Zeta", doc.AppEntryList[1].Name)
	assert.Equal(t, []string{"com.alpha.app", "com.zeta.app"}, doc.FeaturedApps)

	zeta := doc.AppEntryList[1]
	assert.Equal(t, "TELOS", zeta.DeveloperName)
	assert.Equal(t, "#5865F2", zeta.TintColor)
	assert.Equal(t, "1.0", zeta.Version)
	assert.Equal(t, "2024-03-01", zeta.VersionDate)
	assert.Equal(t, "Version: 1.0\nTweaks: YTLite, libflex, Extra", zeta.VersionDescription)
	assert.Equal(t, "Tweaked with YTLite, libflex", zeta.Subtitle)
	assert.Equal(t, "Tweaks Injected: YTLite, libflex, Extra", zeta.LocalizedDescription)

	// newest first, repeated version strings suffixed
	versions := zeta.VersionEntryList
	assert.Equal(t, 3, len(versions))
	assert.Equal(t, "1.0", versions[0].Version)
	assert.Equal(t, "1.0a", versions[1].Version)
	assert.Equal(t, "0.9", versions[2].Version)
	assert.Equal(t, "2024-03-01", versions[0].Date)
	assert.Equal(t, "Version: 1.0\nTweaks: YTLite, libflex, Extra", versions[0].LocalizedDescription)
	assert.Equal(t, "Version 1.0a", versions[1].LocalizedDescription)

	alpha := doc.AppEntryList[0]
	assert.Equal(t, "alpha for iOS", alpha.Subtitle)
	assert.Equal(t, "alpha for iOS", alpha.LocalizedDescription)
	assert.Equal(t, "Version: 2.0", alpha.VersionDescription)
	assert.Equal(t, "Version 2.0", alpha.VersionEntryList[0].LocalizedDescription)
}

func Test_generate_store_truncation(t *testing.T) {
	cfg := default_config()
	cfg.MaxVersions = 2

	record_list := []AppRecord{
		test_record("com.demo.app", "Demo", "3.0", "2024-03-03"),
		test_record("com.demo.app", "Demo", "2.0", "2024-03-02"),
		test_record("com.demo.app", "Demo", "1.0", "2024-03-01"),
	}
	doc := generate_store(record_list, cfg)

	assert.Equal(t, 1, len(doc.AppEntryList))
	versions := doc.AppEntryList[0].VersionEntryList
	assert.Equal(t, 2, len(versions))
	assert.Equal(t, "3.0", versions[0].Version)
	assert.Equal(t, "2.0", versions[1].Version)

	// the news feed still sees every record
	assert.Equal(t, 3, len(doc.NewsEntryList))
}

func Test_generate_store_featured(t *testing.T) {
	record_list := []AppRecord{}
	for _, name := range []string{"f", "e", "d", "c", "b", "a"} {
		record_list = append(record_list, test_record("com."+name+".app", name, "1.0", "2024-03-01"))
	}
	doc := generate_store(record_list, default_config())
	assert.Equal(t, []string{"com.a.app", "com.b.app", "com.c.app", "com.d.app", "com.e.app"}, doc.FeaturedApps)
}

func Test_store_document_serialization(t *testing.T) {
	record_list := []AppRecord{test_record("com.demo.app", "Demo", "1.0", "2024-03-01")}
	blob, err := marshal_document(generate_store(record_list, default_config()))
	assert.Nil(t, err)

	assert.Equal(t, "TELOS IPA Library", gjson.GetBytes(blob, "name").String())
	assert.Equal(t, "com.telos.library", gjson.GetBytes(blob, "identifier").String())
	assert.Equal(t, int64(1), gjson.GetBytes(blob, "apps.#").Int())
	assert.Equal(t, int64(1000), gjson.GetBytes(blob, "apps.0.size").Int())

	// empty collections serialise as collections, not null
	assert.True(t, gjson.GetBytes(blob, "apps.0.screenshots").IsArray())
	assert.True(t, gjson.GetBytes(blob, "apps.0.appPermissions.entitlements").IsArray())
	assert.True(t, gjson.GetBytes(blob, "apps.0.appPermissions.privacy").IsObject())
}
