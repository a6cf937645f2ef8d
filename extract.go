// reading application facts out of `.ipa` archives
package main

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"

	bufra "github.com/avvmoto/buf-readerat"
)

// identity fields of an application manifest (`Info.plist`).
// manifests are property lists, XML or binary, and decode the same way.
type InfoPlist struct {
	BundleIdentifier string `plist:"CFBundleIdentifier"`
	DisplayName      string `plist:"CFBundleDisplayName"`
	Name             string `plist:"CFBundleName"`
	ShortVersion     string `plist:"CFBundleShortVersionString"`
	BuildVersion     string `plist:"CFBundleVersion"`
	MinimumOSVersion string `plist:"MinimumOSVersion"`
	DeviceFamilyList []int  `plist:"UIDeviceFamily"`
}

// everything known about a single `.ipa` archive.
type AppRecord struct {
	BundleId         string
	Name             string
	Version          string
	Build            string
	MinIOS           string
	DeviceFamilyList []int
	TweakList        []string
	EntitlementList  []string
	PrivacyMap       map[string]string
	FileName         string
	FileSize         int64
	FileDate         string
	DownloadURL      string
}

// dylib name prefixes that belong to the OS rather than an injected tweak.
var SYSTEM_LIB_PREFIXES = []string{
	"libSystem",
	"libobjc",
	"libc++",
	"libswift",
	"libz",
	"libsqlite",
	"libdispatch",
}

// manifest keys whose values are user-facing privacy usage descriptions.
var PRIVACY_KEYS = []string{
	"NSPhotoLibraryUsageDescription",
	"NSCameraUsageDescription",
	"NSMicrophoneUsageDescription",
	"NSLocationWhenInUseUsageDescription",
	"NSContactsUsageDescription",
	"NSCalendarsUsageDescription",
	"NSAppleMusicUsageDescription",
	"NSSiriUsageDescription",
	"NSBluetoothPeripheralUsageDescription",
	"NSLocalNetworkUsageDescription",
	"NSUserTrackingUsageDescription",
	"NSPhotoLibraryAddUsageDescription",
}

// returns `true` if the zip entry `name` is an application manifest,
// i.e. "Payload/<app>.app/Info.plist".
func is_app_manifest(name string) bool {
	return strings.HasPrefix(name, "Payload/") && strings.HasSuffix(name, ".app/Info.plist")
}

// returns `true` if the dylib `stem` looks like an OS library.
func is_system_lib(stem string) bool {
	for _, prefix := range SYSTEM_LIB_PREFIXES {
		if strings.HasPrefix(stem, prefix) {
			return true
		}
	}
	return false
}

// collects the names of dylibs injected into the app at `app_folder`,
// in archive order, skipping known system libraries.
func detect_tweaks(zip_rdr *zip.Reader, app_folder string) []string {
	tweak_list := []string{}
	for _, entry := range zip_rdr.File {
		if strings.HasPrefix(entry.Name, app_folder+"Frameworks/") && strings.HasSuffix(entry.Name, ".dylib") {
			stem := strings.TrimSuffix(filepath.Base(entry.Name), ".dylib")
			if !is_system_lib(stem) {
				tweak_list = append(tweak_list, stem)
			}
		}
	}
	return tweak_list
}

// copies the privacy usage descriptions present in the raw manifest.
// keys that are absent are absent from the result too.
func extract_privacy(manifest map[string]any) map[string]string {
	privacy_map := map[string]string{}
	for _, key := range PRIVACY_KEYS {
		val, present := manifest[key]
		if present {
			s, ok := val.(string)
			if ok {
				privacy_map[key] = s
			}
		}
	}
	return privacy_map
}

// the name shown to users. prefers the marketing name, falls back to the
// bundle name and finally to a cleaned up archive filename.
func display_name(info InfoPlist, file_name string) string {
	if info.DisplayName != "" {
		return info.DisplayName
	}
	if info.Name != "" {
		return info.Name
	}
	stem := strings.TrimSuffix(file_name, ".ipa")
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return title_case(stem)
}

// reads the application manifest, injected tweaks and file facts out of the
// archive at `ipa_path`.
func extract_ipa_info(ipa_path string, base_url string, cfg Config) (AppRecord, error) {
	empty_response := AppRecord{}

	stat, err := os.Stat(ipa_path)
	if err != nil {
		return empty_response, fmt.Errorf("failed to stat archive: %w", err)
	}

	fh, err := os.Open(ipa_path)
	if err != nil {
		return empty_response, fmt.Errorf("failed to open archive: %w", err)
	}
	defer fh.Close()

	// a 'buffered readerat' remembers the bytes read of a `io.ReaderAt` implementation.
	// the zip central directory lives at the end of the file and is read in many
	// small pieces, so buffering saves a pile of seeks.
	buffer_size := 1024 * 1024 // 1MiB
	buffered_readerat := bufra.NewBufReaderAt(fh, buffer_size)
	zip_rdr, err := zip.NewReader(buffered_readerat, stat.Size())
	if err != nil {
		return empty_response, fmt.Errorf("failed to create a zip reader: %w", err)
	}

	var manifest_entry *zip.File
	for _, entry := range zip_rdr.File {
		if is_app_manifest(entry.Name) {
			manifest_entry = entry
			break
		}
	}
	if manifest_entry == nil {
		return empty_response, fmt.Errorf("no application manifest found in archive")
	}

	entry_rdr, err := manifest_entry.Open()
	if err != nil {
		return empty_response, fmt.Errorf("failed to open manifest entry: %w", err)
	}
	manifest_bytes, err := io.ReadAll(entry_rdr)
	entry_rdr.Close()
	if err != nil {
		return empty_response, fmt.Errorf("failed to read manifest entry: %w", err)
	}
	manifest_bytes, err = elide_bom(manifest_bytes)
	if err != nil {
		return empty_response, fmt.Errorf("failed to read manifest entry: %w", err)
	}

	var info InfoPlist
	_, err = plist.Unmarshal(manifest_bytes, &info)
	if err != nil {
		return empty_response, fmt.Errorf("failed to parse manifest plist: %w", err)
	}

	// a second, untyped decode for keys where presence matters.
	raw_manifest := map[string]any{}
	_, err = plist.Unmarshal(manifest_bytes, &raw_manifest)
	if err != nil {
		return empty_response, fmt.Errorf("failed to parse manifest plist: %w", err)
	}

	min_ios := info.MinimumOSVersion
	if min_ios == "" {
		min_ios = cfg.MinIOSFallback
	}

	device_family_list := info.DeviceFamilyList
	_, present := raw_manifest["UIDeviceFamily"]
	if !present {
		// absent from almost every manifest. iphone+ipad is the safe assumption.
		device_family_list = []int{1, 2}
	}
	if device_family_list == nil {
		device_family_list = []int{}
	}

	// "Payload/Demo.app/Info.plist" => "Payload/Demo.app/"
	app_folder := strings.TrimSuffix(manifest_entry.Name, "Info.plist")
	file_name := filepath.Base(ipa_path)

	return AppRecord{
		BundleId:         info.BundleIdentifier,
		Name:             display_name(info, file_name),
		Version:          info.ShortVersion,
		Build:            info.BuildVersion,
		MinIOS:           min_ios,
		DeviceFamilyList: device_family_list,
		TweakList:        detect_tweaks(zip_rdr, app_folder),
		EntitlementList:  []string{},
		PrivacyMap:       extract_privacy(raw_manifest),
		FileName:         file_name,
		FileSize:         stat.Size(),
		FileDate:         stat.ModTime().Format(DATE_FORMAT),
		DownloadURL:      base_url + "/" + file_name,
	}, nil
}

// finds every `.ipa` under `ipa_dir` and extracts an `AppRecord` from each,
// in filename order. archives that fail to parse are logged and skipped.
func scan_archives(ipa_dir string, base_url string, cfg Config) ([]AppRecord, error) {
	entry_list, err := os.ReadDir(ipa_dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive directory: %w", err)
	}

	candidate_list := []string{}
	for _, entry := range entry_list {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".ipa") {
			candidate_list = append(candidate_list, entry.Name())
		}
	}
	slog.Info("found archives", "num", len(candidate_list))

	record_list := []AppRecord{}
	for _, file_name := range candidate_list {
		slog.Info("processing archive", "archive", file_name)
		record, err := extract_ipa_info(filepath.Join(ipa_dir, file_name), base_url, cfg)
		if err != nil {
			slog.Warn("skipping archive", "archive", file_name, "error", err)
			continue
		}
		slog.Info("extracted", "name", record.Name, "version", record.Version, "num-tweaks", len(record.TweakList))
		record_list = append(record_list, record)
	}
	return record_list, nil
}
