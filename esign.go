// assembling the esign document. the format is one big JSON object with a
// member per app keyed by a name+version slug, then a `features` list and a
// `temporal_info` member. member order matters to the client and Go maps
// marshal in sorted key order, so serialization is done by hand.
package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
)

type EsignApp struct {
	Name                 string   `json:"name"`
	BundleIdentifier     string   `json:"bundleIdentifier"`
	DeveloperName        string   `json:"developerName"`
	Version              string   `json:"version"`
	VersionDate          string   `json:"versionDate"`
	DownloadURL          string   `json:"downloadURL"`
	LocalizedDescription string   `json:"localizedDescription"`
	IconURL              string   `json:"iconURL"`
	TintColor            string   `json:"tintColor"`
	Size                 int64    `json:"size"`
	Screenshots          []string `json:"screenshots"`
}

type EsignTemporalInfo struct {
	ReleaseDate string `json:"release_date"`
}

// identity of an esign entry: the normalized app name and version.
// two archives with the same identity are the same entry.
type EsignKey struct {
	Name    string
	Version string
}

func MakeEsignKey(record AppRecord) EsignKey {
	name := strings.NewReplacer(" ", "_", "-", "_").Replace(record.Name)
	version := strings.ReplaceAll(record.Version, ".", "_")
	return EsignKey{Name: name, Version: version}
}

// the serialized member name: "Crane" + "1.0.2" => "Crane_1_0_2".
func (key EsignKey) Slug() string {
	return key.Name + "_" + key.Version
}

type EsignDocument struct {
	KeyList      []EsignKey
	AppMap       map[EsignKey]EsignApp
	Features     []string
	TemporalInfo EsignTemporalInfo
}

// serializes app members in insertion order with `features` and
// `temporal_info` last.
func (doc EsignDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write_member := func(name string, val any) error {
		name_bytes, err := marshal_json(name)
		if err != nil {
			return err
		}
		val_bytes, err := marshal_json(val)
		if err != nil {
			return err
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(name_bytes)
		buf.WriteByte(':')
		buf.Write(val_bytes)
		return nil
	}

	for _, key := range doc.KeyList {
		err := write_member(key.Slug(), doc.AppMap[key])
		if err != nil {
			return nil, err
		}
	}
	err := write_member("features", doc.Features)
	if err != nil {
		return nil, err
	}
	err = write_member("temporal_info", doc.TemporalInfo)
	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// builds the esign document from the scanned records.
// the first archive seen for an identity wins, later duplicates are dropped.
// distinct identities can still normalize to the same member name ("A B" 1.0
// and "A" B.1.0 both become "A_B_1_0"); one object cannot carry both, so the
// first to claim a name wins and the rest are dropped with a warning.
func generate_esign(record_list []AppRecord, cfg Config) EsignDocument {
	tint_color := strings.TrimLeft(cfg.TintColor, "#")

	key_list := []EsignKey{}
	app_map := map[EsignKey]EsignApp{}
	slug_map := map[string]bool{}

	for _, record := range record_list {
		key := MakeEsignKey(record)
		_, present := app_map[key]
		if present {
			continue
		}
		if slug_map[key.Slug()] {
			slog.Warn("skipping entry, another entry already has its serialized name", "name", record.Name, "version", record.Version, "member", key.Slug())
			continue
		}
		slug_map[key.Slug()] = true

		app_map[key] = EsignApp{
			Name:                 record.Name + " " + record.Version,
			BundleIdentifier:     record.BundleId,
			DeveloperName:        fmt.Sprintf("%s %s x %s", record.Name, record.Version, cfg.DeveloperName),
			Version:              record.Version,
			VersionDate:          record.FileDate,
			DownloadURL:          record.DownloadURL,
			LocalizedDescription: app_description(record),
			IconURL:              "",
			TintColor:            tint_color,
			Size:                 record.FileSize,
			Screenshots:          []string{},
		}
		key_list = append(key_list, key)
	}

	return EsignDocument{
		KeyList:      key_list,
		AppMap:       app_map,
		Features:     []string{"IPA signer", "Tweak injector"},
		TemporalInfo: EsignTemporalInfo{ReleaseDate: today_utc()},
	}
}
