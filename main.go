package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"
)

type State struct {
	Config   Config
	BaseURL  string
	IPADir   string
	JSONDir  string
	Validate bool
}

func NewState() *State {
	return &State{}
}

// one emitted catalogue file.
type Document struct {
	Filename string
	Schema   string
	Data     any
}

// -- globals

var STATE *State

// the date format used everywhere: file dates, version dates, news identifiers.
var DATE_FORMAT = "2006-01-02"

// log level, switched to debug with `--verbose`.
var LOG_LEVEL = new(slog.LevelVar)

// --- tasks

// builds all four catalogue documents from the scanned records.
// feather.json is the store document written a second time under a
// different name.
func generate_documents(record_list []AppRecord, cfg Config) []Document {
	store := generate_store(record_list, cfg)
	return []Document{
		{Filename: "store.json", Schema: STORE_SCHEMA, Data: store},
		{Filename: "esign.json", Schema: ESIGN_SCHEMA, Data: generate_esign(record_list, cfg)},
		{Filename: "scarlet.json", Schema: SCARLET_SCHEMA, Data: generate_scarlet(record_list, cfg)},
		{Filename: "feather.json", Schema: STORE_SCHEMA, Data: store},
	}
}

// number of app entries in a serialized document. the esign document keys
// apps dynamically, so entries there are members minus the two fixed ones.
func num_apps(filename string, blob []byte) int {
	if filename == "esign.json" {
		return len(gjson.GetBytes(blob, "@keys").Array()) - 2
	}
	return int(gjson.GetBytes(blob, "apps.#").Int())
}

// serializes `document`, checks it against its schema and writes it under
// `json_dir`. a document that fails any step is not written at all.
func write_document(document Document, json_dir string, validate bool) error {
	ensure(document.Schema != "", "document is missing a schema")

	blob, err := marshal_document(document.Data)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if validate {
		err = validate_document(document.Schema, blob)
		if err != nil {
			return err
		}
	}

	output_path := filepath.Join(json_dir, document.Filename)
	err = os.WriteFile(output_path, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	slog.Info("generated", "filename", document.Filename, "bytes", len(blob), "num-apps", num_apps(document.Filename, blob))
	return nil
}

// writes every document, carrying on past failures so one bad document
// doesn't hold up the rest.
func write_documents(document_list []Document, json_dir string, validate bool) error {
	err := os.MkdirAll(json_dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	failed_list := []string{}
	for _, document := range document_list {
		err := write_document(document, json_dir, validate)
		if err != nil {
			slog.Error("failed to write document", "filename", document.Filename, "error", err)
			failed_list = append(failed_list, document.Filename)
		}
	}

	if len(failed_list) > 0 {
		return fmt.Errorf("failed to write %d of %d documents: %s", len(failed_list), len(document_list), strings.Join(failed_list, ", "))
	}
	return nil
}

func run() error {
	if !path_exists(STATE.IPADir) {
		slog.Error("no archive directory found, nothing to do", "dir", STATE.IPADir)
		return nil
	}

	record_list, err := scan_archives(STATE.IPADir, STATE.BaseURL, STATE.Config)
	if err != nil {
		return err
	}
	slog.Info("archives processed", "num", len(record_list))

	tweak_lists := [][]string{}
	for _, record := range record_list {
		tweak_lists = append(tweak_lists, record.TweakList)
	}
	slog.Debug("distinct tweaks injected", "tweaks", unique(flatten(tweak_lists...)))

	document_list := generate_documents(record_list, STATE.Config)
	err = write_documents(document_list, STATE.JSONDir, STATE.Validate)
	if err != nil {
		return err
	}

	slog.Info("catalogue generation complete")
	return nil
}

func init_state(config_path string, ipa_dir string, json_dir string, validate bool) *State {
	state := NewState()

	cfg, err := load_config(config_path)
	if err != nil {
		slog.Error("failed to load configuration", "path", config_path, "error", err)
		fatal()
	}
	state.Config = cfg

	state.BaseURL = github_base_url()
	state.IPADir = ipa_dir
	state.JSONDir = json_dir
	state.Validate = validate

	return state
}

// --- bootstrap

func init() {
	if is_testing() {
		return
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: LOG_LEVEL})))
}

func main() {
	ipa_dir := pflag.String("ipa-dir", "IPAs", "directory of .ipa archives to scan")
	json_dir := pflag.String("json-dir", "JSON", "directory the catalogue documents are written to")
	config_path := pflag.String("config", ".github/config.yml", "path to the catalogue configuration file")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	no_validate := pflag.Bool("no-validate", false, "skip schema validation of the generated documents")
	pflag.Parse()

	die(*ipa_dir == "", "an archive directory is required")
	die(*json_dir == "", "an output directory is required")

	if *verbose {
		LOG_LEVEL.Set(slog.LevelDebug)
	}

	STATE = init_state(*config_path, *ipa_dir, *json_dir, !*no_validate)

	if *verbose {
		pprint(STATE.Config)
	}

	err := run()
	if err != nil {
		slog.Error("catalogue generation failed", "error", err)
		fatal()
	}
}
