package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

// the whole pipeline: a directory of archives in, four documents out.
func Test_run(t *testing.T) {
	dir := t.TempDir()
	ipa_dir := filepath.Join(dir, "IPAs")
	json_dir := filepath.Join(dir, "JSON")
	assert.Nil(t, os.MkdirAll(ipa_dir, 0755))

	write_test_ipa(t, ipa_dir, "Demo_1.0.ipa", [][2]string{
		{"Payload/Demo.app/Info.plist", DEMO_MANIFEST},
		{"Payload/Demo.app/Frameworks/YTLite.dylib", "tweak bytes"},
	})

	STATE = &State{
		Config:   default_config(),
		BaseURL:  "https://github.com/user/repo/raw/main/IPAs",
		IPADir:   ipa_dir,
		JSONDir:  json_dir,
		Validate: true,
	}
	assert.Nil(t, run())

	store_blob, err := os.ReadFile(filepath.Join(json_dir, "store.json"))
	assert.Nil(t, err)
	assert.Equal(t, "TELOS IPA Library", gjson.GetBytes(store_blob, "name").String())
	assert.Equal(t, "Demo", gjson.GetBytes(store_blob, "apps.0.name").String())
	assert.Equal(t, "1.2.3", gjson.GetBytes(store_blob, "apps.0.version").String())
	assert.Equal(t, "https://github.com/user/repo/raw/main/IPAs/Demo_1.0.ipa", gjson.GetBytes(store_blob, "apps.0.downloadURL").String())
	assert.Equal(t, int64(1), gjson.GetBytes(store_blob, "news.#").Int())

	// feather is the store document under another name
	feather_blob, err := os.ReadFile(filepath.Join(json_dir, "feather.json"))
	assert.Nil(t, err)
	assert.Equal(t, string(store_blob), string(feather_blob))

	esign_blob, err := os.ReadFile(filepath.Join(json_dir, "esign.json"))
	assert.Nil(t, err)
	assert.Equal(t, "Demo 1.2.3", gjson.GetBytes(esign_blob, "Demo_1_2_3.name").String())

	scarlet_blob, err := os.ReadFile(filepath.Join(json_dir, "scarlet.json"))
	assert.Nil(t, err)
	assert.Equal(t, "com.example.demo", gjson.GetBytes(scarlet_blob, "apps.0.bundleIdentifier").String())
}

// a missing archive directory means nothing to do, not a failure.
func Test_run_no_archive_dir(t *testing.T) {
	dir := t.TempDir()
	STATE = &State{
		Config:  default_config(),
		BaseURL: "https://example.com/IPAs",
		IPADir:  filepath.Join(dir, "IPAs"),
		JSONDir: filepath.Join(dir, "JSON"),
	}

	assert.Nil(t, run())
	assert.False(t, path_exists(filepath.Join(dir, "JSON")))
}

// no archives still produces valid, empty documents.
func Test_run_empty_archive_dir(t *testing.T) {
	dir := t.TempDir()
	ipa_dir := filepath.Join(dir, "IPAs")
	json_dir := filepath.Join(dir, "JSON")
	assert.Nil(t, os.MkdirAll(ipa_dir, 0755))

	STATE = &State{
		Config:   default_config(),
		BaseURL:  "https://example.com/IPAs",
		IPADir:   ipa_dir,
		JSONDir:  json_dir,
		Validate: true,
	}
	assert.Nil(t, run())

	blob, err := os.ReadFile(filepath.Join(json_dir, "store.json"))
	assert.Nil(t, err)
	assert.Equal(t, int64(0), gjson.GetBytes(blob, "apps.#").Int())
	assert.True(t, gjson.GetBytes(blob, "apps").IsArray())
}

func Test_num_apps(t *testing.T) {
	assert.Equal(t, 2, num_apps("store.json", []byte(`{"apps": [{}, {}]}`)))
	assert.Equal(t, 1, num_apps("esign.json", []byte(`{"A_1": {}, "features": [], "temporal_info": {}}`)))
}

func Test_generate_documents(t *testing.T) {
	document_list := generate_documents(nil, default_config())

	filename_list := []string{}
	for _, document := range document_list {
		filename_list = append(filename_list, document.Filename)
	}
	assert.Equal(t, []string{"store.json", "esign.json", "scarlet.json", "feather.json"}, filename_list)
}
