package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laropanostra/shopapp/clientcli"
)

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		_, ok := clientcli.NewFormatter(true, false).(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter", func(t *testing.T) {
		_, ok := clientcli.NewFormatter(false, false).(*clientcli.HumanFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		hf, ok := clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	results := []clientcli.UploadResult{
		{
			LocalPath: "fotos/a.png",
			URL:       "/productos/1-a.png",
			FullURL:   "http://localhost:5113/uploads/productos/1-a.png",
			Size:      2048,
		},
		{LocalPath: "fotos/b.exe", Err: errors.New("rejected")},
	}

	t.Run("normal", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, results))

		output := buf.String()
		assert.Contains(t, output, "Uploaded: fotos/a.png -> /productos/1-a.png (2.0 kB)")
		assert.Contains(t, output, "URL: http://localhost:5113/uploads/productos/1-a.png")
		assert.Contains(t, output, "Error: fotos/b.exe - rejected")
	})

	t.Run("quiet keeps errors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, results))

		assert.Equal(t, "Error: fotos/b.exe - rejected\n", buf.String())
	})
}

func TestHumanFormatter_FormatDownload(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.HumanFormatter{}).FormatDownload(&buf, &clientcli.DownloadResult{
		RemotePath: "docs/a.txt",
		LocalPath:  "a.txt",
		Size:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Downloaded: docs/a.txt -> a.txt (10 B)\n", buf.String())
}

func TestHumanFormatter_FormatDelete(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.HumanFormatter{}).FormatDelete(&buf, []clientcli.DeleteResult{
		{Path: "a.png", Deleted: true},
		{Path: "b.png", Err: errors.New("not found")},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Deleted: a.png")
	assert.Contains(t, buf.String(), "Error: b.png - not found")
}

func TestHumanFormatter_FormatList(t *testing.T) {
	t.Run("with entries", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
		result := &clientcli.ListResult{
			Dir: "productos",
			Entries: []clientcli.Entry{
				{Name: "camisas", IsDirectory: true, CreatedAt: created},
				{Name: "a.png", Size: 5242880, CreatedAt: created},
			},
		}

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, result))

		output := buf.String()
		assert.Contains(t, output, "NAME")
		assert.Contains(t, output, "camisas/")
		assert.Contains(t, output, "5.2 MB")
		assert.Contains(t, output, "2024-03-01 10:30:00")
		assert.Contains(t, output, "2 item(s), 1 file(s) (5.2 MB total)")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, &clientcli.ListResult{Dir: "x"}))
		assert.Equal(t, "No files found\n", buf.String())
	})
}

func TestHumanFormatter_FormatHealth(t *testing.T) {
	result := &clientcli.HealthResult{
		Endpoint:  "http://localhost:5113",
		Status:    "ok",
		Message:   "File server funcionando correctamente",
		UploadDir: "/srv/uploads",
		Timestamp: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatHealth(&buf, result))
	assert.Contains(t, buf.String(), "Status:     ok")
	assert.Contains(t, buf.String(), "Upload dir: /srv/uploads")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatHealth(&buf, result))
	assert.Equal(t, "ok\n", buf.String())
}

func TestHumanFormatter_Profiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5113"},
		{Name: "prod", Endpoint: "https://files.example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "prod"))
	assert.Contains(t, buf.String(), "  local  http://localhost:5113")
	assert.Contains(t, buf.String(), "* prod   https://files.example.com")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[1], true))
	assert.Equal(t, "Name:     prod (default)\nEndpoint: https://files.example.com\n", buf.String())
}

func TestJSONFormatter_FormatUpload(t *testing.T) {
	results := []clientcli.UploadResult{
		{LocalPath: "a.png", RemoteDir: "productos", Filename: "1-a.png", Size: 12},
		{LocalPath: "b.exe", RemoteDir: "productos", Err: errors.New("rejected")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatUpload(&buf, results))

	var output []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output, 2)
	assert.Equal(t, "1-a.png", output[0]["filename"])
	assert.InDelta(t, 12, output[0]["size_bytes"], 0)
	assert.NotContains(t, output[0], "error")
	assert.Equal(t, "rejected", output[1]["error"])
}

func TestJSONFormatter_FormatDelete(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.JSONFormatter{}).FormatDelete(&buf, []clientcli.DeleteResult{
		{Path: "a.png", Deleted: true},
		{Path: "b.png", Err: errors.New("not found")},
	})
	require.NoError(t, err)

	var output struct {
		Results []struct {
			Path    string `json:"path"`
			Deleted bool   `json:"deleted"`
			Error   string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Results, 2)
	assert.True(t, output.Results[0].Deleted)
	assert.Equal(t, "not found", output.Results[1].Error)
}

func TestJSONFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, errors.New("boom")))
	assert.JSONEq(t, `{"error":"boom"}`, buf.String())
}

func TestJSONFormatter_Profiles(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.JSONFormatter{}).FormatProfileList(&buf, []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5113"},
	}, "local")
	require.NoError(t, err)
	assert.JSONEq(t, `{"profiles":[{"name":"local","endpoint":"http://localhost:5113","default":true}]}`, buf.String())

	buf.Reset()
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileShow(&buf, clientcli.Profile{Name: "a", Endpoint: "http://a"}, false))
	assert.JSONEq(t, `{"name":"a","endpoint":"http://a","default":false}`, buf.String())
}
