package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1F47E/gee-subset/pkg/backend"
	"github.com/1F47E/gee-subset/pkg/locations"
	"github.com/1F47E/gee-subset/pkg/subset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers region requests and fails for locations at failLon.
func fakeBackend(t *testing.T, failLon float64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req backend.RegionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		lon := req.Geometry.Geometry().Bound().Center().Lon()
		if lon == failLon {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Too many pixels in the region"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"region":[["id","longitude","latitude","time","VV"],`+
			`["b",1,1,1609545600000,-11],["a",1,1,1609459200000,-12]]}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, serverURL string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEE_SUBSET_BACKEND_URL", serverURL)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(normalizeArgs(args))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSites(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.csv")
	require.NoError(t, os.WriteFile(path, []byte("site,lat,lon\none,10,10\ntwo,20,20\nthree,30,30\n"), 0o644))
	return path
}

func TestRunWritesFilesAndSkipsFailures(t *testing.T) {
	server := fakeBackend(t, 20)
	dir := t.TempDir()

	_, stderr, err := execute(t, server.URL,
		"-p", "COPERNICUS/S1_GRD", "-b", "VV", "VH", "-f", writeSites(t), "-d", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Error: check input parameters")

	for _, site := range []string{"one", "three"} {
		data, err := os.ReadFile(filepath.Join(dir, site+"_S1_GRD_gee_subset.csv"))
		require.NoError(t, err, site)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "longitude,latitude,date,VV,product", lines[0])
		assert.Equal(t, "1,1,2021-01-01 00:00:00,-12,COPERNICUS/S1_GRD", lines[1])
	}
	_, err = os.Stat(filepath.Join(dir, "two_S1_GRD_gee_subset.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunVerboseStopsAtFailure(t *testing.T) {
	server := fakeBackend(t, 20)
	dir := t.TempDir()

	_, _, err := execute(t, server.URL,
		"-p", "COPERNICUS/S1_GRD", "-b", "VV", "-f", writeSites(t), "-d", dir, "-v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many pixels")

	_, statErr := os.Stat(filepath.Join(dir, "three_S1_GRD_gee_subset.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunVerboseWithValue(t *testing.T) {
	server := fakeBackend(t, 20)
	dir := t.TempDir()

	_, _, err := execute(t, server.URL,
		"-p", "COPERNICUS/S1_GRD", "-b", "VV", "-f", writeSites(t), "-d", dir, "-v", "True")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many pixels")

	_, _, err = execute(t, server.URL,
		"-p", "COPERNICUS/S1_GRD", "-b", "VV", "-f", writeSites(t), "-d", t.TempDir(), "-v", "False")
	require.NoError(t, err)
}

func TestRunWithinFiltersSites(t *testing.T) {
	server := fakeBackend(t, 20)
	dir := t.TempDir()

	_, stderr, err := execute(t, server.URL,
		"-p", "COPERNICUS/S1_GRD", "-b", "VV", "-f", writeSites(t), "-d", dir,
		"--within", "25,25,35,35")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Error: check input parameters")

	_, err = os.Stat(filepath.Join(dir, "three_S1_GRD_gee_subset.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "one_S1_GRD_gee_subset.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunPrintsToConsole(t *testing.T) {
	server := fakeBackend(t, 999)

	stdout, _, err := execute(t, server.URL,
		"-p", "COPERNICUS/S1_GRD", "-b", "VV", "-l", "44.0646", "-71.2881", "-pd", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "site | COPERNICUS/S1_GRD | 2 rows")
	assert.Contains(t, stdout, "2021-01-02 00:00:00")
}

func TestRunUsageErrors(t *testing.T) {
	sites := writeSites(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{
			name: "file and location",
			args: []string{"-p", "x", "-b", "VV", "-f", sites, "-l", "1", "2"},
			want: locations.ErrConflictingLocations,
		},
		{
			name: "no location",
			args: []string{"-p", "x", "-b", "VV"},
			want: locations.ErrNoLocations,
		},
		{
			name: "missing product",
			args: []string{"-b", "VV", "-l", "1", "2"},
		},
		{
			name: "bad date",
			args: []string{"-p", "x", "-b", "VV", "-l", "1", "2", "-s", "2013/01/01"},
		},
		{
			name: "scale below one metre",
			args: []string{"-p", "x", "-b", "VV", "-l", "1", "2", "-sc", "0.5"},
			want: subset.ErrInvalidQuery,
		},
		{
			name: "unknown flag",
			args: []string{"--nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "http://127.0.0.1:1", tt.args...)
			require.Error(t, err)

			var ue *usageError
			assert.True(t, errors.As(err, &ue), "want usage error, got %v", err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRunMissingFileIsFatal(t *testing.T) {
	_, _, err := execute(t, "http://127.0.0.1:1",
		"-p", "x", "-b", "VV", "-f", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, locations.ErrLocationFileNotFound)

	var ue *usageError
	assert.False(t, errors.As(err, &ue))
}
