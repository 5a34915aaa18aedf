package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func TestOptionsFilter(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		want    domain.Filter
		wantErr string
	}{
		{
			name: "defaults",
			opts: options{category: domain.AllValues, region: domain.AllValues},
			want: domain.Filter{Category: domain.AllValues, Region: domain.AllValues},
		},
		{
			name: "full range",
			opts: options{start: "2022-04-01", end: "2022-04-30", category: "kurta"},
			want: domain.Filter{
				StartDate: time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2022, 4, 30, 0, 0, 0, 0, time.UTC),
				Category:  "kurta",
			},
		},
		{name: "bad start", opts: options{start: "04/01/2022"}, wantErr: "invalid -start"},
		{name: "bad end", opts: options{end: "2022-13-01"}, wantErr: "invalid -end"},
		{name: "reversed", opts: options{start: "2022-05-01", end: "2022-04-01"}, wantErr: "is before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.filter()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer

	opts, err := parseFlags([]string{"-source", "s3://b/k.csv", "-format", "xlsx", "-region", "KARNATAKA"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "s3://b/k.csv", opts.source)
	assert.Equal(t, "xlsx", opts.format)
	assert.Equal(t, "KARNATAKA", opts.region)
	assert.Equal(t, domain.AllValues, opts.category)

	_, err = parseFlags([]string{"-nope"}, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "flag provided but not defined")

	_, err = parseFlags([]string{"extra"}, &stderr)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	src := testutil.WriteOrdersCSV(t, t.TempDir(), "orders.csv", testutil.SampleOrders())
	ctx := context.Background()

	t.Run("json to stdout", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(ctx, []string{"-source", src, "-category", "kurta", "-out", "-"}, &stdout, &stderr))

		var report map[string]interface{}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
		assert.Equal(t, float64(3), report["line_count"])
		assert.Contains(t, stderr.String(), "Report computed")
	})

	t.Run("xlsx file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "report.xlsx")
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(ctx, []string{"-source", src, "-format", "xlsx", "-out", out}, &stdout, &stderr))

		assert.Equal(t, out, strings.TrimSpace(stdout.String()))
		f, err := excelize.OpenFile(out)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "summary")
	})

	t.Run("csv directory", func(t *testing.T) {
		out := t.TempDir()
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(ctx, []string{"-source", src, "-format", "csv", "-out", out, "-start", "2022-05-01"}, &stdout, &stderr))

		paths := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		assert.Len(t, paths, 13)
		raw, err := os.ReadFile(filepath.Join(out, "report_monthly.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "2022-05,450.50")
		assert.NotContains(t, string(raw), "2022-04")
	})

	t.Run("missing source", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run(ctx, []string{"-source", filepath.Join(t.TempDir(), "none.csv")}, &stdout, &stderr)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	})

	t.Run("bad format", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Error(t, run(ctx, []string{"-source", src, "-format", "pdf"}, &stdout, &stderr))
	})

	t.Run("stdout needs json", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run(ctx, []string{"-source", src, "-format", "csv", "-out", "-"}, &stdout, &stderr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only supported with -format json")
	})
}
