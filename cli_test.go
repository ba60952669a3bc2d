/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/ulvareth/party"
	"github.com/Seednode/ulvareth/quiz"
	"github.com/Seednode/ulvareth/roster"
)

func sampleText(t *testing.T, name string) string {
	t.Helper()

	text, err := roster.Sample(name, nil)
	require.NoError(t, err)

	return text
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()

	file := filepath.Join(dir, name+".csv")
	require.NoError(t, os.WriteFile(file, []byte(sampleText(t, name)), 0o644))

	return file
}

func TestRunGroupStdin(t *testing.T) {
	var out bytes.Buffer

	err := runGroup(testConfig(), strings.NewReader(sampleText(t, "balanced")), &out, nil)
	require.NoError(t, err)

	rows := roster.Parse(out.String())
	require.Len(t, rows, 10)
	assert.Equal(t, party.ExportKeys, rows[0].Keys())
	assert.Equal(t, "Aria Swift", rows[0].Get("Player"))
	assert.Equal(t, "Swords", rows[0].Get("Primary"))
	assert.Equal(t, "Swords 1", rows[0].Get("Group"))
	assert.Equal(t, "Seekers 1", rows[9].Get("Group"))
}

func TestRunGroupMergesFiles(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer

	cfg := testConfig()
	cfg.mode = string(party.ModeBalanced)

	err := runGroup(cfg, nil, &out, []string{
		writeSample(t, dir, "balanced"),
		writeSample(t, dir, "skewed"),
	})
	require.NoError(t, err)

	rows := roster.Parse(out.String())
	assert.Len(t, rows, 20)

	groups := map[string]int{}
	for _, row := range rows {
		groups[row.Get("Group")]++
	}
	assert.Len(t, groups, 4)
}

func TestRunGroupRejectsBadRoster(t *testing.T) {
	var out bytes.Buffer

	err := runGroup(testConfig(), strings.NewReader("Name,SW_total,SE_total,SC_total\nA,1,2,3\n"), &out, []string{"-"})
	require.ErrorIs(t, err, roster.ErrMissingPlayer)
	assert.True(t, strings.HasPrefix(err.Error(), "stdin: "))
	assert.Empty(t, out.String())

	dir := t.TempDir()
	good := writeSample(t, dir, "balanced")

	err = runGroup(testConfig(), nil, &out, []string{good, filepath.Join(dir, "missing.csv")})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, out.String())
}

func TestRunGroupOutputFile(t *testing.T) {
	cfg := testConfig()
	cfg.output = filepath.Join(t.TempDir(), "parties.csv")

	var out bytes.Buffer

	require.NoError(t, runGroup(cfg, strings.NewReader(sampleText(t, "skewed")), &out, nil))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), roster.BOM))

	rows := roster.Parse(string(data))
	require.Len(t, rows, 10)
	assert.Equal(t, "Player", rows[0].Keys()[0])
}

func TestRunGroupPretty(t *testing.T) {
	cfg := testConfig()
	cfg.pretty = true

	var out bytes.Buffer

	require.NoError(t, runGroup(cfg, strings.NewReader(sampleText(t, "balanced")), &out, nil))

	text := out.String()
	assert.Contains(t, text, "10 players")
	for _, want := range []string{"Swords 1", "Schemers 1", "Seekers 1", "Aria Swift", "Doe, Jane"} {
		assert.Contains(t, text, want)
	}
}

func TestRunSample(t *testing.T) {
	cfg := testConfig()

	var out bytes.Buffer
	require.NoError(t, runSample(cfg, &out, nil))
	assert.Equal(t, strings.Join(roster.SampleNames(), "\n")+"\n", out.String())

	err := runSample(cfg, &out, []string{"nope"})
	assert.ErrorIs(t, err, roster.ErrUnknownSample)

	cfg.seed = 42

	var a, b bytes.Buffer
	require.NoError(t, runSample(cfg, &a, []string{"overflow"}))
	require.NoError(t, runSample(cfg, &b, []string{"overflow"}))
	assert.Equal(t, a.String(), b.String())
	assert.Len(t, roster.Parse(a.String()), 24)
}

func TestRunInbox(t *testing.T) {
	bank, err := quiz.Load()
	require.NoError(t, err)

	sel := quiz.Selections{}
	sel.Toggle("q1", "a")

	p := quiz.NewPayload("Zed", quiz.Score(bank, sel), sel, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	link, err := p.Link("https://example.com/inbox")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runInbox(testConfig(), &out, link))

	rows := roster.Parse(out.String())
	require.Len(t, rows, 1)
	assert.Equal(t, quiz.InboxKeys, rows[0].Keys())
	assert.Equal(t, "Zed", rows[0].Get("Player"))

	assert.ErrorIs(t, runInbox(testConfig(), &out, "   "), quiz.ErrEmptyPayload)
}
