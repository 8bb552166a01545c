package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/John-Robertt/imdbmeta/internal/app/gather"
	"github.com/John-Robertt/imdbmeta/internal/config"
	"github.com/John-Robertt/imdbmeta/internal/domain"
	"github.com/John-Robertt/imdbmeta/internal/infra/imgx"
)

const movieURL = "https://www.imdb.com/title/tt0111161/"

type stubScraper struct {
	t     *testing.T
	calls int
}

func (s *stubScraper) Scrape(_ context.Context, u domain.MovieURL) (*domain.Movie, error) {
	s.calls++
	var buf bytes.Buffer
	require.NoError(s.t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 3)), nil))
	cover, err := imgx.NewCover(buf.Bytes())
	require.NoError(s.t, err)
	return domain.NewMovie("The Shawshank Redemption", 1994,
		[]string{"Drama"}, []string{"Frank Darabont"}, []string{"Stephen King"},
		[]string{"Tim Robbins", "Morgan Freeman"}, cover)
}

func newTestMain(t *testing.T) (*Main, *stubScraper) {
	t.Helper()
	s := &stubScraper{t: t}
	return &Main{
		Cwd: t.TempDir(),
		NewScraper: func(config.EffectiveConfig, *zap.Logger) (gather.Scraper, error) {
			return s, nil
		},
	}, s
}

func run(t *testing.T, m *Main, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := m.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func decodeReport(t *testing.T, out string) domain.GatherReport {
	t.Helper()
	var r domain.GatherReport
	dec := json.NewDecoder(bytes.NewReader([]byte(out)))
	require.NoError(t, dec.Decode(&r), "stdout=%q", out)
	assert.False(t, dec.More(), "stdout 只能有一个 JSON 文档")
	return r
}

func TestMain_Run_HelpShowsCommands(t *testing.T) {
	m, _ := newTestMain(t)
	out, _, err := run(t, m, "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"gather", "scrape"} {
		assert.Contains(t, out, cmd)
	}

	_, _, err = run(t, m)
	assert.Error(t, err, "无参数时应返回错误")
}

func TestGather_DryRun(t *testing.T) {
	m, s := newTestMain(t)
	out, _, err := run(t, m, "gather", movieURL, "--lang", "en,ru", "--subs", "fr")
	require.NoError(t, err)
	assert.Equal(t, 1, s.calls)

	r := decodeReport(t, out)
	assert.Equal(t, domain.StatusPlanned, r.Status)
	assert.True(t, r.DryRun)
	assert.Equal(t, "The Shawshank Redemption (1994); Drama; EN, RU; FR.mkv", r.FileName)
	require.Len(t, r.Files, 3)

	_, err = os.Stat(filepath.Join(m.Cwd, config.DefaultCoverName))
	assert.True(t, os.IsNotExist(err), "dry-run 不应落盘")
}

func TestGather_Apply(t *testing.T) {
	m, _ := newTestMain(t)
	out, _, err := run(t, m, "gather", movieURL, "-l", "en", "--out", "movie", "--apply")
	require.NoError(t, err)

	r := decodeReport(t, out)
	assert.Equal(t, domain.StatusProcessed, r.Status, "msg=%s", r.ErrorMsg)
	for _, name := range []string{config.DefaultCoverName, config.DefaultTagsName, config.DefaultNFOName} {
		_, err := os.Stat(filepath.Join(m.Cwd, "movie", name))
		assert.NoError(t, err, name)
	}
}

func TestGather_ApplyFalseOverridesConfig(t *testing.T) {
	m, _ := newTestMain(t)
	require.NoError(t, os.WriteFile(filepath.Join(m.Cwd, "imdbmeta.yaml"), []byte("apply: true\n"), 0o644))

	out, _, err := run(t, m, "gather", movieURL, "-l", "en", "--apply=false")
	require.NoError(t, err)
	assert.True(t, decodeReport(t, out).DryRun)
}

func TestGather_FailureStillEmitsReport(t *testing.T) {
	m, s := newTestMain(t)
	out, stderr, err := run(t, m, "gather", "https://example.com/", "-l", "en")
	require.ErrorIs(t, err, errReported)
	assert.Equal(t, 0, s.calls, "URL 无效时不应发起抓取")

	r := decodeReport(t, out)
	assert.Equal(t, domain.StatusFailed, r.Status)
	assert.Equal(t, domain.ErrCodeNotMovieURL, r.ErrorCode)
	assert.Contains(t, stderr, domain.ErrCodeNotMovieURL)
}

func TestGather_ConfigNotFound(t *testing.T) {
	m, s := newTestMain(t)
	out, _, err := run(t, m, "--config", "missing.yaml", "gather", movieURL, "-l", "en")
	require.ErrorIs(t, err, errReported)
	assert.Equal(t, 0, s.calls)

	r := decodeReport(t, out)
	assert.Equal(t, config.ErrCodeNotFound, r.ErrorCode)
	assert.Equal(t, []domain.FileResult{}, r.Files)
}

func TestScrape_PrintsMovie(t *testing.T) {
	m, _ := newTestMain(t)
	out, _, err := run(t, m, "scrape", movieURL)
	require.NoError(t, err)

	var got domain.MovieSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "tt0111161", got.TitleID)
	assert.Equal(t, 1994, got.Year)
	assert.Equal(t, []string{"Tim Robbins", "Morgan Freeman"}, got.Cast)

	_, _, err = run(t, m, "scrape", "not a url")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
