package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"summary-stack/internal/models"
	"summary-stack/shared/config"
)

const testVTT = `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.000
Welcome to the channel.

00:00:02.000 --> 00:00:04.000
Welcome to the channel.

00:00:04.000 --> 00:00:06.000
Today we talk about <c>lures</c> &amp; bass.
`

// watchPage renders a minimal watch page around a player response.
func watchPage(playerJSON string) string {
	return `<html><head>
<meta property="og:title" content="Page Title">
<meta property="og:description" content="Page description">
</head><body>
<span itemprop="author"><link itemprop="name" content="Page Channel"></span>
<script>var ytInitialPlayerResponse = ` + playerJSON + `;var meta = {};</script>
</body></html>`
}

type fakeMetadata struct {
	meta models.VideoMetadata
	err  error
}

func (f *fakeMetadata) VideoMetadata(ctx context.Context, videoID string) (models.VideoMetadata, error) {
	return f.meta, f.err
}

func newTestFetcher(t *testing.T, player func(base string) string, opts ...FetcherOption) *Fetcher {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if player == nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, watchPage(player(srv.URL)))
		case "/api/timedtext":
			if r.URL.Query().Get("fmt") != "vtt" {
				http.Error(w, "expected vtt", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, testVTT)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	opts = append([]FetcherOption{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	return NewFetcher(&config.YouTubeConfig{Language: "en", TimeoutSeconds: 5}, opts...)
}

func captionedPlayer(base string) string {
	return `{
		"videoDetails": {
			"videoId": "abc123",
			"title": "Player Title",
			"author": "Player Channel",
			"shortDescription": "",
			"lengthSeconds": "95",
			"viewCount": "1000"
		},
		"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
			{"baseUrl": "` + base + `/api/timedtext?v=abc123&lang=de", "languageCode": "de"},
			{"baseUrl": "` + base + `/api/timedtext?v=abc123&lang=en&kind=asr", "languageCode": "en", "kind": "asr"}
		]}}
	}`
}

func TestFetchTranscript(t *testing.T) {
	f := newTestFetcher(t, captionedPlayer)

	transcript, meta, err := f.Fetch(context.Background(), "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if want := "Welcome to the channel. Today we talk about lures & bass."; transcript != want {
		t.Errorf("transcript = %q, want %q", transcript, want)
	}
	if meta.Title != "Player Title" || meta.Channel != "Player Channel" {
		t.Errorf("meta = %+v, want player title and author", meta)
	}
	if meta.Description != "Page description" {
		t.Errorf("Description = %q, want page fallback", meta.Description)
	}
	if meta.Duration != "1:35" || meta.ViewCount != 1000 || meta.VideoID != "abc123" {
		t.Errorf("meta = %+v, want duration 1:35, 1000 views, id abc123", meta)
	}
}

func TestFetchWithoutCaptions(t *testing.T) {
	tests := []struct {
		name   string
		player string
	}{
		{"No captions block", `{"videoDetails": {"title": "Player Title", "author": "Player Channel"}}`},
		{"Empty track list", `{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": []}}}`},
		{"Only PoToken tracks", `{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
			{"baseUrl": "https://example.com/t?v=1&exp=xpe", "languageCode": "en"}]}}}`},
		{"Player response missing", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, func(string) string { return tt.player })

			transcript, meta, err := f.Fetch(context.Background(), "https://youtu.be/abc123")
			if !errors.Is(err, ErrNoCaptions) {
				t.Fatalf("Fetch() error = %v, want ErrNoCaptions", err)
			}
			if transcript != "" {
				t.Errorf("transcript = %q, want empty", transcript)
			}
			if meta.Description != "Page description" {
				t.Errorf("Description = %q, want page description", meta.Description)
			}
			if meta.Title == "" || meta.Channel == "" {
				t.Errorf("meta = %+v, want non-empty title and channel", meta)
			}
		})
	}
}

func TestFetchPageMetadataFallback(t *testing.T) {
	f := newTestFetcher(t, func(string) string { return `{}` })

	_, meta, err := f.Fetch(context.Background(), "https://youtu.be/abc123")
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("Fetch() error = %v, want ErrNoCaptions", err)
	}
	if meta.Title != "Page Title" || meta.Channel != "Page Channel" {
		t.Errorf("meta = %+v, want values scraped from meta tags", meta)
	}
}

func TestFetchPrefersMetadataSource(t *testing.T) {
	source := &fakeMetadata{meta: models.NewVideoMetadata("API Title", "API Channel", "API description")}
	f := newTestFetcher(t, captionedPlayer, WithMetadataSource(source))

	_, meta, err := f.Fetch(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if meta.Title != "API Title" {
		t.Errorf("Title = %q, want API Title", meta.Title)
	}

	source.err = errors.New("quota exceeded")
	_, meta, err = f.Fetch(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if meta.Title != "Player Title" {
		t.Errorf("Title = %q, want page fallback when the source fails", meta.Title)
	}
}

func TestFetchErrors(t *testing.T) {
	f := newTestFetcher(t, nil)

	if _, _, err := f.Fetch(context.Background(), "https://vimeo.com/1"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("Fetch(invalid) error = %v, want ErrInvalidURL", err)
	}

	_, _, err := f.Fetch(context.Background(), "https://youtu.be/abc123")
	if err == nil || errors.Is(err, ErrNoCaptions) {
		t.Errorf("Fetch() error = %v, want a retrieval error", err)
	}
}

func TestMetadata(t *testing.T) {
	f := newTestFetcher(t, captionedPlayer)

	meta, err := f.Metadata(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if meta.Title != "Player Title" {
		t.Errorf("Title = %q, want Player Title", meta.Title)
	}

	notFound := newTestFetcher(t, func(string) string {
		return `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`
	})
	if _, err := notFound.Metadata(context.Background(), "gone"); !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("Metadata() error = %v, want ErrVideoNotFound", err)
	}
}

func TestParseCaptionsTimedText(t *testing.T) {
	xmlBody := `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.5">Hello &amp;amp; welcome</text>
<text start="1.5" dur="2">Hello &amp;amp; welcome</text>
<text start="3.5" dur="2">to the show</text>
</transcript>`

	got, err := parseCaptions([]byte(xmlBody))
	if err != nil {
		t.Fatalf("parseCaptions() error = %v", err)
	}
	if want := "Hello & welcome to the show"; got != want {
		t.Errorf("parseCaptions() = %q, want %q", got, want)
	}

	if _, err := parseCaptions([]byte("<transcript><text>unterminated")); err == nil {
		t.Error("parseCaptions() should fail on malformed XML")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Simple", `{"a": 1};rest`, `{"a": 1}`},
		{"Nested", `{"a": {"b": {}}} trailing`, `{"a": {"b": {}}}`},
		{"Braces in strings", `{"a": "}{"};`, `{"a": "}{"}`},
		{"Escaped quote", `{"a": "say \"hi\" }"} x`, `{"a": "say \"hi\" }"}`},
		{"Escaped backslash before quote", `{"a": "c:\\"} x`, `{"a": "c:\\"}`},
		{"Not an object", `null;`, ``},
		{"Unbalanced", `{"a": {`, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(extractJSON([]byte(tt.input))); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPickBestTrack(t *testing.T) {
	manualEN := captionTrack{BaseURL: "https://x/t?lang=en", LanguageCode: "en"}
	asrEN := captionTrack{BaseURL: "https://x/t?lang=en&kind=asr", LanguageCode: "en", Kind: "asr"}
	manualFR := captionTrack{BaseURL: "https://x/t?lang=fr", LanguageCode: "fr"}
	enGB := captionTrack{BaseURL: "https://x/t?lang=en-GB", LanguageCode: "en-GB"}
	poToken := captionTrack{BaseURL: "https://x/t?lang=en&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		langs  []string
		want   captionTrack
		wantOK bool
	}{
		{"Manual preferred over asr", []captionTrack{asrEN, manualEN}, []string{"en"}, manualEN, true},
		{"Asr in preferred language", []captionTrack{manualFR, asrEN}, []string{"en"}, asrEN, true},
		{"Language order respected", []captionTrack{manualEN, manualFR}, []string{"fr", "en"}, manualFR, true},
		{"Any English variant", []captionTrack{manualFR, enGB}, []string{"de"}, enGB, true},
		{"First usable otherwise", []captionTrack{manualFR}, []string{"de"}, manualFR, true},
		{"PoToken tracks skipped", []captionTrack{poToken, asrEN}, []string{"en"}, asrEN, true},
		{"Nothing usable", []captionTrack{poToken}, []string{"en"}, captionTrack{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, tt.langs)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("pickBestTrack() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWithVTTFormat(t *testing.T) {
	got := withVTTFormat("https://www.youtube.com/api/timedtext?v=abc&fmt=srv3")
	if !strings.Contains(got, "fmt=vtt") || strings.Contains(got, "srv3") {
		t.Errorf("withVTTFormat() = %s", got)
	}
}
