package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"summary-stack/internal/models"
	"summary-stack/shared/config"
	"summary-stack/shared/summarizer"
)

// ErrNoCaptions means the video exists but offers no caption track we can fetch.
var ErrNoCaptions = errors.New("no captions available")

const (
	defaultBaseURL = "https://www.youtube.com"
	browserUA      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	maxWatchPageBytes = 6 << 20
	maxCaptionBytes   = 2 << 20

	playerResponseMarker = "ytInitialPlayerResponse = "
)

// MetadataSource resolves video metadata by ID. *Client satisfies it.
type MetadataSource interface {
	VideoMetadata(ctx context.Context, videoID string) (models.VideoMetadata, error)
}

// Fetcher retrieves transcripts by scraping the watch page for caption tracks.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	languages  []string
	metadata   MetadataSource
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithBaseURL points the fetcher at a different host serving watch pages.
func WithBaseURL(base string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(base, "/")
	}
}

// WithMetadataSource makes the fetcher prefer the given source for metadata
// over what the watch page carries.
func WithMetadataSource(m MetadataSource) FetcherOption {
	return func(f *Fetcher) {
		f.metadata = m
	}
}

func NewFetcher(cfg *config.YouTubeConfig, opts ...FetcherOption) *Fetcher {
	languages := []string{"en"}
	if cfg.Language != "" && cfg.Language != "en" {
		languages = []string{cfg.Language, "en"}
	}

	f := &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    defaultBaseURL,
		languages:  languages,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	VideoDetails *struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		Author           string `json:"author"`
		ShortDescription string `json:"shortDescription"`
		LengthSeconds    string `json:"lengthSeconds"`
		ViewCount        string `json:"viewCount"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the transcript and metadata for a video URL. When the video
// has no usable captions the metadata is still returned alongside ErrNoCaptions.
func (f *Fetcher) Fetch(ctx context.Context, videoURL string) (string, models.VideoMetadata, error) {
	videoID, ok := ExtractVideoID(videoURL)
	if !ok {
		return "", models.VideoMetadata{}, fmt.Errorf("%w: %s", ErrInvalidURL, videoURL)
	}

	page, err := f.watchPage(ctx, videoID)
	if err != nil {
		return "", models.VideoMetadata{}, err
	}

	player, err := parsePlayerResponse(page)
	if err != nil {
		log.Printf("Warning: %s: %v", videoID, err)
		player = &playerResponse{}
	}

	meta := f.resolveMetadata(ctx, videoID, page, player)

	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return "", meta, fmt.Errorf("%w: %s", ErrNoCaptions, player.PlayabilityStatus.Reason)
		}
		return "", meta, ErrNoCaptions
	}

	track, ok := pickBestTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, f.languages)
	if !ok {
		return "", meta, fmt.Errorf("%w: all caption tracks require a browser session", ErrNoCaptions)
	}

	transcript, err := f.fetchCaptions(ctx, track.BaseURL)
	if err != nil {
		return "", meta, err
	}
	return transcript, meta, nil
}

// Metadata resolves metadata for a video ID without fetching captions.
func (f *Fetcher) Metadata(ctx context.Context, videoID string) (models.VideoMetadata, error) {
	if f.metadata != nil {
		meta, err := f.metadata.VideoMetadata(ctx, videoID)
		if err == nil {
			return meta, nil
		}
		if errors.Is(err, ErrVideoNotFound) {
			return models.VideoMetadata{}, err
		}
		log.Printf("Warning: metadata lookup for %s failed, using watch page: %v", videoID, err)
	}

	page, err := f.watchPage(ctx, videoID)
	if err != nil {
		return models.VideoMetadata{}, err
	}
	player, err := parsePlayerResponse(page)
	if err != nil {
		player = &playerResponse{}
	}
	if player.VideoDetails == nil && player.PlayabilityStatus != nil && player.PlayabilityStatus.Status == "ERROR" {
		return models.VideoMetadata{}, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	return metadataFromPage(videoID, page, player), nil
}

func (f *Fetcher) resolveMetadata(ctx context.Context, videoID string, page []byte, player *playerResponse) models.VideoMetadata {
	if f.metadata != nil {
		meta, err := f.metadata.VideoMetadata(ctx, videoID)
		if err == nil {
			return meta
		}
		log.Printf("Warning: metadata lookup for %s failed, using watch page: %v", videoID, err)
	}
	return metadataFromPage(videoID, page, player)
}

func (f *Fetcher) watchPage(ctx context.Context, videoID string) ([]byte, error) {
	body, err := f.get(ctx, f.baseURL+"/watch?v="+videoID, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watch page: %w", err)
	}
	return body, nil
}

func (f *Fetcher) fetchCaptions(ctx context.Context, baseURL string) (string, error) {
	body, err := f.get(ctx, withVTTFormat(baseURL), maxCaptionBytes)
	if err != nil {
		return "", fmt.Errorf("failed to fetch captions: %w", err)
	}
	return parseCaptions(body)
}

func (f *Fetcher) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func withVTTFormat(trackURL string) string {
	u, err := url.Parse(trackURL)
	if err != nil {
		return trackURL
	}
	q := u.Query()
	q.Set("fmt", "vtt")
	u.RawQuery = q.Encode()
	return u.String()
}

// parseCaptions accepts either a WebVTT payload or timedtext XML.
func parseCaptions(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("WEBVTT")) {
		return summarizer.ParseSubtitles(string(trimmed)), nil
	}

	var tt timedText
	if err := xml.Unmarshal(trimmed, &tt); err != nil {
		return "", fmt.Errorf("failed to parse captions: %w", err)
	}
	lines := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		lines = append(lines, line.Text)
	}
	return summarizer.ParseSubtitles(strings.Join(lines, "\n")), nil
}

func parsePlayerResponse(page []byte) (*playerResponse, error) {
	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	data := extractJSON(page[idx+len(playerResponseMarker):])
	if data == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var resp playerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode ytInitialPlayerResponse: %w", err)
	}
	return &resp, nil
}

// extractJSON returns the balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track. Tracks needing a PoToken are skipped.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !strings.Contains(t.BaseURL, "&exp=xpe") {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func metadataFromPage(videoID string, page []byte, player *playerResponse) models.VideoMetadata {
	meta := models.VideoMetadata{VideoID: videoID}
	if d := player.VideoDetails; d != nil {
		meta.Title = d.Title
		meta.Channel = d.Author
		meta.Description = d.ShortDescription
		if n, err := strconv.Atoi(d.LengthSeconds); err == nil {
			meta.DurationSeconds = n
			meta.Duration = FormatDuration(n)
		}
		if n, err := strconv.ParseInt(d.ViewCount, 10, 64); err == nil {
			meta.ViewCount = n
		}
	}

	if meta.Title == "" || meta.Channel == "" || meta.Description == "" {
		fallback := scrapePageMetadata(page)
		if meta.Title == "" {
			meta.Title = fallback.Title
		}
		if meta.Channel == "" {
			meta.Channel = fallback.Channel
		}
		if meta.Description == "" {
			meta.Description = fallback.Description
		}
	}

	return meta.Normalized()
}
