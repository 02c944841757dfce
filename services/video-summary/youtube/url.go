package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidURL = errors.New("invalid YouTube URL")

var (
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=[\w-]+`),
		regexp.MustCompile(`^https?://(?:www\.)?youtu\.be/[\w-]+`),
		regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/embed/[\w-]+`),
		regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/v/[\w-]+`),
		regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/shorts/[\w-]+`),
	}
	videoIDRe = regexp.MustCompile(`^[\w-]+$`)
)

// IsValidVideoURL reports whether raw has one of the recognized video URL shapes.
func IsValidVideoURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	for _, re := range videoURLPatterns {
		if re.MatchString(raw) {
			return true
		}
	}
	return false
}

// ExtractVideoID returns the video ID carried by a recognized video URL.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !IsValidVideoURL(raw) {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	var id string
	host := strings.TrimPrefix(strings.TrimPrefix(u.Host, "www."), "m.")
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case u.Path == "/watch":
		id = u.Query().Get("v")
	default:
		for _, prefix := range []string{"/embed/", "/v/", "/shorts/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	if !videoIDRe.MatchString(id) {
		return "", false
	}
	return id, true
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// FormatDuration renders seconds as m:ss, or h:mm:ss from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
