package models

import (
	"strings"
	"time"
)

const (
	UnknownTitle   = "Unknown Title"
	UnknownChannel = "Unknown Channel"
)

// VideoMetadata describes the video a transcript belongs to. Title and Channel
// are never empty once normalized; absence is represented by the Unknown sentinels.
type VideoMetadata struct {
	VideoID         string    `json:"video_id,omitempty"`
	Title           string    `json:"title"`
	Channel         string    `json:"channel"`
	Description     string    `json:"description"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	Duration        string    `json:"duration,omitempty"`
	PublishedAt     time.Time `json:"published_at,omitempty"`
	ViewCount       int64     `json:"view_count,omitempty"`
}

// NewVideoMetadata builds metadata with sentinel values for missing fields.
func NewVideoMetadata(title, channel, description string) VideoMetadata {
	return VideoMetadata{
		Title:       title,
		Channel:     channel,
		Description: description,
	}.Normalized()
}

// Normalized returns a copy with empty Title/Channel replaced by the sentinels.
func (m VideoMetadata) Normalized() VideoMetadata {
	m.Title = strings.TrimSpace(m.Title)
	m.Channel = strings.TrimSpace(m.Channel)
	if m.Title == "" {
		m.Title = UnknownTitle
	}
	if m.Channel == "" {
		m.Channel = UnknownChannel
	}
	return m
}

// URL returns the canonical watch URL when the video ID is known.
func (m VideoMetadata) URL() string {
	if m.VideoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + m.VideoID
}
