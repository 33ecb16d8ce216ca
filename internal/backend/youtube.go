package backend

import (
	"regexp"
	"strings"
)

// VideoIDLength is the length of every YouTube video ID
const VideoIDLength = 11

var (
	videoIDPattern  = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
	youtubeURLRegex = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)
	plainURLRegex   = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
)

// ExtractVideoID returns the 11 character video ID from watch, short, embed and v/ URLs
func ExtractVideoID(rawURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil || len(m[2]) != VideoIDLength {
		return "", ErrInvalidVideoURL
	}
	return m[2], nil
}

// IsYouTubeURL reports whether input points at youtube.com or youtu.be
func IsYouTubeURL(input string) bool {
	return youtubeURLRegex.MatchString(strings.TrimSpace(input))
}

// IsPlainURL reports whether input looks like any web address
func IsPlainURL(input string) bool {
	return plainURLRegex.MatchString(strings.TrimSpace(input))
}
