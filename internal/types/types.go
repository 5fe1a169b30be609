// Package types provides shared type definitions for the application.
package types

import "time"

// AudioFile describes a finalized recording on disk. It is produced by the
// recorder, read by the workflow, and deleted by the audio subsystem once the
// transcription has been persisted.
type AudioFile struct {
	Path      string        `json:"path"`
	Duration  time.Duration `json:"duration"`
	SizeBytes int64         `json:"sizeBytes"`
}

// HistoryItem is one persisted transcription. Items are immutable after
// creation; the store assigns the ID when it is empty.
type HistoryItem struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	Timestamp      time.Time     `json:"timestamp"`
	Duration       time.Duration `json:"duration"`
	AudioPath      string        `json:"audioPath,omitempty"`
	Confidence     float64       `json:"confidence,omitempty"`
	Model          string        `json:"model,omitempty"`
	Language       string        `json:"language,omitempty"`
	CustomPrompt   string        `json:"customPrompt,omitempty"`
	Temperature    float64       `json:"temperature,omitempty"`
	WordCount      int           `json:"wordCount"`
	WordsPerMinute float64       `json:"wordsPerMinute"`
}

// ServiceReadiness reports whether the background capture service can be
// used right now.
type ServiceReadiness struct {
	ServiceConnected   bool `json:"serviceConnected"`
	PermissionsGranted bool `json:"permissionsGranted"`
}
