package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/festival-coordinator/internal/model"
)

// EmptySummary is stored when a call had nothing but system turns.
const EmptySummary = "No conversation content to summarize."

// AssistantName labels assistant turns in the rendered transcript.
const AssistantName = "Sophie"

// Turn is one utterance of the conversation.
type Turn struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Summarizer turns a rendered transcript into free text. The result is
// stored as-is.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, transcript string) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, transcript string) (string, error) {
	return f(ctx, transcript)
}

// RenderTranscript prints the turns one per line as "Speaker: text".
// System turns and empty turns are left out.
func RenderTranscript(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		if t.Role == "system" || t.Content == "" {
			continue
		}
		speaker := "User"
		if t.Role == "assistant" {
			speaker = AssistantName
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", speaker, t.Content)
	}
	return b.String()
}

// Summarize calls sum unless the transcript is blank, in which case it
// returns EmptySummary without consulting it.
func Summarize(ctx context.Context, sum Summarizer, turns []Turn) (string, error) {
	text := RenderTranscript(turns)
	if strings.TrimSpace(text) == "" {
		return EmptySummary, nil
	}
	return sum.Summarize(ctx, text)
}

// Transcript encodes the turns for Call.transcript. No turns means no
// transcript.
func Transcript(turns []Turn) (model.RawJSON, error) {
	if len(turns) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return nil, fmt.Errorf("could not encode transcript: %w", err)
	}
	return model.RawJSON(raw), nil
}
