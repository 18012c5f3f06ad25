package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("amqp://unused", dir)

	group := uuid.New()
	started := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	ended := started.Add(7*time.Minute + 30*time.Second)

	for _, ev := range []CallEvent{
		{Type: CallStarted, CallID: uuid.New(), GroupID: &group, GroupName: "Desert crew", FromNumber: "+15550100", StartedAt: started},
		{Type: CallEnded, CallID: uuid.New(), GroupID: &group, StartedAt: started, EndedAt: &ended, Summary: `Chose "EDC"`},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, c.handle(body))
	}

	raw, err := os.ReadFile(filepath.Join(dir, CallLogFile))
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "[2026-05-01T18:00:00Z] Call started | call_id=")
	assert.Contains(t, out, `group="Desert crew" | from=+15550100`)
	assert.Contains(t, out, "duration=7m30s")
	assert.Contains(t, out, `summary="Chose \"EDC\""`)
}

func TestHandleRejectsGarbage(t *testing.T) {
	c := NewConsumer("amqp://unused", t.TempDir())
	assert.Error(t, c.handle([]byte("not json")))
}

func TestFormatLineWithoutGroup(t *testing.T) {
	line := formatLine(CallEvent{Type: CallEnded, CallID: uuid.Nil})
	assert.Contains(t, line, "group_id=-")
	assert.Contains(t, line, "duration=-")
}
