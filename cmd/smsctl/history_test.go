package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

func TestWriteHistoryTable(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	entries := []domain.HistoryEntry{
		{
			Recipient: "+15551234567", Body: "Water the plants", Provider: "twilio",
			Status: domain.StatusFailed, Error: "provider down",
			SentAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			Recipient: "+15551234567", Body: "Water the plants", Provider: "twilio",
			Status: domain.StatusSent, ProviderMessageID: "SM42",
			SentAt: time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	writeHistoryTable(&buf, entries, istanbul)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SENT AT")
	assert.Contains(t, lines[1], "2024-05-01 12:00:00")
	assert.Contains(t, lines[1], "provider down")
	assert.Contains(t, lines[2], "SM42")
	assert.NotContains(t, lines[2], "provider down")
}
