package discord

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

func (h *Handler) sendLongMessage(s Sender, channelID, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}

	// Part indicator format: "*(Part X/Y)*" is about 15 chars, so reserve 20
	const partIndicatorReserve = 20
	chunks := splitMessage(content, DiscordMaxMessageLength-partIndicatorReserve)

	for i, chunk := range chunks {
		message := chunk
		if len(chunks) > 1 {
			message = fmt.Sprintf("%s\n*(Part %d/%d)*", chunk, i+1, len(chunks))
		}

		if _, err := s.ChannelMessageSend(channelID, message); err != nil {
			h.logger.Error("Failed to send message chunk",
				zap.Error(err),
				zap.String("channel_id", channelID),
				zap.Int("chunk", i+1),
				zap.Int("total_chunks", len(chunks)),
			)
			break
		}

		if i < len(chunks)-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// splitMessage splits content into chunks of at most maxLength bytes,
// breaking on whitespace where possible.
func splitMessage(content string, maxLength int) []string {
	if len(content) <= maxLength {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	for _, word := range strings.Fields(content) {
		for len(word) > maxLength {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, word[:maxLength])
			word = word[maxLength:]
		}
		if current.Len() > 0 && current.Len()+1+len(word) > maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
