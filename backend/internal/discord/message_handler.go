// Package discord adapts Discord messages to the response orchestrator.
// Each channel is one conversation, so a pending question asked in a
// channel can be answered by anyone in it.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"wordweave/backend/internal/agent"
	"wordweave/backend/internal/scheduler"
)

// DiscordMaxMessageLength is Discord's hard message limit
const DiscordMaxMessageLength = 2000

// teachPrefix starts an explicit teaching command: "!teach question | answer"
const teachPrefix = "!teach"

// statusCommand replies with the learning status
const statusCommand = "!status"

// Responder is the orchestrator surface the bot drives.
type Responder interface {
	Respond(ctx context.Context, conv *agent.Conversation, input string) agent.Reply
	LearnFromUserTeaching(ctx context.Context, question, answer string) bool
}

// StatusSource reports learning progress for !status.
type StatusSource interface {
	Status() scheduler.Status
}

// Sender posts messages to a channel. *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler handles Discord message processing
type Handler struct {
	responder     Responder
	status        StatusSource
	conversations *agent.Conversations
	logger        *zap.Logger
}

// NewHandler creates a new Discord message handler
func NewHandler(responder Responder, status StatusSource, conversations *agent.Conversations, logger *zap.Logger) *Handler {
	return &Handler{
		responder:     responder,
		status:        status,
		conversations: conversations,
		logger:        logger,
	}
}

// HandleMessage processes a Discord message
func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State == nil || s.State.User == nil {
		return
	}
	h.handle(context.Background(), s, s.State.User.ID, m)
}

func (h *Handler) handle(ctx context.Context, s Sender, botID string, m *discordgo.MessageCreate) {
	content, ok := addressedContent(botID, m)
	if !ok {
		return
	}

	h.logger.Info("Processing Discord message",
		zap.String("user_id", m.Author.ID),
		zap.String("channel_id", m.ChannelID),
		zap.Bool("is_dm", m.GuildID == ""),
	)

	if args, ok := commandArgs(content, teachPrefix); ok {
		h.sendLongMessage(s, m.ChannelID, h.teach(ctx, args))
		return
	}

	switch {
	case strings.EqualFold(content, statusCommand):
		h.sendLongMessage(s, m.ChannelID, formatStatus(h.status.Status()))
	default:
		conv := h.conversations.Get(m.ChannelID)
		reply := h.responder.Respond(ctx, conv, content)
		h.sendLongMessage(s, m.ChannelID, reply.Text)
	}
}

func (h *Handler) teach(ctx context.Context, args string) string {
	question, answer, found := strings.Cut(args, "|")
	question, answer = strings.TrimSpace(question), strings.TrimSpace(answer)
	if !found || question == "" || answer == "" {
		return "Usage: !teach <question> | <answer>"
	}
	if h.responder.LearnFromUserTeaching(ctx, question, answer) {
		return "Thank you! I'll remember that."
	}
	return "I couldn't learn anything from that."
}

// commandArgs returns the text after command when content starts with it
// as a whole word.
func commandArgs(content, command string) (string, bool) {
	if len(content) < len(command) || !strings.EqualFold(content[:len(command)], command) {
		return "", false
	}
	rest := content[len(command):]
	if rest != "" && !unicode.IsSpace(rune(rest[0])) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// addressedContent reports whether the bot should react to m and returns
// the message text without a leading bot mention. The bot reacts to DMs
// and to messages that mention it, never to its own messages.
func addressedContent(botID string, m *discordgo.MessageCreate) (string, bool) {
	if m.Author == nil || m.Author.ID == botID {
		return "", false
	}

	isDM := m.GuildID == ""
	isMentioned := false
	for _, mention := range m.Mentions {
		if mention.ID == botID {
			isMentioned = true
			break
		}
	}

	content := strings.TrimSpace(m.Content)
	for _, prefix := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, prefix) {
			isMentioned = true
			content = strings.TrimSpace(strings.TrimPrefix(content, prefix))
		}
	}

	if !isDM && !isMentioned {
		return "", false
	}
	return content, content != ""
}

func formatStatus(st scheduler.Status) string {
	var b strings.Builder
	state := "paused"
	if st.Active {
		state = "active"
	}
	fmt.Fprintf(&b, "Learning is %s, every %ds. ", state, st.IntervalSeconds)
	if st.LastCycle != nil {
		fmt.Fprintf(&b, "Last cycle %s ago. ", time.Since(*st.LastCycle).Round(time.Second))
	}
	fmt.Fprintf(&b, "I know %d synonym pairs, %d antonym pairs, %d associations and %d definitions, with %d connections.",
		st.RelationStats.SynonymPairs,
		st.RelationStats.AntonymPairs,
		st.RelationStats.AssociationPairs,
		st.RelationStats.Definitions,
		st.ConnectionCount,
	)
	return b.String()
}
