package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const botID = "bot"

// fakeMessages is an in-memory channel history, newest message first.
type fakeMessages struct {
	mu       sync.Mutex
	seq      int
	channels map[string][]*discordgo.Message
	editErr  error
	scanErr  error

	sends, edits, scans, deletes, bulk int
	bulkIDs                            []string
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{channels: map[string][]*discordgo.Message{}}
}

func unknownMessage() error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage, Message: "Unknown Message"}}
}

// put adds a message as the newest one in the channel.
func (f *fakeMessages) put(channelID, authorID string, embeds []*discordgo.MessageEmbed, ts time.Time) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	m := &discordgo.Message{
		ID:        fmt.Sprintf("m%d", f.seq),
		ChannelID: channelID,
		Author:    &discordgo.User{ID: authorID},
		Embeds:    embeds,
		Timestamp: ts,
	}
	f.channels[channelID] = append([]*discordgo.Message{m}, f.channels[channelID]...)
	return m
}

func (f *fakeMessages) find(channelID, id string) *discordgo.Message {
	for _, m := range f.channels[channelID] {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (f *fakeMessages) remove(channelID, id string) bool {
	msgs := f.channels[channelID]
	for i, m := range msgs {
		if m.ID == id {
			f.channels[channelID] = append(msgs[:i:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeMessages) count(channelID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels[channelID])
}

func (f *fakeMessages) ChannelMessages(channelID string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	msgs := f.channels[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return append([]*discordgo.Message(nil), msgs...), nil
}

func (f *fakeMessages) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m := f.put(channelID, botID, data.Embeds, time.Now())
	f.mu.Lock()
	f.sends++
	f.mu.Unlock()
	return m, nil
}

func (f *fakeMessages) ChannelMessageEditComplex(e *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits++
	if f.editErr != nil {
		return nil, f.editErr
	}
	m := f.find(e.Channel, e.ID)
	if m == nil {
		return nil, unknownMessage()
	}
	if e.Embeds != nil {
		m.Embeds = *e.Embeds
	}
	return m, nil
}

func (f *fakeMessages) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if !f.remove(channelID, messageID) {
		return unknownMessage()
	}
	return nil
}

func (f *fakeMessages) ChannelMessagesBulkDelete(channelID string, ids []string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk++
	f.bulkIDs = append(f.bulkIDs, ids...)
	for _, id := range ids {
		f.remove(channelID, id)
	}
	return nil
}

func dashboardEmbed(desc string) []*discordgo.MessageEmbed {
	return []*discordgo.MessageEmbed{{
		Author:      &discordgo.MessageEmbedAuthor{Name: string(RoleDashboard)},
		Description: desc,
	}}
}
