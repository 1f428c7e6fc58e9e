package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// PagerConfig holds the knobs the pagination sweeps need. Waits are
// endpoint-tiered: Slack sanctions different polling rates per method family,
// so the caller picks them, not the transport.
type PagerConfig struct {
	PageSize    int
	HistoryWait time.Duration
	ListWait    time.Duration
}

// Pager drives repeated transport calls until an endpoint reports the end of
// its stream, stitching page batches into one ordered, duplicate-free
// sequence. Each sweep is strictly sequential: every request's bound (the
// latest timestamp or the opaque cursor) only exists once the previous
// response has arrived.
type Pager struct {
	client *Client
	logger *slog.Logger
	cfg    PagerConfig
}

// NewPager creates a pager over the given client.
func NewPager(client *Client, logger *slog.Logger, cfg PagerConfig) *Pager {
	return &Pager{client: client, logger: logger, cfg: cfg}
}

// History retrieves every message in the conversation between oldest and
// latest (both inclusive) using timestamp-windowed pagination, newest first.
//
// Consecutive pages may overlap by exactly one boundary message; the overlap
// is dropped before concatenating. An empty batch always ends the sweep, even
// when has_more is set: an empty page claiming more data is a source anomaly,
// not something worth looping on.
func (p *Pager) History(ctx context.Context, channel string, oldest, latest time.Time) ([]Message, error) {
	p.logger.Info("retrieving messages",
		"channel", channel, "oldest", oldest, "latest", latest)

	params := url.Values{}
	params.Set("channel", channel)
	params.Set("inclusive", "true")
	params.Set("oldest", formatAPITime(oldest))
	params.Set("latest", formatAPITime(latest))
	params.Set("count", strconv.Itoa(p.cfg.PageSize))

	var messages []Message
	for {
		raw, err := p.client.Get(ctx, "conversations.history", params, HistorySchema, p.cfg.HistoryWait)
		if err != nil {
			return nil, err
		}

		var page historyResponse
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode history page: %w", err)
		}

		batch := page.Messages
		if len(batch) == 0 {
			break
		}

		// Window bounds are inclusive, so the first message of this page
		// can be the last message of the previous one.
		if len(messages) > 0 && batch[0].TS == messages[len(messages)-1].TS {
			messages = append(messages, batch[1:]...)
		} else {
			messages = append(messages, batch...)
		}

		if !page.HasMore {
			break
		}

		p.logger.Info("messages retrieved so far", "count", len(messages))
		params.Set("latest", batch[len(batch)-1].TS)
	}

	p.logger.Info("retrieved messages", "count", len(messages))
	return messages, nil
}

// Users retrieves the full workspace member list using cursor pagination and
// returns the id to display-name map.
func (p *Pager) Users(ctx context.Context) (map[string]string, error) {
	p.logger.Info("retrieving user mappings")

	users := make(map[string]string)
	err := p.eachPage(ctx, "users.list", UsersSchema, func(raw json.RawMessage) (string, error) {
		var page usersResponse
		if err := json.Unmarshal(raw, &page); err != nil {
			return "", fmt.Errorf("decode users page: %w", err)
		}
		for _, m := range page.Members {
			users[m.ID] = m.Profile.DisplayName
		}
		return nextCursor(page.ResponseMetadata), nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("retrieved user mappings", "count", len(users))
	return users, nil
}

// Channels retrieves the conversation list using cursor pagination and
// returns the id to name map used for channel mentions.
func (p *Pager) Channels(ctx context.Context) (map[string]string, error) {
	p.logger.Info("retrieving channel mappings")

	channels := make(map[string]string)
	err := p.eachPage(ctx, "conversations.list", ChannelsSchema, func(raw json.RawMessage) (string, error) {
		var page channelsResponse
		if err := json.Unmarshal(raw, &page); err != nil {
			return "", fmt.Errorf("decode channels page: %w", err)
		}
		for _, ch := range page.Channels {
			channels[ch.ID] = ch.Name
		}
		return nextCursor(page.ResponseMetadata), nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("retrieved channel mappings", "count", len(channels))
	return channels, nil
}

// eachPage drives one cursor-windowed sweep. The first request carries no
// cursor; the sweep ends when a response comes back without one (absent or
// empty).
func (p *Pager) eachPage(ctx context.Context, method string, schema *Schema, consume func(json.RawMessage) (string, error)) error {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(p.cfg.PageSize))

	for {
		raw, err := p.client.Get(ctx, method, params, schema, p.cfg.ListWait)
		if err != nil {
			return err
		}

		cursor, err := consume(raw)
		if err != nil {
			return err
		}
		if cursor == "" {
			return nil
		}
		params.Set("cursor", cursor)
	}
}

func nextCursor(md *responseMetadata) string {
	if md == nil {
		return ""
	}
	return md.NextCursor
}

// formatAPITime renders a time as the fractional epoch-seconds string the
// history endpoint expects for its window bounds.
func formatAPITime(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}
