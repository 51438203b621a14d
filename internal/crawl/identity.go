package crawl

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/forummirror/internal/model"
	"github.com/nao1215/forummirror/internal/normalize"
)

// resolveUser maps a display name to a stored user, creating one on first
// sight. The side effect is at most one insert; re-encountering a name
// always resolves to the existing record.
//
// On creation, the registration date is taken from the author profile
// snippet of the post fragment currently being processed, when the snippet
// carries one. First sight wins: a record created without a registration
// date is not revisited when a later page reveals it.
func (m *Mirror) resolveUser(ctx context.Context, name string, fragment *goquery.Selection) (*model.User, error) {
	user, err := m.store.FindUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &model.User{
		Name:       name,
		Registered: m.registeredAt(fragment),
	}
	if err := m.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	m.stats.UsersCreated++
	m.logger.Info("created user", "name", name)
	return user, nil
}

// registeredAt extracts the registration timestamp from a post fragment's
// author profile snippet. Returns nil when the snippet or its date is
// absent or unparseable; an unknown registration date never blocks
// ingestion of the post itself.
func (m *Mirror) registeredAt(fragment *goquery.Selection) *time.Time {
	var raw string
	fragment.Find(selAuthorInfo).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !strings.HasPrefix(strings.TrimSpace(row.Text()), registeredPrefix) {
			return true
		}
		raw = strings.TrimSpace(row.Find("strong").First().Text())
		return false
	})
	if raw == "" {
		return nil
	}

	t, err := normalize.ResolveTimestamp(raw, m.now())
	if err != nil {
		m.logger.Debug("unparseable registration date", "value", raw, "error", err)
		return nil
	}
	return &t
}
