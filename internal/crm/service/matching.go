package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/slogx"
)

const brazilCountryCode = "55"

// NormalizePhone keeps digits only, drops trunk zeros and prefixes the
// Brazilian country code on national numbers (10 or 11 digits).
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if n := len(digits); n == 10 || n == 11 {
		digits = brazilCountryCode + digits
	}
	return digits
}

// PhoneCandidates returns the normalised phone plus its Brazilian mobile
// variant with or without the ninth digit.
func PhoneCandidates(raw string) []string {
	p := NormalizePhone(raw)
	if p == "" {
		return nil
	}
	out := []string{p}
	if !strings.HasPrefix(p, brazilCountryCode) {
		return out
	}
	switch len(p) {
	case 13:
		// 55 + DDD + 9 + 8 digits
		if p[4] == '9' {
			out = append(out, p[:4]+p[5:])
		}
	case 12:
		// 55 + DDD + 8 digits; mobiles start at 6-9
		if p[4] >= '6' {
			out = append(out, p[:4]+"9"+p[4:])
		}
	}
	return out
}

// MatchService links WhatsApp contacts to CRM clients by phone.
type MatchService struct {
	Store store.Store
}

// MatchContact links c to the oldest client with a matching phone and
// reports whether a link was made.
func (s *MatchService) MatchContact(ctx context.Context, c domain.Contact) (bool, error) {
	if c.ClientID != nil {
		return false, nil
	}
	candidates := PhoneCandidates(c.Phone)
	if len(candidates) == 0 {
		return false, nil
	}

	client, err := s.Store.Clients().FindClientByPhones(ctx, candidates)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.Store.Contacts().LinkClient(ctx, c.ID, client.ID); err != nil {
		return false, err
	}

	slogx.FromContext(ctx).Info("contact linked to client",
		slog.String("contact_id", c.ID),
		slog.String("client_id", client.ID),
	)
	return true, nil
}

// MatchUnlinked tries every unlinked contact up to limit and returns how many
// were linked.
func (s *MatchService) MatchUnlinked(ctx context.Context, limit int) (int, error) {
	contacts, err := s.Store.Contacts().ListUnlinkedContacts(ctx, limit)
	if err != nil {
		return 0, err
	}

	linked := 0
	for _, c := range contacts {
		ok, err := s.MatchContact(ctx, c)
		if err != nil {
			slogx.FromContext(ctx).Warn("contact match failed",
				slog.String("contact_id", c.ID),
				slog.Any("error", err),
			)
			continue
		}
		if ok {
			linked++
		}
	}
	return linked, nil
}
