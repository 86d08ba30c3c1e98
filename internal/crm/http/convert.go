package http

import (
	"github.com/matheuspina/avaliatec/internal/crm/domain"
	"github.com/matheuspina/avaliatec/pkg/crmsdk"
)

func toUser(u domain.User) crmsdk.User {
	return crmsdk.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		GroupID:      u.GroupID,
		Status:       string(u.Status),
		LastAccessAt: u.LastAccessAt,
		CreatedAt:    u.CreatedAt,
	}
}

func toGroup(g domain.Group, userCount int) crmsdk.Group {
	return crmsdk.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		IsDefault:   g.IsDefault,
		IsAdmin:     g.IsAdmin(),
		UserCount:   userCount,
		CreatedAt:   g.CreatedAt,
	}
}

func toInvite(i domain.Invite) crmsdk.Invite {
	return crmsdk.Invite{
		ID:         i.ID,
		Email:      i.Email,
		GroupID:    i.GroupID,
		Status:     string(i.Status),
		ExpiresAt:  i.ExpiresAt,
		InvitedBy:  i.InvitedBy,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
	}
}

func toClient(c domain.Client) crmsdk.CRMClient {
	return crmsdk.CRMClient{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Document:  c.Document,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toInstance(i domain.Instance) crmsdk.Instance {
	return crmsdk.Instance{
		ID:          i.ID,
		Name:        i.Name,
		DisplayName: i.DisplayName,
		Status:      string(i.Status),
		QRCode:      i.QRCode,
		Phone:       i.Phone,
		CreatedAt:   i.CreatedAt,
	}
}

func toContact(c domain.Contact) crmsdk.Contact {
	return crmsdk.Contact{
		ID:         c.ID,
		InstanceID: c.InstanceID,
		Phone:      c.Phone,
		Name:       c.Name,
		AvatarURL:  c.AvatarURL,
		ClientID:   c.ClientID,
	}
}

func toMessage(m domain.Message) crmsdk.Message {
	return crmsdk.Message{
		ID:         m.ID,
		InstanceID: m.InstanceID,
		ContactID:  m.ContactID,
		ExternalID: m.ExternalID,
		Direction:  string(m.Direction),
		Body:       m.Body,
		Type:       m.Type,
		Status:     string(m.Status),
		Error:      m.Error,
		SentBy:     m.SentBy,
		Timestamp:  m.Timestamp,
	}
}

// mapSlice converts every element with fn and never returns nil, so lists
// encode as [] rather than null.
func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
