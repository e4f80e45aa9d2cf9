package directory

import (
	"context"
	"fmt"

	"roomdesk/pkg/config"
	apperrors "roomdesk/pkg/errors"
	"roomdesk/pkg/logger"
	"roomdesk/pkg/model"
	"roomdesk/pkg/sanitizer"
)

// Suggestion is a contact plus the invitee string the dialog inserts for it.
type Suggestion struct {
	model.Contact
	Invitee string `json:"invitee"`
}

type Service struct {
	repo ContactRepository
	log  *logger.Logger
}

func NewService(repo ContactRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = sanitizer.TrimAndNormalize(query)
	limit = config.NormalizeContactLimit(limit)

	contacts, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		s.log.Error("Contact search failed", "query", query, "error", err)
		return nil, apperrors.Internal("Failed to search contacts", err)
	}

	out := make([]Suggestion, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, Suggestion{Contact: *c, Invitee: FormatInvitee(c)})
	}
	return out, nil
}

// FormatInvitee renders a contact as "Name <email>", or just the email when
// the contact has no name.
func FormatInvitee(c *model.Contact) string {
	if c.Name == "" {
		return c.Email
	}
	return sanitizer.NormalizeInvitee(fmt.Sprintf("%s <%s>", c.Name, c.Email))
}
