package directory

import (
	"context"
	"strings"

	"roomdesk/pkg/model"

	"gorm.io/gorm"
)

type ContactRepository interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, contact *model.Contact) error
	Search(ctx context.Context, query string, limit int) ([]*model.Contact, error)
}

type gormContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &gormContactRepository{db: db}
}

func (r *gormContactRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.Contact{})
}

func (r *gormContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// Search matches query case-insensitively as a substring of name or email,
// ordered by name. An empty query lists contacts up to limit.
func (r *gormContactRepository) Search(ctx context.Context, query string, limit int) ([]*model.Contact, error) {
	q := r.db.WithContext(ctx).Model(&model.Contact{})

	if s := strings.TrimSpace(query); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var contacts []*model.Contact
	if err := q.Order("name ASC").Order("id ASC").Limit(limit).Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
