package resources

import (
	"fmt"
	"strings"

	"roomdesk/pkg/model"
)

// Branch lists the rooms bookable at one office location.
type Branch struct {
	Name  string   `json:"name"`
	Rooms []string `json:"rooms"`
}

// Catalog is the fixed set of branches and rooms. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	branches []Branch
	index    map[model.Resource]struct{}
}

// Parse reads "Branch:Room A|Room B;Other Branch:Room C". Branch and room
// names are trimmed; order is preserved and duplicates are rejected.
func Parse(raw string) (*Catalog, error) {
	c := &Catalog{index: make(map[model.Resource]struct{})}
	seenBranch := make(map[string]bool)

	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, roomList, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid branch entry %q: expected Branch:Room|Room", entry)
		}
		if seenBranch[name] {
			return nil, fmt.Errorf("duplicate branch %q", name)
		}
		seenBranch[name] = true

		branch := Branch{Name: name}
		for _, room := range strings.Split(roomList, "|") {
			room = strings.TrimSpace(room)
			if room == "" {
				continue
			}
			r := model.Resource{Branch: name, Room: room}
			if _, dup := c.index[r]; dup {
				return nil, fmt.Errorf("duplicate room %q in branch %q", room, name)
			}
			c.index[r] = struct{}{}
			branch.Rooms = append(branch.Rooms, room)
		}
		if len(branch.Rooms) == 0 {
			return nil, fmt.Errorf("branch %q has no rooms", name)
		}
		c.branches = append(c.branches, branch)
	}

	if len(c.branches) == 0 {
		return nil, fmt.Errorf("no branches configured")
	}
	return c, nil
}

func MustParse(raw string) *Catalog {
	c, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) List() []Branch {
	out := make([]Branch, len(c.branches))
	for i, b := range c.branches {
		out[i] = Branch{Name: b.Name, Rooms: append([]string(nil), b.Rooms...)}
	}
	return out
}

// Resources flattens the catalog in configuration order.
func (c *Catalog) Resources() []model.Resource {
	var out []model.Resource
	for _, b := range c.branches {
		for _, room := range b.Rooms {
			out = append(out, model.Resource{Branch: b.Name, Room: room})
		}
	}
	return out
}

func (c *Catalog) Exists(resource model.Resource) bool {
	_, ok := c.index[resource]
	return ok
}
