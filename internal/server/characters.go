package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// characterCatalog holds the character sets rooms can bind to. Sets are
// immutable once created, so reads hand out the stored value directly.
type characterCatalog struct {
	mu   sync.RWMutex
	sets map[uuid.UUID]CharacterSet
}

func newCharacterCatalog() *characterCatalog {
	return &characterCatalog{
		sets: make(map[uuid.UUID]CharacterSet),
	}
}

func (c *characterCatalog) Get(id uuid.UUID) (CharacterSet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set, ok := c.sets[id]
	if !ok {
		return CharacterSet{}, notFound("character set not found: %s", id)
	}
	return set, nil
}

func (c *characterCatalog) ListPublic() []CharacterSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]CharacterSet, 0, len(c.sets))
	for _, set := range c.sets {
		if set.IsPublic {
			list = append(list, set)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (c *characterCatalog) Add(set CharacterSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[set.ID] = set
}

type newCharacter struct {
	Name     string
	ImageURL string
}

func (c *characterCatalog) Create(name, createdBy string, isPublic bool, characters []newCharacter) CharacterSet {
	set := CharacterSet{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedBy: strings.TrimSpace(createdBy),
		IsPublic:  isPublic,
		CreatedAt: timeNowUTC(),
	}
	if set.CreatedBy == "" {
		set.CreatedBy = "system"
	}
	for _, character := range characters {
		set.Characters = append(set.Characters, Character{
			ID:       uuid.New(),
			Name:     strings.TrimSpace(character.Name),
			ImageURL: strings.TrimSpace(character.ImageURL),
		})
	}
	c.Add(set)
	return set
}

func (s *Server) createCharacterSet(name, createdBy string, isPublic bool, characters []newCharacter) (CharacterSet, error) {
	set := s.characters.Create(name, createdBy, isPublic, characters)
	if err := s.persistCharacterSet(set); err != nil {
		return CharacterSet{}, err
	}
	return set, nil
}
