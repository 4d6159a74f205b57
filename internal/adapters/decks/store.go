package decks

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// DefaultDeckID is the full 78-card deck.
const DefaultDeckID = "rider_waite"

//go:embed data/*.yaml
var deckFS embed.FS

// registry maps deck IDs to their YAML filenames inside data/.
var registry = map[string]string{
	DefaultDeckID: "data/rider_waite.yaml",
}

type deckFile struct {
	ID    string     `yaml:"id"`
	Name  string     `yaml:"name"`
	Cards []cardFile `yaml:"cards"`
}

type cardFile struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	English  string   `yaml:"english"`
	Suit     string   `yaml:"suit"`
	Rank     int      `yaml:"rank"`
	Upright  []string `yaml:"upright"`
	Reversed []string `yaml:"reversed"`
}

// EmbeddedStore loads decks from embedded YAML files.
type EmbeddedStore struct {
	once  sync.Once
	decks map[string]domain.Deck
	err   error
}

func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

func (s *EmbeddedStore) init() {
	s.decks = make(map[string]domain.Deck, len(registry))
	for id, filename := range registry {
		raw, err := deckFS.ReadFile(filename)
		if err != nil {
			s.err = fmt.Errorf("read embedded deck %s: %w", id, err)
			return
		}
		deck, err := parseDeck(raw)
		if err != nil {
			s.err = fmt.Errorf("parse embedded deck %s: %w", id, err)
			return
		}
		s.decks[id] = deck
	}
}

func parseDeck(raw []byte) (domain.Deck, error) {
	var f deckFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Deck{}, err
	}
	seen := make(map[string]bool, len(f.Cards))
	cards := make([]domain.Card, 0, len(f.Cards))
	for _, cf := range f.Cards {
		if cf.Name == "" {
			return domain.Deck{}, fmt.Errorf("card %q has no name", cf.ID)
		}
		if seen[cf.Name] {
			return domain.Deck{}, fmt.Errorf("duplicate card name %q", cf.Name)
		}
		seen[cf.Name] = true
		cards = append(cards, buildCard(cf))
	}
	return domain.Deck{ID: f.ID, Name: f.Name, Cards: cards}, nil
}

func buildCard(cf cardFile) domain.Card {
	keywords := map[domain.Orientation][]string{
		domain.Upright:  cf.Upright,
		domain.Reversed: cf.Reversed,
	}
	meanings := make(map[domain.Orientation]map[domain.Aspect]string, 2)
	for o, kws := range keywords {
		byAspect := make(map[domain.Aspect]string, len(domain.Aspects))
		for _, a := range domain.Aspects {
			byAspect[a] = composeMeaning(cf.Name, o, a, kws)
		}
		meanings[o] = byAspect
	}
	return domain.Card{
		ID:          cf.ID,
		Name:        cf.Name,
		EnglishName: cf.English,
		Suit:        domain.Suit(cf.Suit),
		Rank:        cf.Rank,
		Keywords:    keywords,
		Meanings:    meanings,
	}
}

type aspectTemplate struct {
	upright  string
	reversed string
}

// Each template takes the card name and its joined keywords.
var aspectTemplates = map[domain.Aspect]aspectTemplate{
	domain.AspectLove: {
		upright:  "感情方面，%s带来%s的能量，适合真诚地表达心意。",
		reversed: "感情方面，%s逆位提示%s，需要耐心沟通、调整期待。",
	},
	domain.AspectCareer: {
		upright:  "事业方面，%s象征%s，是推进目标的好时机。",
		reversed: "事业方面，%s逆位显示%s，宜放慢节奏、重新规划。",
	},
	domain.AspectWealth: {
		upright:  "财运方面，%s代表%s，可以稳健地把握机会。",
		reversed: "财运方面，%s逆位警示%s，注意控制支出与风险。",
	},
	domain.AspectHealth: {
		upright:  "健康方面，%s显示%s，保持规律作息即可。",
		reversed: "健康方面，%s逆位提醒%s，多关注身心的信号。",
	},
	domain.AspectRelationship: {
		upright:  "人际方面，%s意味着%s，善意的互动会带来支持。",
		reversed: "人际方面，%s逆位暗示%s，需要厘清边界、化解误会。",
	},
	domain.AspectFuture: {
		upright:  "未来走向上，%s预示%s，顺势而为会有收获。",
		reversed: "未来走向上，%s逆位预示%s，提前准备可以减少阻力。",
	},
}

func composeMeaning(name string, o domain.Orientation, a domain.Aspect, keywords []string) string {
	t := aspectTemplates[a]
	format := t.upright
	if o == domain.Reversed {
		format = t.reversed
	}
	return fmt.Sprintf(format, name, strings.Join(keywords, "、"))
}

func (s *EmbeddedStore) GetDeck(_ context.Context, deckID string) (domain.Deck, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Deck{}, s.err
	}
	deck, ok := s.decks[deckID]
	if !ok {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	return deck, nil
}
