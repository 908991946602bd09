package news

import (
	"fmt"
	"strings"

	"github.com/dshills/eventbus/internal/event"
)

// Category is a news domain.
type Category int

const (
	Politics Category = iota
	Sports
	Technology
	Culture
)

// Categories lists every category in declaration order.
var Categories = []Category{Politics, Sports, Technology, Culture}

func (c Category) String() string {
	switch c {
	case Politics:
		return "Politics"
	case Sports:
		return "Sports"
	case Technology:
		return "Technology"
	case Culture:
		return "Culture"
	default:
		return "Unknown"
	}
}

// ParseCategory parses a category name, ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown news category %q", s)
}

// Article is a regular news article.
type Article struct {
	event.Base
	Headline string
	Content  string
	Agency   string
	Category Category
}

func (a Article) String() string {
	return fmt.Sprintf("[%s] [%s] %s - %s", a.Timestamp.Format("15:04:05"), a.Category, a.Headline, a.Agency)
}

// BreakingNews is urgent news. Urgency ranges from 1 to 10.
type BreakingNews struct {
	event.Base
	Headline string
	Content  string
	Agency   string
	Domain   Category
	Urgency  int
}

func (b BreakingNews) String() string {
	return fmt.Sprintf("BREAKING [%s] [%s] %s - %s (Urgency: %d/10)",
		b.Timestamp.Format("15:04:05"), b.Domain, b.Headline, b.Agency, b.Urgency)
}
