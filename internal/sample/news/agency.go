package news

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/sample/console"
)

// Agency publishes articles of one category at random intervals, with an
// occasional breaking story.
type Agency struct {
	Name     string
	Category Category

	headlines []string
	content   string
	breaking  BreakingNews
	bus       event.Bus
	out       *console.Console
	rng       *rand.Rand
	minDelay  time.Duration
	maxDelay  time.Duration
}

// Agencies returns the four sample agencies publishing on bus.
func Agencies(bus event.Bus, out *console.Console) []*Agency {
	return []*Agency{
		newAgency("SportsWire", Sports, bus, out, "Full coverage of: %s. More details to follow...", []string{
			"Local Team Wins Championship",
			"Star Player Signs Record Contract",
			"Olympic Athlete Breaks World Record",
			"Underdog Team Upsets League Leaders",
			"Controversial Referee Decision Sparks Debate",
			"New Stadium Construction Begins",
			"Player Retires After Legendary Career",
			"Youth Academy Produces Rising Stars",
		}, BreakingNews{Headline: "Major Sports Event Happening Now!", Content: "Live coverage of unprecedented sporting event...", Urgency: 8}),
		newAgency("PoliTimes", Politics, bus, out, "Political analysis: %s. Expert commentary available...", []string{
			"Parliament Passes New Legislation",
			"Election Campaign Intensifies",
			"International Summit Concludes",
			"Policy Reform Announced",
			"Political Leader Makes Statement",
			"Budget Proposal Under Review",
			"Coalition Agreement Reached",
			"Diplomatic Relations Strengthened",
		}, BreakingNews{Headline: "Major Political Development", Content: "Urgent political update with significant implications...", Urgency: 9}),
		newAgency("TechNow", Technology, bus, out, "Tech report: %s. Technical details and specifications...", []string{
			"AI Breakthrough Announced",
			"New Smartphone Released",
			"Tech Giant Launches Innovation",
			"Cybersecurity Threat Detected",
			"Startup Receives Major Funding",
			"Software Update Revolutionizes Industry",
			"Quantum Computing Milestone Reached",
			"Green Technology Solution Unveiled",
		}, BreakingNews{Headline: "Tech Industry Disruption!", Content: "Revolutionary technology announcement shakes the market...", Urgency: 7}),
		newAgency("CultureBeat", Culture, bus, out, "Cultural coverage: %s. Reviews and interviews available...", []string{
			"Art Exhibition Opens to Acclaim",
			"New Film Premieres at Festival",
			"Music Concert Series Announced",
			"Literary Award Winners Revealed",
			"Theatre Production Receives Standing Ovation",
			"Cultural Heritage Site Restored",
			"Artist Retrospective Exhibition",
			"Documentary Explores Cultural Identity",
		}, BreakingNews{Headline: "Cultural Phenomenon Sweeps the Nation", Content: "An unexpected cultural moment captures public attention...", Urgency: 6}),
	}
}

func newAgency(name string, c Category, bus event.Bus, out *console.Console, content string, headlines []string, breaking BreakingNews) *Agency {
	breaking.Agency = name
	breaking.Domain = c
	return &Agency{
		Name:      name,
		Category:  c,
		headlines: headlines,
		content:   content,
		breaking:  breaking,
		bus:       bus,
		out:       out,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		minDelay:  3 * time.Second,
		maxDelay:  6 * time.Second,
	}
}

// Run publishes until ctx is done.
func (a *Agency) Run(ctx context.Context) error {
	a.out.Plain("%s started publishing %s news", a.Name, a.Category)
	for {
		headline := a.headlines[a.rng.IntN(len(a.headlines))]
		if err := a.PublishArticle(ctx, headline); err != nil {
			return err
		}
		if a.rng.Float64() < 0.2 {
			if err := a.PublishBreaking(ctx); err != nil {
				return err
			}
		}

		delay := a.minDelay + time.Duration(a.rng.Int64N(int64(a.maxDelay-a.minDelay)+1))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// PublishArticle publishes one article with the given headline. Async
// subscribers are awaited.
func (a *Agency) PublishArticle(ctx context.Context, headline string) error {
	err := a.bus.PublishAsync(ctx, Article{
		Base:     event.NewBase(),
		Headline: headline,
		Content:  fmt.Sprintf(a.content, headline),
		Agency:   a.Name,
		Category: a.Category,
	})
	if err != nil {
		return err
	}
	a.out.Plain("%s published: %s", a.Name, headline)
	return nil
}

// PublishBreaking publishes the agency's breaking story.
func (a *Agency) PublishBreaking(ctx context.Context) error {
	b := a.breaking
	b.Base = event.NewBase()
	if err := a.bus.PublishAsync(ctx, b); err != nil {
		return err
	}
	a.out.Plain("%s BREAKING: %s", a.Name, b.Headline)
	return nil
}
