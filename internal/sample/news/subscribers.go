package news

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fatih/color"

	"github.com/dshills/eventbus/internal/event"
	"github.com/dshills/eventbus/internal/event/binder"
	"github.com/dshills/eventbus/internal/sample/console"
)

// Person reads articles matching their interests. Interests can change
// while the bus is running.
type Person struct {
	Name string
	out  *console.Console

	mu        sync.RWMutex
	interests map[Category]bool
}

// NewPerson creates a reader interested in the given categories.
func NewPerson(name string, out *console.Console, interests ...Category) *Person {
	p := &Person{Name: name, out: out, interests: make(map[Category]bool)}
	for _, c := range interests {
		p.interests[c] = true
	}
	return p
}

func (p *Person) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "Read"},
		{Method: "Alert", Priority: event.PriorityCritical},
	}
}

// AddInterest subscribes the person to another category.
func (p *Person) AddInterest(c Category) {
	p.mu.Lock()
	p.interests[c] = true
	p.mu.Unlock()
	p.out.Plain("%s is now interested in %s news", p.Name, c)
}

// RemoveInterest drops a category.
func (p *Person) RemoveInterest(c Category) {
	p.mu.Lock()
	delete(p.interests, c)
	p.mu.Unlock()
	p.out.Plain("%s is no longer interested in %s news", p.Name, c)
}

// InterestedIn reports whether the person follows c.
func (p *Person) InterestedIn(c Category) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.interests[c]
}

func (p *Person) Read(a Article) {
	if p.InterestedIn(a.Category) {
		p.out.Printf(color.FgWhite, "[%s] Read: %s", p.Name, a)
	}
}

func (p *Person) Alert(b BreakingNews) {
	if p.InterestedIn(b.Domain) {
		p.out.Printf(color.FgRed, "[%s] ALERT: %s", p.Name, b)
	}
}

// Aggregator counts stories per category and prints statistics every
// tenth article. Its handlers run concurrently under PublishAsync.
type Aggregator struct {
	Name string
	out  *console.Console

	mu     sync.Mutex
	counts map[Category]int
	total  int
}

// NewAggregator creates an aggregator.
func NewAggregator(name string, out *console.Console) *Aggregator {
	return &Aggregator{Name: name, out: out, counts: make(map[Category]int)}
}

func (a *Aggregator) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "Count", Mode: event.Async},
		{Method: "CountBreaking", Mode: event.Async},
	}
}

func (a *Aggregator) Count(_ context.Context, article Article) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counts[article.Category]++
	a.total++
	if a.total%10 == 0 {
		a.print()
	}
	return nil
}

func (a *Aggregator) CountBreaking(_ context.Context, b BreakingNews) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.counts[b.Domain]++
	a.total++
	return nil
}

// Total returns the number of stories counted so far.
func (a *Aggregator) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// CountOf returns the number of stories counted for c.
func (a *Aggregator) CountOf(c Category) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[c]
}

func (a *Aggregator) print() {
	type row struct {
		c Category
		n int
	}
	var rows []row
	for c, n := range a.counts {
		if n > 0 {
			rows = append(rows, row{c, n})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].c < rows[j].c
	})

	lines := []string{fmt.Sprintf("[%s] News Statistics (Total: %d):", a.Name, a.total)}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("   %s: %d articles", r.c, r.n))
	}
	a.out.Block(color.FgHiCyan, lines...)
}

// Archive stores every story. It is filled from the bus worker pool.
type Archive struct {
	out *console.Console

	mu       sync.RWMutex
	articles []Article
	breaking []BreakingNews
}

// NewArchive creates an empty archive.
func NewArchive(out *console.Console) *Archive {
	return &Archive{out: out}
}

func (a *Archive) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "StoreArticle", Mode: event.Background},
		{Method: "StoreBreaking", Mode: event.Background},
	}
}

func (a *Archive) StoreArticle(article Article) {
	a.mu.Lock()
	a.articles = append(a.articles, article)
	a.mu.Unlock()
}

func (a *Archive) StoreBreaking(b BreakingNews) {
	a.mu.Lock()
	a.breaking = append(a.breaking, b)
	a.mu.Unlock()
}

// Len returns the number of archived articles and breaking stories.
func (a *Archive) Len() (articles, breaking int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.articles), len(a.breaking)
}

// ByCategory returns archived articles of c.
func (a *Archive) ByCategory(c Category) []Article {
	return a.filter(func(article Article) bool { return article.Category == c })
}

// ByAgency returns archived articles published by agency.
func (a *Archive) ByAgency(agency string) []Article {
	return a.filter(func(article Article) bool { return article.Agency == agency })
}

func (a *Archive) filter(keep func(Article) bool) []Article {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []Article
	for _, article := range a.articles {
		if keep(article) {
			out = append(out, article)
		}
	}
	return out
}

// PrintSummary writes the archive totals.
func (a *Archive) PrintSummary() {
	articles, breaking := a.Len()
	a.out.Printf(color.FgHiBlack, "[Archive] Total archived: %d articles, %d breaking news", articles, breaking)
}

// SpecializedReader follows one category and analyzes breaking news in it
// just after readers whose own alerts come first.
type SpecializedReader struct {
	Name           string
	Specialization Category
	out            *console.Console
}

// NewSpecializedReader creates a specialist for c.
func NewSpecializedReader(name string, c Category, out *console.Console) *SpecializedReader {
	return &SpecializedReader{Name: name, Specialization: c, out: out}
}

func (r *SpecializedReader) EventHandlers() []binder.Spec {
	return []binder.Spec{
		{Method: "Analyze"},
		{Method: "AnalyzeBreaking", Priority: 90},
	}
}

func (r *SpecializedReader) Analyze(a Article) {
	if a.Category == r.Specialization {
		r.out.Printf(color.FgMagenta, "[%s - %s Specialist] Analyzing: %s", r.Name, r.Specialization, a.Headline)
	}
}

func (r *SpecializedReader) AnalyzeBreaking(b BreakingNews) {
	if b.Domain == r.Specialization {
		r.out.Printf(color.FgYellow, "[%s - %s Specialist] URGENT ANALYSIS: %s", r.Name, r.Specialization, b.Headline)
	}
}
