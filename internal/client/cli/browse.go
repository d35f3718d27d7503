package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/iudanet/globalconnect/internal/client/catalog"
	"github.com/iudanet/globalconnect/internal/client/search"
)

var (
	jobTmpl       = template.Must(template.New("job").Parse(jobTemplate))
	roomTmpl      = template.Must(template.New("room").Parse(roomTemplate))
	communityTmpl = template.Must(template.New("community").Parse(communityTemplate))
	eventTmpl     = template.Must(template.New("event").Parse(eventTemplate))
	newsTmpl      = template.Must(template.New("news").Parse(newsTemplate))
)

// Экран, который показывает каждая вкладка
var tabListings = map[string]string{
	"home":       "rooms",
	"promotions": "jobs",
	"events":     "news",
	"groups":     "groups",
}

func (c *Cli) runTabs() error {
	c.io.Println("=== Tabs ===")
	c.io.Println()
	for _, tab := range catalog.Tabs() {
		searchable := "search"
		if !tab.ShowSearch {
			searchable = "no search"
		}
		c.io.Printf("  %-11s %-11s icon=%-9s %s\n", tab.Name, tab.Title, tab.Icon, searchable)
	}
	return nil
}

func (c *Cli) runBrowse(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: globalconnect browse <tab> [query]: %w", ErrUsage)
	}

	tab, ok := catalog.TabByName(args[0])
	if !ok {
		return fmt.Errorf("unknown tab %q: %w", args[0], ErrUsage)
	}

	c.io.Printf("=== %s ===\n", tab.Title)

	if tab.Name == "profile" {
		return c.runMe(ctx)
	}

	listing := tabListings[tab.Name]
	query := strings.Join(args[1:], " ")
	if query != "" && !tab.ShowSearch {
		c.io.Println("Search is not available on this tab.")
		query = ""
	}

	if err := c.render(ctx, listing, search.Filter{Query: query}); err != nil {
		return err
	}
	if query != "" || !tab.ShowSearch {
		return nil
	}

	return c.searchLoop(ctx, listing)
}

// searchLoop читает запросы и показывает результаты после паузы ввода
func (c *Cli) searchLoop(ctx context.Context, listing string) error {
	debouncer := search.NewDebouncer(c.debounceDelay, "")
	defer debouncer.Stop()

	for {
		line, err := c.io.ReadInput("\nSearch (empty line to quit): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read query: %w", err)
		}
		if line == "" {
			return nil
		}

		debouncer.Set(line)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case query := <-debouncer.C():
			if err := c.render(ctx, listing, search.Filter{Query: query}); err != nil {
				return err
			}
		}
	}
}

func (c *Cli) runList(ctx context.Context, listing string, args []string) error {
	fs := flag.NewFlagSet(listing, flag.ContinueOnError)
	fs.SetOutput(c.io)

	var f search.Filter
	fs.StringVar(&f.Category, "category", "", "Category filter")
	fs.StringVar(&f.City, "city", "", "City or location filter")
	if listing == "jobs" || listing == "rooms" {
		fs.StringVar(&f.Country, "country", "", "Country filter")
		fs.StringVar(&f.Type, "type", "", "Listing type filter")
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", err, ErrUsage)
	}
	f.Query = strings.Join(fs.Args(), " ")

	return c.render(ctx, listing, f)
}

func (c *Cli) render(ctx context.Context, listing string, f search.Filter) error {
	c.io.Println()
	switch listing {
	case "jobs":
		jobs, err := c.catalog.Jobs(ctx, f)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			c.io.Println("No jobs found.")
		}
		for _, j := range jobs {
			c.io.Printf("[%s]%s %s - %s\n", j.ID, localMark(j.Local), j.Title, j.Company)
			c.io.Printf("    %s | %s | %s | %s\n", j.Location, j.Type, j.Salary, j.PostedDate)
		}
	case "rooms":
		rooms, err := c.catalog.Rooms(ctx, f)
		if err != nil {
			return err
		}
		if len(rooms) == 0 {
			c.io.Println("No rooms found.")
		}
		for _, r := range rooms {
			c.io.Printf("[%s]%s %s - %s\n", r.ID, localMark(r.Local), r.Title, r.Rent)
			c.io.Printf("    %s | %s | %s | %s\n", r.Location, r.Type, r.Size, r.Available)
		}
	case "communities", "groups":
		list := c.catalog.Communities
		if listing == "groups" {
			list = c.catalog.Groups
		}
		communities, err := list(ctx, f)
		if err != nil {
			return err
		}
		if len(communities) == 0 {
			c.io.Printf("No %s found.\n", listing)
		}
		for _, cm := range communities {
			c.io.Printf("[%s]%s %s (%d members, %s)\n", cm.ID, localMark(cm.Local), cm.Name, cm.Members, cm.Category)
			c.io.Printf("    %s\n", cm.Description)
		}
	case "events":
		events := c.catalog.Events(f.Query)
		if len(events) == 0 {
			c.io.Println("No events found.")
		}
		for _, e := range events {
			c.io.Printf("[%s] %s\n", e.ID, e.Title)
			c.io.Printf("    %s | %s\n", e.Date, e.Location)
		}
	case "news":
		items := c.catalog.News(f)
		if len(items) == 0 {
			c.io.Println("No news found.")
		}
		for _, n := range items {
			c.io.Printf("[%s] %s\n", n.ID, n.Title)
			c.io.Printf("    %s | %s | %s | by %s\n", n.Category, n.Location, n.PostedDate, n.Author)
		}
	default:
		return fmt.Errorf("unknown listing %q: %w", listing, ErrUsage)
	}
	return nil
}

func (c *Cli) runShow(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: globalconnect show <kind> <id>: %w", ErrUsage)
	}
	kind, id := args[0], args[1]

	switch kind {
	case "job":
		job, err := c.catalog.Job(ctx, id)
		if err != nil {
			return err
		}
		return jobTmpl.Execute(c.io, job)
	case "room":
		room, err := c.catalog.Room(ctx, id)
		if err != nil {
			return err
		}
		return roomTmpl.Execute(c.io, room)
	case "community", "group":
		community, err := c.catalog.Community(ctx, id)
		if err != nil {
			return err
		}
		view := struct {
			Community *catalog.Community
			Members   []catalog.Member
			Events    []catalog.Event
		}{Community: community}
		if kind == "group" {
			view.Members = c.catalog.Members("")
			view.Events = c.catalog.Events("")
		}
		return communityTmpl.Execute(c.io, view)
	case "event":
		event, err := c.catalog.Event(id)
		if err != nil {
			return err
		}
		return eventTmpl.Execute(c.io, event)
	case "news":
		item, err := c.catalog.NewsItem(id)
		if err != nil {
			return err
		}
		return newsTmpl.Execute(c.io, item)
	default:
		return fmt.Errorf("unknown kind %q: %w", kind, ErrUsage)
	}
}

func localMark(local bool) string {
	if local {
		return " (yours)"
	}
	return ""
}
