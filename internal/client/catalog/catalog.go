// Package catalog serves the listing screens: mock listings merged with
// posts created on this device, plus local chat transcripts.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/globalconnect/internal/client/search"
	"github.com/iudanet/globalconnect/internal/client/storage"
	"github.com/iudanet/globalconnect/internal/validation"
)

// Ошибки каталога
var (
	ErrNotFound      = errors.New("listing not found")
	ErrUserNotFound  = errors.New("User not found")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrEventNotFound = errors.New("event not found")
)

// Catalog combines static listings with the local post and message stores
type Catalog struct {
	posts    storage.PostStorage
	messages storage.MessageStorage
	logger   *slog.Logger
	now      func() time.Time
}

// New создает каталог поверх локального хранилища
func New(posts storage.PostStorage, messages storage.MessageStorage, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		posts:    posts,
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}
}

// Jobs returns local job posts followed by mock jobs, filtered
func (c *Catalog) Jobs(ctx context.Context, f search.Filter) ([]Job, error) {
	local, err := c.posts.ListPosts(ctx, storage.PostKindJob)
	if err != nil {
		return nil, fmt.Errorf("failed to list local jobs: %w", err)
	}

	all := make([]Job, 0, len(local)+len(mockJobs))
	for _, p := range local {
		all = append(all, jobFromPost(p))
	}
	all = append(all, mockJobs...)

	result := make([]Job, 0, len(all))
	for _, j := range all {
		if !search.MatchText(f.Query, j.Title, j.Company, j.Location, j.Description) {
			continue
		}
		if !search.MatchOption(f.Country, j.Country) || !search.MatchOption(f.City, j.Location) ||
			!search.MatchOption(f.Type, j.Type) {
			continue
		}
		result = append(result, j)
	}
	return result, nil
}

// Job returns a job by ID
func (c *Catalog) Job(ctx context.Context, id string) (*Job, error) {
	jobs, err := c.Jobs(ctx, search.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
}

// Rooms returns local room posts followed by mock rooms, filtered
func (c *Catalog) Rooms(ctx context.Context, f search.Filter) ([]Room, error) {
	local, err := c.posts.ListPosts(ctx, storage.PostKindRoom)
	if err != nil {
		return nil, fmt.Errorf("failed to list local rooms: %w", err)
	}

	all := make([]Room, 0, len(local)+len(mockRooms))
	for _, p := range local {
		all = append(all, roomFromPost(p))
	}
	all = append(all, mockRooms...)

	result := make([]Room, 0, len(all))
	for _, r := range all {
		if !search.MatchText(f.Query, r.Title, r.Location, r.Description) {
			continue
		}
		if !search.MatchOption(f.Country, r.Country) || !search.MatchOption(f.City, r.Location) ||
			!search.MatchOption(f.Type, r.Type) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// Room returns a room by ID
func (c *Catalog) Room(ctx context.Context, id string) (*Room, error) {
	rooms, err := c.Rooms(ctx, search.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ID == id {
			return &rooms[i], nil
		}
	}
	return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
}

// Communities returns local communities followed by mock communities
func (c *Catalog) Communities(ctx context.Context, f search.Filter) ([]Community, error) {
	return c.communities(ctx, mockCommunities, f)
}

// Groups returns local communities followed by mock groups
func (c *Catalog) Groups(ctx context.Context, f search.Filter) ([]Community, error) {
	return c.communities(ctx, mockGroups, f)
}

// Community returns a community or group by ID
func (c *Catalog) Community(ctx context.Context, id string) (*Community, error) {
	all, err := c.communities(ctx, mockGroups, search.Filter{})
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("community %s: %w", id, ErrNotFound)
}

func (c *Catalog) communities(ctx context.Context, mock []Community, f search.Filter) ([]Community, error) {
	local, err := c.posts.ListPosts(ctx, storage.PostKindCommunity)
	if err != nil {
		return nil, fmt.Errorf("failed to list local communities: %w", err)
	}

	all := make([]Community, 0, len(local)+len(mock))
	for _, p := range local {
		all = append(all, communityFromPost(p))
	}
	all = append(all, mock...)

	result := make([]Community, 0, len(all))
	for _, cm := range all {
		if !search.MatchText(f.Query, cm.Name, cm.Description, cm.Category) {
			continue
		}
		if !search.MatchOption(f.Category, cm.Category) || !search.MatchOption(f.City, cm.Location) {
			continue
		}
		result = append(result, cm)
	}
	return result, nil
}

// Members returns group members whose name contains query
func (c *Catalog) Members(query string) []Member {
	result := make([]Member, 0, len(mockMembers))
	for _, m := range mockMembers {
		if search.MatchText(query, m.Name) {
			result = append(result, m)
		}
	}
	return result
}

// Events returns group events matching query
func (c *Catalog) Events(query string) []Event {
	result := make([]Event, 0, len(mockEvents))
	for _, e := range mockEvents {
		if search.MatchText(query, e.Title, e.Location, e.Description) {
			result = append(result, e)
		}
	}
	return result
}

// Event returns an event by ID
func (c *Catalog) Event(id string) (*Event, error) {
	for i := range mockEvents {
		if mockEvents[i].ID == id {
			e := mockEvents[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", id, ErrEventNotFound)
}

// News returns news items; Category and City narrow by category and location
func (c *Catalog) News(f search.Filter) []NewsItem {
	result := make([]NewsItem, 0, len(mockNews))
	for _, n := range mockNews {
		if !search.MatchText(f.Query, n.Title, n.Excerpt, n.Author) {
			continue
		}
		if !search.MatchOption(f.Category, n.Category) || !search.MatchOption(f.City, n.Location) {
			continue
		}
		result = append(result, n)
	}
	return result
}

// NewsItem returns a news item by ID
func (c *Catalog) NewsItem(id string) (*NewsItem, error) {
	for i := range mockNews {
		if mockNews[i].ID == id {
			n := mockNews[i]
			if n.Content == "" {
				n.Content = n.Excerpt
			}
			return &n, nil
		}
	}
	return nil, fmt.Errorf("news %s: %w", id, ErrNotFound)
}

// Partner returns a chat partner by ID
func (c *Catalog) Partner(id string) (*Partner, error) {
	for i := range mockPartners {
		if mockPartners[i].ID == id {
			p := mockPartners[i]
			return &p, nil
		}
	}
	return nil, ErrUserNotFound
}

// PostJob validates and stores a job created on this device
func (c *Catalog) PostJob(ctx context.Context, form validation.JobForm) (*Job, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	post := c.newPost(storage.PostKindJob, map[string]string{
		"jobTitle":     form.JobTitle,
		"company":      form.Company,
		"country":      form.Country,
		"city":         form.City,
		"area":         form.Area,
		"jobType":      form.JobType,
		"salary":       form.Salary,
		"description":  form.Description,
		"requirements": form.Requirements,
		"contactEmail": form.ContactEmail,
		"contactPhone": form.ContactPhone,
	})
	if err := c.posts.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	c.logger.InfoContext(ctx, "job posted", "id", post.ID)
	job := jobFromPost(post)
	return &job, nil
}

// PostRoom validates and stores a room listing created on this device
func (c *Catalog) PostRoom(ctx context.Context, form validation.RoomForm) (*Room, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	post := c.newPost(storage.PostKindRoom, map[string]string{
		"title":         form.Title,
		"rent":          form.Rent,
		"country":       form.Country,
		"city":          form.City,
		"area":          form.Area,
		"roomType":      form.RoomType,
		"size":          form.Size,
		"bedrooms":      form.Bedrooms,
		"bathrooms":     form.Bathrooms,
		"description":   form.Description,
		"amenities":     form.Amenities,
		"availableFrom": form.AvailableFrom,
		"contactName":   form.ContactName,
		"contactEmail":  form.ContactEmail,
		"contactPhone":  form.ContactPhone,
	})
	if err := c.posts.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	c.logger.InfoContext(ctx, "room posted", "id", post.ID)
	room := roomFromPost(post)
	return &room, nil
}

// CreateCommunity validates and stores a community created on this device
func (c *Catalog) CreateCommunity(ctx context.Context, form validation.CommunityForm) (*Community, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	category := form.Category
	if category == "" {
		category = CommunityCategories[0]
	}
	private := "false"
	if form.IsPrivate {
		private = "true"
	}

	post := c.newPost(storage.PostKindCommunity, map[string]string{
		"name":        form.Name,
		"description": form.Description,
		"category":    category,
		"location":    form.Location,
		"rules":       form.Rules,
		"isPrivate":   private,
	})
	if err := c.posts.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	c.logger.InfoContext(ctx, "community created", "id", post.ID)
	community := communityFromPost(post)
	return &community, nil
}

// RegisterForEvent validates and stores a registration for an event
func (c *Catalog) RegisterForEvent(ctx context.Context, eventID string, form validation.EventRegistrationForm) (*storage.Post, error) {
	event, err := c.Event(eventID)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	post := c.newPost(storage.PostKindEventRegistration, map[string]string{
		"eventId":    event.ID,
		"eventTitle": event.Title,
		"fullName":   form.FullName,
		"email":      form.Email,
		"phone":      form.Phone,
		"adults":     form.Adults,
		"children":   form.Children,
	})
	if err := c.posts.SavePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	c.logger.InfoContext(ctx, "event registration saved", "event", event.ID)
	return post, nil
}

// Conversation returns the transcript with a partner, seeding the welcome message
func (c *Catalog) Conversation(ctx context.Context, partnerID string) (*Partner, []*storage.Message, error) {
	partner, err := c.Partner(partnerID)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := c.messages.ListMessages(ctx, partner.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if len(msgs) > 0 {
		return partner, msgs, nil
	}

	welcome := &storage.Message{
		ID:        "m1",
		PartnerID: partner.ID,
		Sender:    storage.SenderOther,
		Text:      fmt.Sprintf("Hi, this is a welcome message to %s.", partner.Name),
		SentAt:    c.now(),
	}
	if err := c.messages.AppendMessage(ctx, welcome); err != nil {
		return nil, nil, fmt.Errorf("failed to seed conversation: %w", err)
	}
	return partner, []*storage.Message{welcome}, nil
}

// Send appends a message from the user. Blank text is rejected.
func (c *Catalog) Send(ctx context.Context, partnerID, text string) (*storage.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	partner, msgs, err := c.Conversation(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	msg := &storage.Message{
		ID:        fmt.Sprintf("m%d", len(msgs)+1),
		PartnerID: partner.ID,
		Sender:    storage.SenderMe,
		Text:      text,
		SentAt:    c.now(),
	}
	if err := c.messages.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// newPost очищает значения от разметки и создает публикацию
func (c *Catalog) newPost(kind string, fields map[string]string) *storage.Post {
	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		if v = validation.SanitizeText(v); v != "" {
			clean[k] = v
		}
	}
	return &storage.Post{
		ID:        uuid.NewString(),
		Kind:      kind,
		Fields:    clean,
		CreatedAt: c.now(),
	}
}

func location(city, area string) string {
	if area == "" {
		return city
	}
	return city + ", " + area
}

func postedDate(p *storage.Post) string {
	return p.CreatedAt.Format("Jan 2, 2006")
}

func jobFromPost(p *storage.Post) Job {
	f := p.Fields
	return Job{
		ID:           p.ID,
		Title:        f["jobTitle"],
		Company:      f["company"],
		Country:      f["country"],
		Location:     location(f["city"], f["area"]),
		Type:         f["jobType"],
		Salary:       f["salary"],
		PostedDate:   postedDate(p),
		Description:  f["description"],
		Requirements: f["requirements"],
		ContactEmail: f["contactEmail"],
		ContactPhone: f["contactPhone"],
		Local:        true,
	}
}

func roomFromPost(p *storage.Post) Room {
	f := p.Fields
	available := "Available Now"
	if f["availableFrom"] != "" {
		available = "From " + f["availableFrom"]
	}
	return Room{
		ID:           p.ID,
		Title:        f["title"],
		Rent:         f["rent"],
		Country:      f["country"],
		Location:     location(f["city"], f["area"]),
		Type:         f["roomType"],
		Size:         f["size"],
		Bedrooms:     f["bedrooms"],
		Bathrooms:    f["bathrooms"],
		Available:    available,
		Description:  f["description"],
		Amenities:    f["amenities"],
		ContactName:  f["contactName"],
		ContactEmail: f["contactEmail"],
		ContactPhone: f["contactPhone"],
		Local:        true,
	}
}

func communityFromPost(p *storage.Post) Community {
	f := p.Fields
	return Community{
		ID:          p.ID,
		Name:        f["name"],
		Description: f["description"],
		Category:    f["category"],
		Location:    f["location"],
		Rules:       f["rules"],
		Members:     1,
		IsPrivate:   f["isPrivate"] == "true",
		Local:       true,
	}
}
