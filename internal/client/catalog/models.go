package catalog

// Job is a job listing
type Job struct {
	ID           string
	Title        string
	Company      string
	Country      string
	Location     string
	Type         string
	Salary       string
	PostedDate   string
	Description  string
	Requirements string
	ContactEmail string
	ContactPhone string
	Local        bool
}

// Room is a housing listing
type Room struct {
	ID           string
	Title        string
	Rent         string
	Country      string
	Location     string
	Type         string
	Size         string
	Bedrooms     string
	Bathrooms    string
	Available    string
	Description  string
	Amenities    string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Local        bool
}

// Community is a community or group
type Community struct {
	ID          string
	Name        string
	Description string
	Category    string
	Location    string
	Rules       string
	Members     int
	IsPrivate   bool
	Local       bool
}

// Member is a group member shown on the group page
type Member struct {
	ID       string
	Name     string
	Position string
}

// Event is a group event open for registration
type Event struct {
	ID          string
	Title       string
	Date        string
	Location    string
	Description string
}

// NewsItem is a news article
type NewsItem struct {
	ID         string
	Title      string
	Category   string
	Location   string
	Excerpt    string
	Content    string
	PostedDate string
	Author     string
}

// Partner is a chat partner
type Partner struct {
	ID      string
	Name    string
	City    string
	Country string
}
