package catalog

// Значения фильтров на экранах списков
var (
	Countries           = []string{"All", "United States", "Canada", "United Kingdom"}
	Cities              = []string{"All", "New York", "Los Angeles", "Chicago", "Toronto"}
	JobTypes            = []string{"Full-time", "Part-time", "Contract", "Freelance"}
	RoomTypes           = []string{"Private Room", "Shared Room", "Entire Place"}
	NewsCategories      = []string{"All", "Local News", "National News", "Events", "Business", "Education", "Health", "Sports"}
	NewsLocations       = []string{"All", "New York", "Los Angeles", "Chicago", "San Francisco"}
	CommunityCategories = []string{"General", "Technology", "Sports", "Lifestyle", "Education", "Business"}
)

var mockJobs = []Job{
	{
		ID:          "1",
		Title:       "Senior Software Engineer",
		Company:     "Tech Corp",
		Country:     "United States",
		Location:    "New York, Manhattan",
		Type:        "Full-time",
		Salary:      "$120k - $150k",
		PostedDate:  "2 days ago",
		Description: "We are looking for an experienced Senior Software Engineer to join our growing team. You will be responsible for designing, developing, and maintaining high-quality software solutions.",
		Requirements: "• 5+ years of experience in software development\n• Proficiency in React, Node.js, and TypeScript\n" +
			"• Experience with cloud platforms (AWS/Azure)\n• Strong understanding of database systems\n• Excellent communication skills",
		ContactEmail: "careers@techcorp.com",
		ContactPhone: "+1 (555) 123-4567",
	},
	{
		ID:          "2",
		Title:       "Marketing Manager",
		Company:     "Brand Solutions",
		Country:     "United States",
		Location:    "Los Angeles, Downtown",
		Type:        "Full-time",
		Salary:      "$80k - $100k",
		PostedDate:  "1 week ago",
		Description: "Lead brand campaigns and a small marketing team for clients across the West Coast.",
	},
	{
		ID:          "3",
		Title:       "Graphic Designer",
		Company:     "Creative Studio",
		Country:     "United States",
		Location:    "Chicago, Loop",
		Type:        "Contract",
		Salary:      "$50k - $70k",
		PostedDate:  "3 days ago",
		Description: "Create visual identities, print and digital assets for studio clients.",
	},
}

var mockRooms = []Room{
	{
		ID:          "1",
		Title:       "Spacious 1BR Apartment",
		Rent:        "$1,200/month",
		Country:     "United States",
		Location:    "Brooklyn, Williamsburg",
		Type:        "Private Room",
		Size:        "500 sq ft",
		Bedrooms:    "1",
		Bathrooms:   "1",
		Available:   "Available Now",
		Description: "Beautiful and spacious 1-bedroom apartment in the heart of Williamsburg. Features include hardwood floors, large windows with natural light, modern kitchen with stainless steel appliances, and a cozy living area. Perfect for young professionals.",
		Amenities: "• High-speed WiFi\n• Parking available\n• In-unit laundry\n• Air conditioning\n• Heating\n• Pet-friendly\n" +
			"• 24/7 security\n• Close to subway",
		ContactName:  "John Smith",
		ContactEmail: "john@email.com",
		ContactPhone: "+1 (555) 123-4567",
	},
	{
		ID:        "2",
		Title:     "Cozy Studio in Downtown",
		Rent:      "$950/month",
		Country:   "United States",
		Location:  "Manhattan, Midtown",
		Type:      "Entire Place",
		Size:      "350 sq ft",
		Available: "From March 1",
	},
}

var mockCommunities = []Community{
	{
		ID:          "1",
		Name:        "Tech Enthusiasts NYC",
		Description: "A community for technology lovers in New York City. We meet monthly to discuss the latest tech trends.",
		Category:    "Technology",
		Location:    "New York, NY",
		Members:     1234,
	},
	{
		ID:          "2",
		Name:        "Brooklyn Runners Club",
		Description: "Running group for all fitness levels in Brooklyn",
		Category:    "Sports",
		Location:    "Brooklyn, NY",
		Members:     567,
	},
}

var mockGroups = []Community{
	mockCommunities[0],
	mockCommunities[1],
	{
		ID:          "3",
		Name:        "Tech Enthusiasts NYC",
		Description: "A community for technology lovers in New York City",
		Category:    "Technology",
		Location:    "New York, NY",
		Members:     1234,
	},
	{
		ID:          "4",
		Name:        "Brooklyn Runners Club",
		Description: "Running group for all fitness levels in Brooklyn",
		Category:    "Sports",
		Location:    "Brooklyn, NY",
		Members:     567,
	},
}

var mockMembers = []Member{
	{ID: "1", Name: "Alex Johnson", Position: "Software Engineer"},
	{ID: "2", Name: "Priya Patel", Position: "Product Manager"},
	{ID: "3", Name: "Jordan Kim"},
	{ID: "4", Name: "Sanjay Lama", Position: "UI/UX Designer"},
}

var mockEvents = []Event{
	{
		ID:          "1",
		Title:       "AI & Machine Learning Meetup",
		Date:        "Nov 20, 2025 | 6:00 PM",
		Location:    "WeWork, Midtown NYC",
		Description: "Join fellow AI enthusiasts for lightning talks and networking.",
	},
	{
		ID:          "2",
		Title:       "Tech Career Fair 2025",
		Date:        "Dec 5, 2025 | 10:00 AM",
		Location:    "Javits Center, NYC",
		Description: "Meet top tech companies hiring software engineers and designers.",
	},
	{
		ID:          "3",
		Title:       "Startup Pitch Night",
		Date:        "Dec 15, 2025 | 7:00 PM",
		Location:    "NYU Tandon, Brooklyn",
		Description: "Watch startups pitch to investors and vote for your favorite idea.",
	},
}

var mockNews = []NewsItem{
	{
		ID:         "1",
		Title:      "New Community Center Opens in Downtown",
		Category:   "Local News",
		Location:   "New York, Manhattan",
		Excerpt:    "The city has opened a new community center offering various programs...",
		PostedDate: "1 hour ago",
		Author:     "City News",
		Content: "The city has announced the grand opening of a brand new community center in downtown Manhattan. " +
			"This state-of-the-art facility will provide a wide range of programs and services for residents of all ages.",
	},
	{
		ID:         "2",
		Title:      "Annual Tech Conference Announced",
		Category:   "Events",
		Location:   "San Francisco, CA",
		Excerpt:    "Tech leaders will gather for the annual conference...",
		PostedDate: "3 hours ago",
		Author:     "Tech Daily",
	},
}

var mockPartners = []Partner{
	{ID: "1", Name: "Sita Gurung", City: "Kathmandu", Country: "Nepal"},
	{ID: "2", Name: "Ram Thapa", City: "Pokhara", Country: "Nepal"},
}
