package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/globalconnect/internal/client/catalog"
	"github.com/iudanet/globalconnect/internal/validation"
)

// prompt описывает одно поле формы
type prompt struct {
	target *string
	label  string
}

// readFields запрашивает значения полей по порядку
func (c *Cli) readFields(fields []prompt) error {
	for _, f := range fields {
		value, err := c.io.ReadInput(f.label + ": ")
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", strings.ToLower(f.label), err)
		}
		*f.target = value
	}
	return nil
}

func (c *Cli) runPost(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: globalconnect post job|room|community: %w", ErrUsage)
	}

	switch args[0] {
	case "job":
		return c.postJob(ctx)
	case "room":
		return c.postRoom(ctx)
	case "community", "group":
		return c.createCommunity(ctx)
	default:
		return fmt.Errorf("unknown post type %q: %w", args[0], ErrUsage)
	}
}

func (c *Cli) postJob(ctx context.Context) error {
	c.io.Println("=== Post a Job ===")
	c.io.Println()
	c.io.Printf("Job types: %s\n", strings.Join(catalog.JobTypes, ", "))
	c.io.Println()

	var form validation.JobForm
	err := c.readFields([]prompt{
		{&form.JobTitle, "Job title"},
		{&form.Company, "Company"},
		{&form.Country, "Country"},
		{&form.City, "City"},
		{&form.Area, "Area"},
		{&form.JobType, "Job type"},
		{&form.Salary, "Salary"},
		{&form.Description, "Description"},
		{&form.Requirements, "Requirements"},
		{&form.ContactEmail, "Contact email"},
		{&form.ContactPhone, "Contact phone"},
	})
	if err != nil {
		return err
	}
	if form.JobType == "" {
		form.JobType = catalog.JobTypes[0]
	}

	job, err := c.catalog.PostJob(ctx, form)
	if err != nil {
		return c.reportForm(err)
	}

	c.io.Println()
	c.io.Println("✓ Job posted!")
	c.io.Printf("ID: %s\n", job.ID)
	return nil
}

func (c *Cli) postRoom(ctx context.Context) error {
	c.io.Println("=== Post a Room ===")
	c.io.Println()
	c.io.Printf("Room types: %s\n", strings.Join(catalog.RoomTypes, ", "))
	c.io.Println()

	var form validation.RoomForm
	err := c.readFields([]prompt{
		{&form.Title, "Title"},
		{&form.Rent, "Rent"},
		{&form.Country, "Country"},
		{&form.City, "City"},
		{&form.Area, "Area"},
		{&form.RoomType, "Room type"},
		{&form.Size, "Size"},
		{&form.Bedrooms, "Bedrooms"},
		{&form.Bathrooms, "Bathrooms"},
		{&form.Description, "Description"},
		{&form.Amenities, "Amenities"},
		{&form.AvailableFrom, "Available from"},
		{&form.ContactName, "Contact name"},
		{&form.ContactEmail, "Contact email"},
		{&form.ContactPhone, "Contact phone"},
	})
	if err != nil {
		return err
	}
	if form.RoomType == "" {
		form.RoomType = catalog.RoomTypes[0]
	}

	room, err := c.catalog.PostRoom(ctx, form)
	if err != nil {
		return c.reportForm(err)
	}

	c.io.Println()
	c.io.Println("✓ Room posted!")
	c.io.Printf("ID: %s\n", room.ID)
	return nil
}

func (c *Cli) createCommunity(ctx context.Context) error {
	c.io.Println("=== Create a Community ===")
	c.io.Println()
	c.io.Printf("Categories: %s\n", strings.Join(catalog.CommunityCategories, ", "))
	c.io.Println()

	var form validation.CommunityForm
	var private string
	err := c.readFields([]prompt{
		{&form.Name, "Name"},
		{&form.Description, "Description"},
		{&form.Category, "Category"},
		{&form.Location, "Location"},
		{&form.Rules, "Rules"},
		{&private, "Private (y/N)"},
	})
	if err != nil {
		return err
	}
	form.IsPrivate = strings.EqualFold(private, "y") || strings.EqualFold(private, "yes")

	community, err := c.catalog.CreateCommunity(ctx, form)
	if err != nil {
		return c.reportForm(err)
	}

	c.io.Println()
	c.io.Println("✓ Community created!")
	c.io.Printf("ID: %s\n", community.ID)
	return nil
}

func (c *Cli) runEventRegister(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: globalconnect event-register <eventId>: %w", ErrUsage)
	}

	event, err := c.catalog.Event(args[0])
	if err != nil {
		return err
	}

	c.io.Println("=== Event Registration ===")
	c.io.Println()
	c.io.Printf("%s\n%s | %s\n\n", event.Title, event.Date, event.Location)

	var form validation.EventRegistrationForm
	err = c.readFields([]prompt{
		{&form.FullName, "Full name"},
		{&form.Email, "Email"},
		{&form.Phone, "Phone"},
		{&form.Adults, "Adults (default 1)"},
		{&form.Children, "Children (default 0)"},
	})
	if err != nil {
		return err
	}
	if form.Adults == "" {
		form.Adults = "1"
	}
	if form.Children == "" {
		form.Children = "0"
	}

	if _, err := c.catalog.RegisterForEvent(ctx, event.ID, form); err != nil {
		return c.reportForm(err)
	}

	c.io.Println()
	c.io.Printf("✓ You are registered for %s!\n", event.Title)
	return nil
}
