package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripping-alien/shortlink-sub000/internal/domain"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
}

// NewCommands creates a new Commands instance
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
	}
}

// Create creates a short link and displays the result, including the
// one-time deletion secret.
func (c *Commands) Create(ctx context.Context, req domain.CreateLinkRequest) error {
	result, err := c.client.CreateLink(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Short link created:\n")
	fmt.Printf("Code: %s\n", result.Code)
	fmt.Printf("Short URL: %s\n", result.ShortURL)
	fmt.Printf("Target URL: %s\n", result.TargetURL)
	if result.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", result.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Printf("Expires At: Never\n")
	}
	fmt.Printf("Deletion Secret: %s\n", result.DeletionSecret)
	fmt.Printf("Created At: %s\n", result.CreatedAt.Format(time.RFC3339))
	fmt.Println("\nStore the deletion secret now; it cannot be recovered later.")

	return nil
}

// Get retrieves and displays information about a short link
func (c *Commands) Get(ctx context.Context, code string) error {
	link, err := c.client.GetLink(ctx, code)
	if err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "expired") {
			fmt.Println(err.Error())
			return nil
		}
		return err
	}

	fmt.Printf("Link Information:\n")
	fmt.Printf("Code: %s\n", link.Code)
	fmt.Printf("Target URL: %s\n", link.TargetURL)
	fmt.Printf("Created At: %s\n", link.CreatedAt.Format(time.RFC3339))
	if link.ExpiresAt != nil {
		fmt.Printf("Expires At: %s\n", link.ExpiresAt.Format(time.RFC3339))
	} else {
		fmt.Printf("Expires At: Never\n")
	}
	fmt.Printf("Click Count: %d\n", link.ClickCount)
	if link.OwnerID != "" {
		fmt.Printf("Owner: %s\n", link.OwnerID)
	}
	if link.Title != "" {
		fmt.Printf("Title: %s\n", link.Title)
	}
	if link.Description != "" {
		fmt.Printf("Description: %s\n", link.Description)
	}

	return nil
}

// Delete removes a short link
func (c *Commands) Delete(ctx context.Context, code, secret string) error {
	err := c.client.DeleteLink(ctx, code, secret)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			fmt.Printf("Code '%s' not found\n", code)
			return nil
		}
		return err
	}

	fmt.Printf("Short link '%s' deleted successfully\n", code)
	return nil
}

// List displays all live links in a table format
func (c *Commands) List(ctx context.Context, ownerID string) error {
	links, err := c.client.ListLinks(ctx, ownerID)
	if err != nil {
		return err
	}

	if len(links) == 0 {
		fmt.Println("No links found")
		return nil
	}

	fmt.Printf("%-15s %-50s %-20s %-20s %s\n", "Code", "Target URL", "Created At", "Expires At", "Clicks")
	fmt.Println(strings.Repeat("-", 120))

	for _, link := range links {
		expires := "Never"
		if link.ExpiresAt != nil {
			expires = link.ExpiresAt.Format("2006-01-02 15:04:05")
		}

		targetURL := link.TargetURL
		if len(targetURL) > 50 {
			targetURL = targetURL[:47] + "..."
		}

		fmt.Printf("%-15s %-50s %-20s %-20s %d\n",
			link.Code,
			targetURL,
			link.CreatedAt.Format("2006-01-02 15:04:05"),
			expires,
			link.ClickCount,
		)
	}

	return nil
}
