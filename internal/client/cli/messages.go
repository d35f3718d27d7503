package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iudanet/globalconnect/internal/client/catalog"
	"github.com/iudanet/globalconnect/internal/client/storage"
)

const quitCommand = "/quit"

func (c *Cli) runMessages(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: globalconnect messages <partnerId>: %w", ErrUsage)
	}

	partner, history, err := c.catalog.Conversation(ctx, args[0])
	if err != nil {
		return err
	}

	c.io.Printf("=== %s ===\n", partner.Name)
	c.io.Printf("%s, %s\n\n", partner.City, partner.Country)
	for _, msg := range history {
		c.printMessage(msg, partner.Name)
	}

	for {
		line, err := c.io.ReadInput("> ")
		if errors.Is(err, io.EOF) || line == quitCommand {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		msg, err := c.catalog.Send(ctx, partner.ID, line)
		if errors.Is(err, catalog.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}
		c.printMessage(msg, partner.Name)
	}
}

func (c *Cli) printMessage(msg *storage.Message, partnerName string) {
	if msg.Sender == storage.SenderMe {
		c.io.Printf("%60s\n", "You: "+msg.Text)
		return
	}
	c.io.Printf("%s: %s\n", partnerName, msg.Text)
}
