package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhive-io/taskhive-ce/internal/notifications"
)

// Consumer tails the task event stream and turns events into assignee
// notifications. It runs in its own goroutine for the life of the process.
type Consumer struct {
	client *redis.Client
	mailer notifications.Mailer
	lastID string
}

func NewConsumer(addr, password string, db int, mailer notifications.Mailer) *Consumer {
	return &Consumer{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		mailer: mailer,
		lastID: "$",
	}
}

// Run blocks until ctx is cancelled. Individual event failures are logged
// and skipped; a dead consumer must not take the process down.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()
	for {
		streams, err := c.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{TopicTaskEvents, c.lastID},
			Block:   5 * time.Second,
			Count:   32,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != redis.Nil {
				log.Printf("events: consumer read: %v", err)
			}
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.lastID = msg.ID
				c.handleMessage(msg)
			}
		}
	}
}

func (c *Consumer) handleMessage(msg redis.XMessage) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		log.Printf("events: message %s has no event body", msg.ID)
		return
	}
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		log.Printf("events: decode message %s: %v", msg.ID, err)
		return
	}
	if err := c.dispatch(&event); err != nil {
		log.Printf("events: dispatch %s (%s): %v", event.ID, event.Type, err)
	}
}

func (c *Consumer) dispatch(event *Event) error {
	email, _ := event.Data["assigned_to_email"].(string)
	if email == "" {
		// Unassigned tasks notify nobody.
		return nil
	}
	title, _ := event.Data["title"].(string)

	switch event.Type {
	case EventTaskCreated:
		priority, _ := event.Data["priority"].(string)
		description, _ := event.Data["description"].(string)
		return c.mailer.Send(email,
			fmt.Sprintf("You have been assigned a new task: %s", title),
			fmt.Sprintf("You have been assigned task %q. Priority: %s. Description: %s", title, priority, description))
	case EventTaskUpdated:
		status, _ := event.Data["status"].(string)
		return c.mailer.Send(email,
			fmt.Sprintf("Task updated: %s", title),
			fmt.Sprintf("Task %q was updated. Current status: %s.", title, status))
	}
	return nil
}
