package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/darkroot-games/warband-api/internal/entities"
)

// Offline audit for stored game sessions: verifies that every card
// instance is in exactly one place (remaining, discard, or inventory)
// and that the piles only reference cards in the session's universe.

func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}

	client := redis.NewClient(opt)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis:", redisURL)
	fmt.Println("Scanning for corrupted session data...")

	iter := client.Scan(ctx, 0, "session:doc:*", 0).Iterator()

	var corruptedKeys []string
	var checkedCount int

	for iter.Next(ctx) {
		key := iter.Val()
		checkedCount++

		data, err := client.Get(ctx, key).Result()
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", key, err)
			continue
		}

		var session entities.GameSession
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			fmt.Printf("✗ Corrupted JSON in %s\n", key)
			corruptedKeys = append(corruptedKeys, key)
			continue
		}

		problems := auditSession(&session)
		for _, p := range problems {
			fmt.Printf("✗ %s: %s\n", key, p)
		}
		if len(problems) > 0 {
			corruptedKeys = append(corruptedKeys, key)
		}
	}

	if err := iter.Err(); err != nil {
		log.Fatal("Error during scan:", err)
	}

	fmt.Printf("\nChecked %d sessions, found %d corrupted entries\n", checkedCount, len(corruptedKeys))

	if len(corruptedKeys) == 0 {
		fmt.Println("No corrupted data found!")
		return
	}

	fmt.Println("\nCorrupted keys:")
	for _, key := range corruptedKeys {
		fmt.Printf("  - %s\n", key)
	}

	fmt.Print("\nDo you want to DELETE these corrupted entries? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response == "yes" {
		for _, key := range corruptedKeys {
			eventsKey := "session:events:" + strings.TrimPrefix(key, "session:doc:")
			if err := client.Del(ctx, key, eventsKey).Err(); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", key, err)
			} else {
				fmt.Printf("Deleted %s\n", key)
			}
		}
		fmt.Println("\nCleanup complete!")
	} else {
		fmt.Println("Aborted - no changes made")
	}
}

func auditSession(session *entities.GameSession) []string {
	var problems []string

	inInventory := make(map[entities.CardInstanceID]bool)
	for _, item := range session.Inventory {
		if session.Card(item.CardInstanceID) == nil {
			problems = append(problems, fmt.Sprintf("inventory item %s references unknown card %s", item.ID, item.CardInstanceID))
		}
		inInventory[item.CardInstanceID] = true
	}

	for deckType, deck := range session.Decks {
		seen := make(map[entities.CardInstanceID]bool)
		piles := append(append([]entities.CardInstanceID{}, deck.Remaining...), deck.Discard...)
		for _, id := range piles {
			if seen[id] {
				problems = append(problems, fmt.Sprintf("%s deck holds card %s twice", deckType, id))
			}
			seen[id] = true

			card := session.Card(id)
			if card == nil {
				problems = append(problems, fmt.Sprintf("%s deck references unknown card %s", deckType, id))
			} else if card.DeckType != deckType {
				problems = append(problems, fmt.Sprintf("%s deck holds card %s from the %s deck", deckType, id, card.DeckType))
			}
			if inInventory[id] {
				problems = append(problems, fmt.Sprintf("card %s is both in the %s deck and in inventory", id, deckType))
			}
		}
	}

	return problems
}
