package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/turn-engine/internal/turns"
)

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	subjectID := flag.String("subject", "goblin-1", "subject whose turn begins")
	round := flag.Int("round", 1, "combat round number")
	turn := flag.Int("turn", 0, "turn index within the round")
	flag.Parse()

	redisOpts, err := redis.ParseURL(*redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}
	client := redis.NewClient(redisOpts)
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis successfully!")

	event := turns.TurnEvent{
		SubjectID: *subjectID,
		Round:     *round,
		Turn:      *turn,
		IsNewTurn: true,
	}

	data, err := event.ToJSON()
	if err != nil {
		log.Fatal("Failed to marshal turn event:", err)
	}

	receivers, err := client.Publish(ctx, turns.Channel, data).Result()
	if err != nil {
		log.Fatal("Failed to publish turn event:", err)
	}

	fmt.Printf("✅ Published turn event for %s (round %d, turn %d)\n", *subjectID, *round, *turn)
	fmt.Printf("\n📊 Subscribers notified: %d\n", receivers)
	if receivers == 0 {
		fmt.Println("\n💡 No worker is listening. Start one with:")
		fmt.Println("   Run: go run cmd/worker/main.go")
	}
}
