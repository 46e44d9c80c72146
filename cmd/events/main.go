package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/quizprogress-backend/internal/app"
	"github.com/yungbote/quizprogress-backend/internal/clients/redis"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

// events tails the progress event channel and prints one JSON line per event.
func main() {
	var only string
	flag.StringVar(&only, "event", "", "only print events with this name")
	flag.Parse()

	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Redis.Addr == "" {
		fmt.Println("REDIS_ADDR is not set")
		os.Exit(1)
	}
	bus, err := redis.NewProgressBus(log, cfg.BusConfig())
	if err != nil {
		fmt.Printf("connect redis: %v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	err = bus.Subscribe(ctx, func(ev redis.ProgressEvent) {
		if only != "" && ev.Event != only {
			return
		}
		_ = enc.Encode(ev)
	})
	if err != nil {
		fmt.Printf("subscribe: %v\n", err)
		os.Exit(1)
	}
	log.Info("Tailing progress events", "channel", cfg.Redis.Channel)
	<-ctx.Done()
}
