package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// datagen popula o banco (-target=postgres) ou o tópico de conteúdos
// (-target=kafka) com pautas falsas para testes de carga.
func main() {
	target := flag.String("target", "postgres", "postgres ou kafka")
	numMeetings := flag.Int("meetings", 100, "Número de pautas a gerar. Use -1 para infinito.")
	bulkSize := flag.Int("bulk-size", 200, "Pautas por COPY / por lote de mensagens")
	numConsumers := flag.Int("consumers", 4, "Workers gravando no banco")
	numTags := flag.Int("tags", 20, "Tags criadas antes das pautas")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers separados por vírgula")
	topic := flag.String("topic", "content-objects", "Tópico dos conteúdos")
	delayMs := flag.Int("delay", 0, "Pausa entre lotes de mensagens (ms)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	stats := &runStats{start: time.Now()}
	go stats.report(ctx)

	var err error
	switch *target {
	case "postgres":
		err = seedPostgres(ctx, stats, *numMeetings, *bulkSize, *numConsumers, *numTags)
	case "kafka":
		err = produceContentObjects(ctx, stats, *brokers, *topic, *numMeetings, *bulkSize, time.Duration(*delayMs)*time.Millisecond)
	default:
		err = fmt.Errorf("unknown target %q", *target)
	}
	if err != nil {
		log.Fatalf("datagen failed: %v", err)
	}

	stats.summary()
}

type runStats struct {
	start     time.Time
	processed int64
	errors    int64
}

func (s *runStats) done(n int) { atomic.AddInt64(&s.processed, int64(n)) }
func (s *runStats) failed()    { atomic.AddInt64(&s.errors, 1) }

// Métricas a cada 2 segundos
func (s *runStats) report(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed := atomic.LoadInt64(&s.processed)
			elapsed := time.Since(s.start)
			log.Printf("Processed: %d | Errors: %d | Rate: %.1f/s | Elapsed: %v",
				processed, atomic.LoadInt64(&s.errors), float64(processed)/elapsed.Seconds(), elapsed.Round(time.Second))
		}
	}
}

func (s *runStats) summary() {
	elapsed := time.Since(s.start)
	processed := atomic.LoadInt64(&s.processed)
	log.Printf("Finished: %d processed, %d errors in %v (%.1f/s)",
		processed, atomic.LoadInt64(&s.errors), elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())
}

// generate envia pautas até n (ou para sempre com -1) e fecha o canal.
func generate[T any](ctx context.Context, wg *sync.WaitGroup, out chan<- T, n int, next func() T) {
	defer wg.Done()
	defer close(out)

	for i := 0; n == -1 || i < n; i++ {
		select {
		case out <- next():
		case <-ctx.Done():
			return
		}
	}
}
