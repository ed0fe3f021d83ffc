package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
	"github.com/thirdweb-dev/ledger-indexer/internal/metrics"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

const DEFAULT_TOPIC_PREFIX = "ledger"

type IPublisher interface {
	Publish(ctx context.Context, batches []Batch) error
	Close() error
}

type PublishableMessage struct {
	Data     common.Record   `json:"data"`
	Category common.Category `json:"category"`
	Status   Status          `json:"status"`
}

type KafkaPublisher struct {
	client      *kgo.Client
	topicPrefix string
}

// NewKafkaPublisher connects to config.Cfg.Publisher.Kafka. It returns nil
// without error when publishing is disabled.
func NewKafkaPublisher() (*KafkaPublisher, error) {
	cfg := config.Cfg.Publisher
	if !cfg.Enabled {
		log.Debug().Msg("Publisher is disabled, skipping initialization")
		return nil, nil
	}
	if cfg.Kafka.Brokers == "" {
		return nil, fmt.Errorf("publisher is enabled but no Kafka brokers are configured")
	}

	brokers := strings.Split(cfg.Kafka.Brokers, ",")
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID("ledger-indexer"),
		kgo.MetadataMaxAge(60 * time.Second),
		kgo.DialTimeout(10 * time.Second),
	}

	if cfg.Kafka.Username != "" && cfg.Kafka.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.Kafka.Username,
			Pass: cfg.Kafka.Password,
		}.AsMechanism()))
	}
	if cfg.Kafka.EnableTLS {
		tlsDialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(tlsDialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Kafka: %v", err)
	}

	prefix := cfg.Kafka.TopicPrefix
	if prefix == "" {
		prefix = DEFAULT_TOPIC_PREFIX
	}
	return &KafkaPublisher{client: client, topicPrefix: prefix}, nil
}

func Topic(prefix string, category common.Category) string {
	return prefix + "." + string(category)
}

// BuildRecords turns batches into Kafka records keyed by tx hash.
func BuildRecords(prefix string, batches []Batch) ([]*kgo.Record, error) {
	var records []*kgo.Record
	for _, batch := range batches {
		topic := Topic(prefix, batch.Category)
		for _, change := range batch.Changes {
			value, err := json.Marshal(PublishableMessage{
				Data:     change.Record,
				Category: batch.Category,
				Status:   change.Status,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to marshal %s record: %w", batch.Category, err)
			}
			records = append(records, &kgo.Record{
				Topic: topic,
				Key:   []byte(change.Record.GetTxHash()),
				Value: value,
			})
		}
	}
	return records, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, batches []Batch) error {
	records, err := BuildRecords(p.topicPrefix, batches)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	publishStart := time.Now()
	var failed int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(records))
	for _, record := range records {
		p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
			defer wg.Done()
			if err != nil {
				log.Error().Err(err).Str("topic", r.Topic).Msg("Failed to publish message to Kafka")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			metrics.PublishedRecords.WithLabelValues(strings.TrimPrefix(r.Topic, p.topicPrefix+".")).Inc()
		})
	}
	wg.Wait()

	log.Debug().Str("metric", "publish_duration").Msgf("KafkaPublisher.Publish duration: %f", time.Since(publishStart).Seconds())
	if failed > 0 {
		return fmt.Errorf("failed to publish %d of %d records", failed, len(records))
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.client != nil {
		p.client.Close()
		log.Debug().Msg("Publisher client closed")
	}
	return nil
}
