package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type (
	Writer  = kafka.Writer
	Reader  = kafka.Reader
	Message = kafka.Message
)

// MessageWriter é o subconjunto do *kafka.Writer usado pelos produtores
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader é o subconjunto do *kafka.Reader usado pelos consumidores
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Brokers converte "a:9092,b:9092" em lista, ignorando vazios
func Brokers(csv string) []string {
	var out []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// NewWriter cria um writer com ack de todas as réplicas e lote curto
func NewWriter(brokers string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(Brokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // mesma chave (agente|fecha) sempre na mesma partição
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
}

func NewReader(brokers string, topic string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        Brokers(brokers),
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// PublishJSON serializa v e envia uma mensagem com a chave informada
func PublishJSON(ctx context.Context, w MessageWriter, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", v, err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}
	return w.WriteMessages(ctx, msg)
}

// EnsureTopics cria os tópicos via controller do cluster.
// Usado só em local/dev (single-broker); tópico existente não é erro.
func EnsureTopics(ctx context.Context, brokers string, log *zap.Logger, topics ...string) error {
	list := Brokers(brokers)
	if len(list) == 0 {
		return fmt.Errorf("kafka brokers not provided")
	}

	conn, err := kafka.DialContext(ctx, "tcp", list[0])
	if err != nil {
		return fmt.Errorf("dial kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("kafka controller: %w", err)
	}

	cconn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer cconn.Close()

	for _, t := range topics {
		if t == "" {
			continue
		}
		err := cconn.CreateTopics(kafka.TopicConfig{Topic: t, NumPartitions: 1, ReplicationFactor: 1})
		switch {
		case err == nil:
			log.Info("kafka topic created", zap.String("topic", t))
		case strings.Contains(err.Error(), "already exists"):
		default:
			log.Warn("failed to create kafka topic", zap.String("topic", t), zap.Error(err))
		}
	}
	return nil
}
