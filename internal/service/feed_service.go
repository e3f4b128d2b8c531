package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/scoreline/scoreline-api/internal/dto"
	"github.com/scoreline/scoreline-api/internal/models"
	"github.com/scoreline/scoreline-api/internal/observability"
	"github.com/scoreline/scoreline-api/internal/repository"
)

const feedSendBufferSize = 16

// FeedConnectionOptions wraps metadata extracted during the HTTP upgrade.
type FeedConnectionOptions struct {
	OwnerID       uint
	CorrelationID string
	Context       context.Context
}

// FeedService streams submission status changes to their owner over a
// websocket, scoped strictly to one owner per connection. It also acts as
// the SubmissionEventPublisher for the dispatch and grading paths.
type FeedService interface {
	SubmissionEventPublisher
	ServeConnection(conn *websocket.Conn, opts FeedConnectionOptions)
	Start(ctx context.Context)
}

type feedService struct {
	submissions repository.SubmissionRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	broker      *feedBroker
	nodeID      string
}

// feedEvent is the cross-node relay envelope for submission events.
type feedEvent struct {
	Source  string              `json:"source"`
	OwnerID uint                `json:"owner_id"`
	Event   dto.SubmissionEvent `json:"event"`
	SentAt  time.Time           `json:"sent_at"`
}

// feedBroker tracks connected clients per owner.
type feedBroker struct {
	mu     sync.RWMutex
	owners map[uint]map[*feedClient]struct{}
	log    zerolog.Logger
}

type feedClient struct {
	conn    *websocket.Conn
	send    chan dto.SubmissionEvent
	options FeedConnectionOptions
	service *feedService
	closed  chan struct{}
	once    sync.Once

	// cache is this connection's owned snapshot of the submissions list.
	// Pushed updates are merged into it by record identity, last write wins.
	cache feedCache
}

// NewFeedService creates a realtime submissions feed instance. channelBase
// namespaces the Redis channel and NATS subject used to relay events
// between nodes.
func NewFeedService(submissions repository.SubmissionRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) FeedService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":submissions"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".submissions"
	}

	return &feedService{
		submissions: submissions,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "feed_service").Logger(),
		broker: &feedBroker{
			owners: make(map[uint]map[*feedClient]struct{}),
			log:    logger.With().Str("component", "feed_broker").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

// Start launches the cross-node consumers. It returns immediately.
func (s *feedService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

// PublishCreated fans out a freshly dispatched submission.
func (s *feedService) PublishCreated(ctx context.Context, submission models.Submission) {
	s.publish(ctx, submission, dto.SubmissionEventCreated)
}

// PublishUpdated fans out a status change applied by the grading pipeline.
func (s *feedService) PublishUpdated(ctx context.Context, submission models.Submission) {
	s.publish(ctx, submission, dto.SubmissionEventUpdated)
}

func (s *feedService) publish(ctx context.Context, submission models.Submission, kind string) {
	event := dto.SubmissionEvent{
		Kind:       kind,
		Submission: dto.NewSubmissionResponse(submission),
	}

	observability.FeedEvents().WithLabelValues(kind).Inc()
	s.broker.deliver(submission.OwnerID, event)

	envelope := feedEvent{
		Source:  s.nodeID,
		OwnerID: submission.OwnerID,
		Event:   event,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal feed event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish feed event to nats")
		}
	}
}

// ServeConnection sends the owner's current submissions as a snapshot, then
// streams merged updates until the peer disconnects.
func (s *feedService) ServeConnection(conn *websocket.Conn, opts FeedConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &feedClient{
		conn:    conn,
		send:    make(chan dto.SubmissionEvent, feedSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	snapshot, err := s.submissions.ListByOwner(baseCtx, opts.OwnerID, 0)
	if err != nil {
		s.logger.Error().Err(err).Uint("owner_id", opts.OwnerID).Msg("failed to load feed snapshot")
		_ = conn.Close()
		return
	}
	client.cache.reset(dto.NewSubmissionResponseSlice(snapshot))

	s.broker.register(client)
	observability.FeedConnections().Inc()

	if err := conn.WriteJSON(client.cache.items); err != nil {
		s.broker.unregister(client)
		_ = conn.Close()
		return
	}

	go client.writer()
	client.reader()
}

func (s *feedService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("feed redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *feedService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "scoreline-feed", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats feed subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain feed nats subscription")
		}
	}()
}

func (s *feedService) handleEvent(data []byte) {
	var event feedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid feed event payload")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	observability.FeedEvents().WithLabelValues(event.Event.Kind).Inc()
	s.broker.deliver(event.OwnerID, event.Event)
}

func (b *feedBroker) register(client *feedClient) {
	b.mu.Lock()
	defer b.mu.Unlock()

	owner := client.options.OwnerID
	if _, exists := b.owners[owner]; !exists {
		b.owners[owner] = make(map[*feedClient]struct{})
	}
	b.owners[owner][client] = struct{}{}
	b.log.Debug().Uint("owner_id", owner).Msg("feed client connected")
}

func (b *feedBroker) unregister(client *feedClient) {
	b.mu.Lock()
	defer b.mu.Unlock()

	owner := client.options.OwnerID
	if clients, ok := b.owners[owner]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(b.owners, owner)
		}
	}
	b.log.Debug().Uint("owner_id", owner).Msg("feed client disconnected")
}

func (b *feedBroker) deliver(ownerID uint, event dto.SubmissionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.owners[ownerID] {
		select {
		case client.send <- event:
		default:
			b.log.Warn().Uint("owner_id", ownerID).Msg("dropping feed event for slow client")
		}
	}
}

func (c *feedClient) reader() {
	defer c.close()

	// The feed is one-way; the read loop only notices disconnects.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *feedClient) writer() {
	for {
		select {
		case <-c.closed:
			return
		case event := <-c.send:
			c.cache.mergeByID(event)
			if err := c.conn.WriteJSON(event); err != nil {
				c.close()
				return
			}
		}
	}
}

func (c *feedClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.broker.unregister(c)
		_ = c.conn.Close()
	})
}
