package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Message struct {
	Topic   string
	QoS     int
	Payload []byte
}

type MessageHandler func(ctx context.Context, msg *Message)

type Config struct {
	Logger          *zerolog.Logger
	URL             string
	ClientID        string
	Username        string
	Password        string
	MessageHandlers map[string]MessageHandler
	HandlerTimeout  time.Duration
}

// Endpoint is a thin subscriber/publisher on top of autopaho. Topic
// handlers registered at construction are re-subscribed automatically
// on every reconnect.
type Endpoint struct {
	logger         *zerolog.Logger
	router         paho.Router
	url            string
	username       string
	password       string
	clientID       string
	handlerTimeout time.Duration

	mutex     sync.Mutex
	cm        *autopaho.ConnectionManager
	subsMutex sync.Mutex
	subs      map[string]bool
	subsErr   error
}

func New(config Config) (*Endpoint, error) {
	clientID := config.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("status-plane-%s", uuid.New())
	}
	handlerTimeout := config.HandlerTimeout
	if handlerTimeout == 0 {
		handlerTimeout = time.Minute
	}
	brokerURL := config.URL
	if brokerURL == "" {
		return nil, errors.New("url is required")
	}
	if !strings.HasPrefix(brokerURL, "tls://") && !strings.HasPrefix(brokerURL, "tcp://") {
		brokerURL = fmt.Sprintf("tls://%s:8883", brokerURL)
	}
	if config.Logger == nil {
		return nil, errors.New("logger is required")
	}

	e := &Endpoint{
		logger:         config.Logger,
		url:            brokerURL,
		clientID:       clientID,
		username:       config.Username,
		password:       config.Password,
		handlerTimeout: handlerTimeout,
		subs:           map[string]bool{},
	}
	e.router = paho.NewStandardRouterWithDefault(e.defaultHandler)
	for topic, handler := range config.MessageHandlers {
		e.RegisterMessageHandler(topic, handler)
		e.subs[topic] = true
	}
	return e, nil
}

func (e *Endpoint) Connect(ctx context.Context) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.cm != nil {
		return errors.New("mqtt endpoint is already connected")
	}
	e.subsErr = nil
	brokerURL, err := url.Parse(e.url)
	if err != nil {
		return fmt.Errorf("failed to parse mqtt url: %w", err)
	}
	readyChan := make(chan struct{})
	e.cm, err = autopaho.NewConnection(ctx, e.getPahoConfig(brokerURL, readyChan))
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to create connection to mqtt broker")
		return err
	}
	if err = e.cm.AwaitConnection(ctx); err != nil {
		e.logger.Error().Err(err).Msg("failed to connect to mqtt broker")
		return err
	}
	<-readyChan // Wait for the subscriptions to be ready
	if e.subsErr != nil {
		e.logger.Error().Err(e.subsErr).Msg("failed to create mqtt subscriptions")
		return e.subsErr
	}
	e.logger.Info().
		Str("url", e.url).
		Str("client_id", e.clientID).
		Msg("connected to mqtt broker")
	return nil
}

func (e *Endpoint) Disconnect(ctx context.Context) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.cm == nil {
		return errors.New("mqtt endpoint is not connected")
	}
	err := e.cm.Disconnect(ctx)
	<-e.cm.Done()
	e.cm = nil
	return err
}

func (e *Endpoint) Publish(ctx context.Context, msg *Message) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.cm == nil {
		return errors.New("failed to publish message: not connected")
	}
	if _, err := e.cm.Publish(ctx, &paho.Publish{
		Topic:   msg.Topic,
		Payload: msg.Payload,
		QoS:     byte(msg.QoS),
	}); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (e *Endpoint) Subscribe(ctx context.Context, topic string) error {
	e.subsMutex.Lock()
	defer e.subsMutex.Unlock()
	_, err := e.cm.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{
			{Topic: topic, QoS: byte(1)},
		},
	})
	if err == nil {
		e.subs[topic] = true
	}
	return err
}

func (e *Endpoint) RegisterMessageHandler(topic string, h MessageHandler) {
	e.router.RegisterHandler(topic, func(msg *paho.Publish) {
		ctx, cancel := context.WithTimeout(context.Background(), e.handlerTimeout)
		defer cancel()
		h(ctx, &Message{Topic: msg.Topic, QoS: int(msg.QoS), Payload: msg.Payload})
	})
}

func (e *Endpoint) defaultHandler(msg *paho.Publish) {
	e.logger.Warn().
		Str("topic", msg.Topic).
		Msg("dropping message for unhandled topic")
}

func (e *Endpoint) getPahoConfig(brokerURL *url.URL, readyChan chan struct{}) autopaho.ClientConfig {
	var once sync.Once
	return autopaho.ClientConfig{
		ServerUrls:        []*url.URL{brokerURL},
		ConnectUsername:   e.username,
		ConnectPassword:   []byte(e.password),
		KeepAlive:         30,
		ConnectRetryDelay: 10 * time.Second,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			e.subsMutex.Lock()
			subscriptions := make([]paho.SubscribeOptions, 0, len(e.subs))
			for topic := range e.subs {
				subscriptions = append(subscriptions, paho.SubscribeOptions{
					Topic: topic,
					QoS:   byte(1),
				})
			}
			e.subsMutex.Unlock()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
			defer cancel()
			if _, err := cm.Subscribe(ctx, &paho.Subscribe{
				Subscriptions: subscriptions,
			}); err != nil {
				e.logger.Error().Err(err).
					Interface("subscribed_topics", e.subs).
					Msg("failed to subscribe to topics")
				e.subsErr = err
			} else {
				e.logger.Debug().
					Interface("subscribed_topics", e.subs).
					Msg("subscribed to topics")
			}
			// This callback runs again on reconnects; only signal
			// readiness once.
			once.Do(func() { close(readyChan) })
		},
		ClientConfig: paho.ClientConfig{
			ClientID: e.clientID,
			Router:   e.router,
			OnClientError: func(err error) {
				e.logger.Warn().Err(err).Msg("mqtt client error")
			},
			OnServerDisconnect: func(d *paho.Disconnect) {
				if d.Properties != nil {
					e.logger.Warn().
						Str("reason", d.Properties.ReasonString).
						Interface("code", d.ReasonCode).
						Msg("server requested disconnect")
				} else {
					e.logger.Warn().
						Int("code", int(d.ReasonCode)).
						Msg("server requested disconnect")
				}
			},
		},
	}
}
