package dag

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/logging"
	"github.com/statuswatch/status-plane/internal/mqtt"
)

type thresholdPayload struct {
	Network map[string]any `json:"network"`
}

// Listener consumes threshold-crossing notifications from the broker
// and pushes them into the indicator.
type Listener struct {
	logger    zerolog.Logger
	endpoint  *mqtt.Endpoint
	indicator *Indicator
}

func NewListener(logger zerolog.Logger, cfg config.MQTT, indicator *Indicator) (*Listener, error) {
	logger = logging.Component(logger, "dag_listener")
	l := &Listener{
		logger:    logger,
		indicator: indicator,
	}

	endpoint, err := mqtt.New(mqtt.Config{
		Logger:   &logger,
		URL:      cfg.BrokerURL,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
		MessageHandlers: map[string]mqtt.MessageHandler{
			cfg.OnlineTopic:  l.handleNotification(true),
			cfg.OfflineTopic: l.handleNotification(false),
		},
	})
	if err != nil {
		return nil, err
	}
	l.endpoint = endpoint

	return l, nil
}

func (l *Listener) Start(ctx context.Context) error {
	return l.endpoint.Connect(ctx)
}

func (l *Listener) Stop(ctx context.Context) error {
	return l.endpoint.Disconnect(ctx)
}

func (l *Listener) handleNotification(online bool) mqtt.MessageHandler {
	return func(_ context.Context, msg *mqtt.Message) {
		var payload thresholdPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				// The transition itself is authoritative even when the
				// descriptor doesn't decode.
				l.logger.Warn().Err(err).
					Str("topic", msg.Topic).
					Msg("failed to decode threshold notification payload")
			}
		}
		l.indicator.ThresholdCrossed(online, payload.Network)
		l.logger.Debug().
			Bool("online", online).
			Str("topic", msg.Topic).
			Msg("recorded network threshold notification")
	}
}
