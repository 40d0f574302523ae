package snrpublisher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Config"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
	snrmodels "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models"
)

const publishTimeout = 5 * time.Second

// mqttClient is the subset of mqtt.Client the publisher needs
type mqttClient interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher fans registry change events out to MQTT. Notify only enqueues;
// a single worker publishes in arrival order.
type Publisher struct {
	cfg     config.MQTTConfig
	client  mqttClient
	eventCh chan snrmodels.SensorEvent
	wg      sync.WaitGroup
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
}

func New(cfg config.MQTTConfig, logger *logger.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		cfg:     cfg,
		eventCh: make(chan snrmodels.SensorEvent, cfg.EventBuffer),
		logger:  logger.WithComponent("event_publisher"),
		metrics: m,
	}
}

// Start connects to the broker and starts the publish worker. The paho
// client keeps retrying in the background, so Start only fails on bad TLS
// material or an immediate connect error.
func (p *Publisher) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(p.cfg.BrokerURL()).
		SetClientID(p.cfg.ClientID).
		SetKeepAlive(p.cfg.KeepAlive).
		SetPingTimeout(p.cfg.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(true)

	if p.cfg.BrokerUser != "" {
		opts.SetUsername(p.cfg.BrokerUser)
		opts.SetPassword(p.cfg.BrokerPass)
	}

	if p.cfg.UseTLS {
		tlsCfg, err := tlsConfig(p.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		p.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(_ mqtt.Client) {
		p.logger.Logger.Info().Str("broker", p.cfg.BrokerURL()).Str("topic_prefix", p.cfg.TopicPrefix).Msg("MQTT connected")
	}

	client := mqtt.NewClient(opts)
	// With ConnectRetry the token completes on first success; don't block startup on it.
	if tk := client.Connect(); tk.WaitTimeout(publishTimeout) && tk.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", tk.Error())
	}

	p.run(ctx, client)
	return nil
}

// run attaches client and launches the worker
func (p *Publisher) run(ctx context.Context, client mqttClient) {
	p.client = client
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.worker(ctx)
	}()
}

// Notify implements interfaces.SensorEventNotifier. It never blocks; events
// that do not fit in the buffer are dropped.
func (p *Publisher) Notify(event snrmodels.SensorEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}
	select {
	case p.eventCh <- event:
	default:
		p.metrics.EventsPublished.WithLabelValues(metrics.EventDropped).Inc()
		p.logger.Logger.Warn().Str("accion", string(event.Action)).Int64("sensor_id", event.SensorID).Msg("Event buffer full, dropping sensor event")
	}
}

// Stop drains queued events, then disconnects
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.eventCh)
	p.mu.Unlock()

	p.wg.Wait()
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(500)
	}
}

func (p *Publisher) IsConnected() bool {
	return p.client != nil && p.client.IsConnected()
}

func (p *Publisher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.eventCh:
			if !ok {
				return
			}
			p.publish(event)
		}
	}
}

func (p *Publisher) publish(event snrmodels.SensorEvent) {
	if !p.IsConnected() {
		p.metrics.EventsPublished.WithLabelValues(metrics.EventDropped).Inc()
		p.logger.Logger.Debug().Str("accion", string(event.Action)).Msg("MQTT disconnected, dropping sensor event")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(metrics.EventFailed).Inc()
		p.logger.Logger.Error().Err(err).Msg("Failed to marshal sensor event")
		return
	}

	topic := Topic(p.cfg.TopicPrefix, event.Action)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.metrics.EventsPublished.WithLabelValues(metrics.EventFailed).Inc()
		p.logger.Logger.Error().Str("topic", topic).Msg("Timed out publishing sensor event")
		return
	}
	if err := token.Error(); err != nil {
		p.metrics.EventsPublished.WithLabelValues(metrics.EventFailed).Inc()
		p.logger.Logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish sensor event")
		return
	}

	p.metrics.EventsPublished.WithLabelValues(metrics.EventPublished).Inc()
	p.logger.Logger.Debug().Str("topic", topic).Int64("sensor_id", event.SensorID).Msg("Published sensor event")
}

// Topic returns the MQTT topic for an action, e.g. sensores/eventos/creado
func Topic(prefix string, action snrmodels.SensorAction) string {
	return fmt.Sprintf("%s/%s", prefix, action)
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file %s", caFile)
	}
	cfg.RootCAs = cp
	return cfg, nil
}
