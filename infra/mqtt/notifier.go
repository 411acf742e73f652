package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/medifleet/dispatch/core/notify"
	"github.com/medifleet/dispatch/infra/logger"
)

// Topics used by the notifier. Subscribers on the operations side listen on
// these to drive pager and dashboard integrations.
const (
	TopicEmergencyAssigned = "medifleet/alerts/emergency_assigned"
	TopicSLABreach         = "medifleet/alerts/sla_breach"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string      `json:"broker"`
	ClientID   string      `json:"client_id"`
	Username   string      `json:"username"`
	Password   string      `json:"password"`
	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	QoS        byte        `json:"qos"`
	MaxRetries int         `json:"max_retries"`
	BackoffMS  int         `json:"backoff_ms"`
	TLSConfig  *tls.Config `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier publishes emergency assignment and SLA breach notifications to an
// MQTT broker using Eclipse Paho.
type Notifier struct {
	cli        pahoClient
	qos        byte
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewNotifier connects to the MQTT broker described by cfg.
func NewNotifier(cfg Config) (*Notifier, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_notifier")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	n := &Notifier{
		cli:        c,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}
	if n.maxRetries <= 0 {
		n.maxRetries = 3
	}
	if n.backoff <= 0 {
		n.backoff = 100 * time.Millisecond
	}
	return n, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// NotifyEmergencyAssignment publishes the notice on the emergency topic.
func (n *Notifier) NotifyEmergencyAssignment(ctx context.Context, notice notify.EmergencyNotice) error {
	msg := struct {
		MessageID string `json:"message_id"`
		notify.EmergencyNotice
	}{MessageID: uuid.NewString(), EmergencyNotice: notice}
	return n.publish(ctx, TopicEmergencyAssigned, msg)
}

// NotifySLABreach publishes the breach on the SLA topic.
func (n *Notifier) NotifySLABreach(ctx context.Context, breach notify.SLABreach) error {
	msg := struct {
		MessageID string `json:"message_id"`
		notify.SLABreach
	}{MessageID: uuid.NewString(), SLABreach: breach}
	return n.publish(ctx, TopicSLABreach, msg)
}

func (n *Notifier) publish(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		token := n.cli.Publish(topic, n.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			n.logger.Debugf("published to %s", topic)
			return nil
		}
		n.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(n.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (n *Notifier) Disconnect() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
