package thermo

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/smtp"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"thermotel/pkg/common"
	"thermotel/pkg/models"
)

const notifyTimeout = 5 * time.Second

func deviceLabel(device *models.Device) string {
	if device.Name != "" {
		return device.Name
	}
	return device.Serial
}

// dispatchNotice hands the notice to the notifier on its own goroutine.
// Delivery failures are logged and never reach the ingestion caller.
func (t *Thermo) dispatchNotice(notice *models.AlertNotice) {
	if t.Notifier == nil {
		return
	}

	logger := common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoNotifier),
	)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := t.Notifier.Notify(ctx, notice); err != nil {
			logger.Error("Alert notification failed",
				zap.String("serial", notice.Device.Serial),
				zap.String("direction", string(notice.Direction)),
				zap.Error(err))
		}
	}()
}

// LogNotifier writes the alert to the service log. Default channel.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, notice *models.AlertNotice) error {
	common.GetLoggerWith(
		common.LoggerNameThermoCore,
		zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoNotifier),
	).Info("Alert notification",
		zap.String("serial", notice.Device.Serial),
		zap.String("direction", string(notice.Direction)),
		zap.Float64("temp_inside_c", notice.TempInsideC),
		zap.Float64("threshold_c", notice.ThresholdC),
		zap.String("message", notice.Message))
	return nil
}

// SMTPNotifier emails the owning account's contact address. A notice
// without a contact address is logged and skipped, not failed.
type SMTPNotifier struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

func (n *SMTPNotifier) Notify(ctx context.Context, notice *models.AlertNotice) error {
	if notice.Contact == "" {
		common.GetLoggerWith(
			common.LoggerNameThermoCore,
			zap.String(common.LoggerFieldThermoCategory, common.LoggerCategoryThermoNotifier),
		).Warn("No contact address for device alerts",
			zap.String("serial", notice.Device.Serial))
		return nil
	}

	label := deviceLabel(notice.Device)
	subject := fmt.Sprintf("High Temperature Alert - %s", label)
	detail := "The temperature has exceeded your configured high threshold."
	if notice.Direction == models.DirectionLow {
		subject = fmt.Sprintf("Low Temperature Alert - %s", label)
		detail = "The temperature has dropped below your configured low threshold."
	}

	body := fmt.Sprintf(
		"Temperature alert for your thermostat device.\r\n\r\n"+
			"Device: %s\r\n"+
			"Current Temperature: %.1f°C\r\n"+
			"Threshold: %.1f°C\r\n"+
			"Time: %s\r\n\r\n"+
			"%s\r\n",
		label, notice.TempInsideC, notice.ThresholdC,
		notice.FiredAt.UTC().Format(time.RFC3339), detail)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.From, notice.Contact, subject, body))

	return n.send(ctx, notice.Contact, msg)
}

func (n *SMTPNotifier) send(ctx context.Context, to string, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", n.Addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	host, _, err := net.SplitHostPort(n.Addr)
	if err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}

	if n.Username != "" {
		auth := smtp.PlainAuth("", n.Username, n.Password, host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(n.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// MQTTNotifier publishes alerts to <prefix>/<owner_id>/<serial> with
// QoS 1.
type MQTTNotifier struct {
	Client      mqtt.Client
	TopicPrefix string
	Timeout     time.Duration
}

func NewMQTTNotifier(broker, clientID, username, password, topicPrefix string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout for broker %s", broker)
	}
	if token.Error() != nil {
		return nil, token.Error()
	}

	if topicPrefix == "" {
		topicPrefix = "thermotel/alerts"
	}

	return &MQTTNotifier{Client: client, TopicPrefix: topicPrefix, Timeout: notifyTimeout}, nil
}

func (n *MQTTNotifier) Notify(_ context.Context, notice *models.AlertNotice) error {
	payload, err := json.Marshal(map[string]any{
		"serial":        notice.Device.Serial,
		"name":          notice.Device.Name,
		"owner_id":      notice.Device.OwnerID,
		"direction":     notice.Direction,
		"temp_inside_c": notice.TempInsideC,
		"threshold_c":   notice.ThresholdC,
		"fired_at":      notice.FiredAt.UTC().Format(time.RFC3339),
		"message":       notice.Message,
	})
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("%s/%s/%s", n.TopicPrefix, notice.Device.OwnerID, notice.Device.Serial)
	token := n.Client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(n.Timeout) {
		return fmt.Errorf("mqtt publish timeout for topic %s", topic)
	}
	return token.Error()
}
