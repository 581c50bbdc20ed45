package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPublishTimeout is returned when the broker did not acknowledge a message in time.
var ErrPublishTimeout = errors.New("publish not acknowledged in time")

// Topic joins the topic prefix, the device id and a suffix.
func Topic(prefix, deviceID, suffix string) string {
	return strings.Join([]string{strings.TrimSuffix(prefix, "/"), deviceID, suffix}, "/")
}

// PublishJSON marshals v and publishes it, waiting at most timeout for the
// broker to accept it. While the client is reconnecting paho keeps qos > 0
// messages queued, so the wait must stay bounded.
func PublishJSON(client MQTTClient, topic string, qos byte, retained bool, v any, timeout time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize message for %s: %w", topic, err)
	}

	token := client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("failed to publish to %s: %w", topic, ErrPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// PublishJSONAsync marshals v and publishes it without waiting. onError is
// called from another goroutine if the broker reports an error or does not
// acknowledge within timeout. Only serialization errors are returned.
func PublishJSONAsync(client MQTTClient, topic string, qos byte, retained bool, v any,
	timeout time.Duration, onError func(error)) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize message for %s: %w", topic, err)
	}

	token := client.Publish(topic, qos, retained, payload)
	go func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-token.Done():
			if err := token.Error(); err != nil && onError != nil {
				onError(fmt.Errorf("failed to publish to %s: %w", topic, err))
			}
		case <-timer.C:
			if onError != nil {
				onError(fmt.Errorf("failed to publish to %s: %w", topic, ErrPublishTimeout))
			}
		}
	}()
	return nil
}
