package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/location-agent/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "agents/dev-1/map/marker", Topic("agents", "dev-1", "map/marker"))
	assert.Equal(t, "agents/dev-1/heartbeat", Topic("agents/", "dev-1", "heartbeat"))
}

func TestPublishJSON(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)

	client.On("Publish", "a/b/c", byte(1), true, []byte(`{"lux":12.5}`)).Return(token)
	token.On("WaitTimeout", time.Second).Return(true)
	token.On("Error").Return(nil)

	err := PublishJSON(client, "a/b/c", 1, true, map[string]float64{"lux": 12.5}, time.Second)
	require.NoError(t, err)
	client.AssertExpectations(t)
	token.AssertExpectations(t)
}

func TestPublishJSON_BrokerError(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)

	client.On("Publish", "t", byte(0), false, mock.Anything).Return(token)
	token.On("WaitTimeout", mock.Anything).Return(true)
	token.On("Error").Return(errors.New("not connected"))

	err := PublishJSON(client, "t", 0, false, struct{}{}, time.Second)
	assert.EqualError(t, err, "failed to publish to t: not connected")
}

func TestPublishJSON_Timeout(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)

	client.On("Publish", "t", byte(1), false, mock.Anything).Return(token)
	token.On("WaitTimeout", 50*time.Millisecond).Return(false)

	err := PublishJSON(client, "t", 1, false, struct{}{}, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrPublishTimeout)
	token.AssertNotCalled(t, "Error")
}

func TestPublishJSON_MarshalError(t *testing.T) {
	client := new(mocks.MockMQTTClient)

	err := PublishJSON(client, "t", 0, false, make(chan int), time.Second)
	assert.ErrorContains(t, err, "failed to serialize message for t")
	client.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishJSONAsync_ReturnsWithoutAcknowledgement(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)
	never := make(chan struct{})

	client.On("Publish", "t", byte(1), false, mock.Anything).Return(token)
	token.On("Done").Return((<-chan struct{})(never))

	errs := make(chan error, 1)
	err := PublishJSONAsync(client, "t", 1, false, struct{}{}, 20*time.Millisecond, func(err error) { errs <- err })
	require.NoError(t, err)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrPublishTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout not reported")
	}
}

func TestPublishJSONAsync_ReportsBrokerError(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	token := new(mocks.MockToken)
	done := make(chan struct{})
	close(done)

	client.On("Publish", "t", byte(0), false, mock.Anything).Return(token)
	token.On("Done").Return((<-chan struct{})(done))
	token.On("Error").Return(errors.New("not connected"))

	errs := make(chan error, 1)
	require.NoError(t, PublishJSONAsync(client, "t", 0, false, struct{}{}, time.Second, func(err error) { errs <- err }))

	select {
	case err := <-errs:
		assert.EqualError(t, err, "failed to publish to t: not connected")
	case <-time.After(2 * time.Second):
		t.Fatal("broker error not reported")
	}
}

func TestInitialize_MissingCACertificate(t *testing.T) {
	files := new(mocks.MockFileOperations)
	files.On("ReadFileRaw", "/etc/ca.pem").Return([]byte(nil), errors.New("no such file"))

	err := NewMqttService(files).Initialize(Options{Broker: "ssl://broker:8883", ClientID: "c", CACertPath: "/etc/ca.pem"})
	assert.EqualError(t, err, "failed to read CA certificate: no such file")
}

func TestInitialize_InvalidCACertificate(t *testing.T) {
	files := new(mocks.MockFileOperations)
	files.On("ReadFileRaw", "/etc/ca.pem").Return([]byte("not a pem"), nil)

	err := NewMqttService(files).Initialize(Options{Broker: "ssl://broker:8883", ClientID: "c", CACertPath: "/etc/ca.pem"})
	assert.EqualError(t, err, "failed to append CA certificate")
}
